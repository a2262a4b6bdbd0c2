package ops

import (
	"context"
	"database/sql"

	"github.com/tesseralabs/tessera/internal/autocode"
	"github.com/tesseralabs/tessera/internal/config"
	"github.com/tesseralabs/tessera/internal/errors"
)

// AutocodeOutput summarizes one assignment batch.
type AutocodeOutput struct {
	Method        string          `json:"method"`
	TotalSegments int             `json:"total_segments"`
	CodedSegments int             `json:"coded_segments"`
	Usage         *autocode.Usage `json:"usage,omitempty"`
}

// Autocode runs automatic code assignment over every segment and replaces all
// existing assignments with the batch result. Replacement is atomic: nothing
// is persisted when the batch fails. Suggested names that do not exactly match
// an existing code are dropped.
func Autocode(ctx context.Context, db *sql.DB, cfg *config.Config) (*AutocodeOutput, error) {
	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}
	if len(p.CodedSegments) == 0 {
		return nil, errors.NewConfiguration("no segments to code; add segments first")
	}
	if len(p.Codes) == 0 {
		return nil, errors.NewConfiguration("no codes defined; add codes first")
	}

	engine := autocode.NewEngine(cfg)
	assignments, usage, err := engine.Assign(ctx, p.CodedSegments, p.Codes)
	if err != nil {
		return nil, err
	}

	for i := range p.CodedSegments {
		seg := &p.CodedSegments[i]
		ids := []string{}
		for _, name := range assignments[seg.ID] {
			if code := p.FindCodeByName(name); code != nil {
				ids = append(ids, code.ID)
			}
		}
		seg.CodeIDs = ids
	}

	if err := saveProject(db, p); err != nil {
		return nil, err
	}

	return &AutocodeOutput{
		Method:        engine.Method(),
		TotalSegments: len(p.CodedSegments),
		CodedSegments: p.CodedCount(),
		Usage:         usage,
	}, nil
}

// EstimateOutput is the cost preview for an autocode batch.
type EstimateOutput struct {
	Method   string            `json:"method"`
	Estimate autocode.Estimate `json:"estimate"`
}

// EstimateAutocode previews the token spend of running Autocode on the
// current project. The keyword tier is free; the estimate is still reported
// so the preview shows what a remote run would cost.
func EstimateAutocode(db *sql.DB, cfg *config.Config) (*EstimateOutput, error) {
	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}
	if len(p.CodedSegments) == 0 {
		return nil, errors.NewConfiguration("no segments to code; add segments first")
	}
	if len(p.Codes) == 0 {
		return nil, errors.NewConfiguration("no codes defined; add codes first")
	}

	engine := autocode.NewEngine(cfg)
	return &EstimateOutput{
		Method:   engine.Method(),
		Estimate: autocode.EstimateCost(p.CodedSegments, p.Codes),
	}, nil
}
