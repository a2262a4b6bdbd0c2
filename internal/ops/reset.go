package ops

import (
	"database/sql"

	"github.com/tesseralabs/tessera/internal/project"
)

// ResetOutput records what the reset discarded.
type ResetOutput struct {
	ClearedCodes    int `json:"cleared_codes"`
	ClearedSegments int `json:"cleared_segments"`
	HadDocument     bool `json:"had_document"`
}

// Reset replaces the stored project with an empty one.
func Reset(db *sql.DB) (*ResetOutput, error) {
	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}

	out := &ResetOutput{
		ClearedCodes:    len(p.Codes),
		ClearedSegments: len(p.CodedSegments),
		HadDocument:     p.Document != nil,
	}

	if err := saveProject(db, project.New()); err != nil {
		return nil, err
	}
	return out, nil
}
