package ops

import (
	"database/sql"

	"github.com/tesseralabs/tessera/internal/errors"
)

// ToggleInput identifies a segment and the code to toggle on it. The code may
// be given by id or by name, not both.
type ToggleInput struct {
	SegmentID string `json:"segment_id"`
	CodeID    string `json:"code_id,omitempty"`
	CodeName  string `json:"code_name,omitempty"`
}

// ToggleOutput reports the segment's assignments after the toggle.
type ToggleOutput struct {
	SegmentID string   `json:"segment_id"`
	CodeID    string   `json:"code_id"`
	Assigned  bool     `json:"assigned"`
	CodeIDs   []string `json:"code_ids"`
}

// Toggle flips a single code assignment on a segment. Assigning an already
// assigned code removes it; order of the remaining assignments is preserved.
func Toggle(db *sql.DB, in ToggleInput) (*ToggleOutput, error) {
	if in.SegmentID == "" {
		return nil, errors.NewValidation("segment_id is required")
	}

	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}

	seg := p.FindSegment(in.SegmentID)
	if seg == nil {
		return nil, errors.NewNotFound("segment", in.SegmentID)
	}

	code, err := ResolveCode(p, in.CodeID, in.CodeName)
	if err != nil {
		return nil, err
	}

	seg.ToggleCode(code.ID)

	if err := saveProject(db, p); err != nil {
		return nil, err
	}

	return &ToggleOutput{
		SegmentID: seg.ID,
		CodeID:    code.ID,
		Assigned:  seg.HasCode(code.ID),
		CodeIDs:   seg.CodeIDs,
	}, nil
}
