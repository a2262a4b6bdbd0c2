package ops

import "database/sql"

// DeleteCodeInput contains parameters for the DeleteCode operation.
// Exactly one of ID and Name must be set.
type DeleteCodeInput struct {
	ID   string
	Name string
}

// DeleteCodeOutput contains the result of the DeleteCode operation.
type DeleteCodeOutput struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ClearedSegments int    `json:"cleared_segments"`
}

// DeleteCode removes a code and cascades the removal of its id from every
// segment's assignment list. There is no referential-integrity check at
// assignment time; this cascade is what keeps segments consistent.
func DeleteCode(db *sql.DB, input DeleteCodeInput) (*DeleteCodeOutput, error) {
	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}

	code, err := ResolveCode(p, input.ID, input.Name)
	if err != nil {
		return nil, err
	}
	id, name := code.ID, code.Name

	cleared := 0
	for i := range p.CodedSegments {
		if p.CodedSegments[i].HasCode(id) {
			cleared++
		}
	}

	p.RemoveCode(id)

	if err := saveProject(db, p); err != nil {
		return nil, err
	}

	return &DeleteCodeOutput{ID: id, Name: name, ClearedSegments: cleared}, nil
}
