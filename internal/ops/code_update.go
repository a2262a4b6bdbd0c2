package ops

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/tesseralabs/tessera/internal/csvmap"
	"github.com/tesseralabs/tessera/internal/errors"
)

// UpdateCodeInput contains parameters for the UpdateCode operation.
// Nil fields are left unchanged.
type UpdateCodeInput struct {
	ID          string // code addressed by id
	Name        *string
	Description *string
	Inclusion   *string
	Exclusion   *string
	Color       *string
}

// UpdateCodeOutput contains the result of the UpdateCode operation.
type UpdateCodeOutput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UpdateCode mutates any field of an existing code in place.
func UpdateCode(db *sql.DB, input UpdateCodeInput) (*UpdateCodeOutput, error) {
	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}

	code, err := ResolveCode(p, input.ID, "")
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.NewValidation("code name must not be empty")
		}
		if !strings.EqualFold(name, code.Name) && p.HasCodeName(name) {
			return nil, errors.NewConflict(fmt.Sprintf("code named %q already exists", name))
		}
		code.Name = name
	}
	if input.Description != nil {
		code.Description = strings.TrimSpace(*input.Description)
	}
	if input.Inclusion != nil {
		code.Inclusion = strings.TrimSpace(*input.Inclusion)
	}
	if input.Exclusion != nil {
		code.Exclusion = strings.TrimSpace(*input.Exclusion)
	}
	if input.Color != nil {
		normalized, ok := csvmap.NormalizeHexColor(*input.Color)
		if !ok {
			return nil, errors.NewValidation(fmt.Sprintf("invalid color %q: expected a 3- or 6-digit hex value", *input.Color))
		}
		code.Color = normalized
	}

	if err := saveProject(db, p); err != nil {
		return nil, err
	}

	return &UpdateCodeOutput{ID: code.ID, Name: code.Name, Color: code.Color}, nil
}
