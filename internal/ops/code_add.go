package ops

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/tesseralabs/tessera/internal/csvmap"
	"github.com/tesseralabs/tessera/internal/errors"
	"github.com/tesseralabs/tessera/internal/project"
)

// AddCodeInput contains parameters for the AddCode operation.
type AddCodeInput struct {
	Name        string // required
	Description string
	Inclusion   string
	Exclusion   string
	Color       string // optional hex; allocator assigns when blank
}

// AddCodeOutput contains the result of the AddCode operation.
type AddCodeOutput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// AddCode creates a new code. When no color is supplied the allocator picks
// one distinct from every color the project already uses, while the preset
// palette lasts.
func AddCode(db *sql.DB, input AddCodeInput) (*AddCodeOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewValidation("code name is required")
	}

	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}
	if p.HasCodeName(name) {
		return nil, errors.NewConflict(fmt.Sprintf("code named %q already exists", name))
	}

	color := ""
	if strings.TrimSpace(input.Color) != "" {
		normalized, ok := csvmap.NormalizeHexColor(input.Color)
		if !ok {
			return nil, errors.NewValidation(fmt.Sprintf("invalid color %q: expected a 3- or 6-digit hex value", input.Color))
		}
		color = normalized
	} else {
		color = newAllocator(p).NextPreset()
	}

	code := project.Code{
		ID:          project.NewID(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Inclusion:   strings.TrimSpace(input.Inclusion),
		Exclusion:   strings.TrimSpace(input.Exclusion),
		Color:       color,
	}
	p.Codes = append(p.Codes, code)

	if err := saveProject(db, p); err != nil {
		return nil, err
	}

	return &AddCodeOutput{ID: code.ID, Name: code.Name, Color: code.Color}, nil
}
