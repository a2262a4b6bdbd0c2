package ops

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/tesseralabs/tessera/internal/csvmap"
	"github.com/tesseralabs/tessera/internal/errors"
)

// ImportCSVInput describes one CSV import. Exactly one of Path and Data
// supplies the CSV text. Mapping overrides the auto-detected column mapping
// for the given field keys; unlisted fields fall back to auto-detection.
type ImportCSVInput struct {
	Kind    string            `json:"kind"`
	Path    string            `json:"path,omitempty"`
	Data    string            `json:"data,omitempty"`
	Mode    string            `json:"mode,omitempty"`
	Mapping map[string]string `json:"mapping,omitempty"`

	// Apply commits the import. When false the import is planned only: the
	// proposed mapping and row partition are computed and reported without
	// touching the stored project.
	Apply bool `json:"apply,omitempty"`

	// Confirm acknowledges an overwrite. Committing in overwrite mode
	// replaces existing data and is refused without it.
	Confirm bool `json:"confirm,omitempty"`
}

// ImportCSVOutput reports the plan or the committed result of an import.
type ImportCSVOutput struct {
	Kind    string             `json:"kind"`
	Mode    string             `json:"mode"`
	Applied bool               `json:"applied"`
	Mapping map[string]string  `json:"mapping"`
	Valid   int                `json:"valid"`
	Added   int                `json:"added"`
	Skipped int                `json:"skipped"`
	Invalid []csvmap.InvalidRow `json:"invalid,omitempty"`
}

func importKind(name string) (csvmap.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "codes", "code":
		return csvmap.CodeKind{}, nil
	case "segments", "segment":
		return csvmap.SegmentKind{}, nil
	default:
		return nil, errors.NewValidation(fmt.Sprintf("unknown import kind: %q (expected codes or segments)", name))
	}
}

func importMode(name string) (csvmap.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "append":
		return csvmap.ModeAppend, nil
	case "overwrite", "replace":
		return csvmap.ModeOverwrite, nil
	default:
		return "", errors.NewValidation(fmt.Sprintf("unknown import mode: %q (expected append or overwrite)", name))
	}
}

// ImportCSV imports codes or segments from CSV text. The import runs in two
// phases: plan (Apply=false) computes the column mapping and partitions rows
// into valid and invalid without persisting anything; commit (Apply=true)
// additionally applies the valid rows to the project under the chosen mode.
// Invalid rows never abort an import, they are excluded and reported.
func ImportCSV(db *sql.DB, in ImportCSVInput) (*ImportCSVOutput, error) {
	kind, err := importKind(in.Kind)
	if err != nil {
		return nil, err
	}
	mode, err := importMode(in.Mode)
	if err != nil {
		return nil, err
	}
	if in.Apply && mode == csvmap.ModeOverwrite && !in.Confirm {
		return nil, errors.NewConfiguration("overwrite import replaces existing data and requires confirmation")
	}

	data := in.Data
	if data == "" {
		if in.Path == "" {
			return nil, errors.NewValidation("either path or data is required")
		}
		raw, err := os.ReadFile(in.Path)
		if err != nil {
			return nil, errors.NewValidation(fmt.Sprintf("failed to read CSV file: %v", err))
		}
		data = string(raw)
	}

	table, err := csvmap.Parse(strings.NewReader(data))
	if err != nil {
		return nil, err
	}

	schema := kind.Schema()
	mapping := csvmap.AutoMap(table.Headers, schema.AutoMapPatterns)
	for field, column := range in.Mapping {
		if _, ok := mapping[field]; !ok {
			return nil, errors.NewValidation(fmt.Sprintf("unknown mapping field: %q", field))
		}
		if column != "" && !containsHeader(table.Headers, column) {
			return nil, errors.NewValidation(fmt.Sprintf("mapped column %q not found in CSV headers", column))
		}
		mapping[field] = column
	}

	if err := csvmap.CheckRequiredMapped(schema, mapping); err != nil {
		return nil, err
	}

	valid, invalid := csvmap.Validate(table.Rows, schema.RequiredFields, mapping)

	out := &ImportCSVOutput{
		Kind:    kind.Title(),
		Mode:    string(mode),
		Applied: in.Apply,
		Mapping: mapping,
		Valid:   len(valid),
		Invalid: invalid,
	}
	if !in.Apply {
		return out, nil
	}

	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}
	added, skipped := kind.Apply(p, newAllocator(p), valid, mapping, mode)
	if err := saveProject(db, p); err != nil {
		return nil, err
	}

	out.Added = added
	out.Skipped = skipped
	return out, nil
}

func containsHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}
