package csvmap

import (
	"regexp"
	"strings"

	"github.com/tesseralabs/tessera/internal/project"
)

// Mode controls how accepted items are applied to the existing collection.
type Mode string

const (
	// ModeAppend merges new items into the existing collection, skipping
	// duplicates per the kind's predicate.
	ModeAppend Mode = "append"

	// ModeOverwrite replaces the collection entirely. No duplicate check is
	// applied; for codes, all segment assignments are stripped since the
	// referenced ids no longer exist.
	ModeOverwrite Mode = "overwrite"
)

// Summary reports the outcome of applying one import.
type Summary struct {
	Added   int          `json:"added"`
	Skipped int          `json:"skipped"`
	Invalid []InvalidRow `json:"invalid,omitempty"`
}

// Kind is one importable entity type. Each variant owns its schema, its
// row-to-entity construction, its duplicate predicate, and its commit
// semantics.
type Kind interface {
	// Title is the human-readable kind name for summaries.
	Title() string

	// Schema returns the declarative import configuration.
	Schema() Schema

	// Apply converts the validated rows into entities and applies them to
	// the project under the given mode, returning added and skipped counts.
	Apply(p *project.Project, alloc *project.Allocator, rows []Row, mapping map[string]string, mode Mode) (added, skipped int)
}

// CodeKind imports codes: name, optional description, inclusion and
// exclusion criteria, and an optional color.
type CodeKind struct{}

func (CodeKind) Title() string { return "Codes" }

func (CodeKind) Schema() Schema {
	return Schema{
		Fields: []Field{
			{Key: "name", Label: "Name"},
			{Key: "description", Label: "Description", Optional: true},
			{Key: "inclusion", Label: "Inclusion criteria", Optional: true},
			{Key: "exclusion", Label: "Exclusion criteria", Optional: true},
			{Key: "color", Label: "Color", Optional: true},
		},
		AutoMapPatterns: map[string][]string{
			"name":        {"name", "code", "title", "label"},
			"description": {"description", "desc", "definition", "meaning"},
			"inclusion":   {"inclusion", "include", "when to use"},
			"exclusion":   {"exclusion", "exclude", "when not"},
			"color":       {"color", "colour", "hex", "background"},
		},
		RequiredFields: []string{"name"},
	}
}

func (k CodeKind) Apply(p *project.Project, alloc *project.Allocator, rows []Row, mapping map[string]string, mode Mode) (added, skipped int) {
	// Resync the allocator to the scope the new colors must be distinct
	// within: the current code set in append mode, nothing in overwrite mode.
	if mode == ModeOverwrite {
		alloc.Reset()
	} else {
		alloc.Initialize(p.Codes)
	}

	var items []project.Code
	for _, row := range rows {
		code := project.Code{
			ID:          project.NewID(),
			Name:        cell(row, mapping, "name"),
			Description: cell(row, mapping, "description"),
			Inclusion:   cell(row, mapping, "inclusion"),
			Exclusion:   cell(row, mapping, "exclusion"),
		}

		// An unparseable color cell counts as "not provided"; the allocator
		// assigns one rather than importing a bad literal.
		if color, ok := NormalizeHexColor(cell(row, mapping, "color")); ok {
			code.Color = color
			alloc.MarkUsed(color)
		} else {
			code.Color = alloc.NextPreset()
		}

		if mode == ModeAppend && p.HasCodeName(code.Name) {
			skipped++
			continue
		}
		items = append(items, code)
		added++
	}

	if mode == ModeOverwrite {
		p.Codes = items
		if p.Codes == nil {
			p.Codes = []project.Code{}
		}
		p.ClearAssignments()
	} else {
		p.Codes = append(p.Codes, items...)
	}
	return added, skipped
}

// SegmentKind imports text segments. Imported segments are anchored to
// offsets 0..len(text) with no real document position and carry no code
// assignments.
type SegmentKind struct{}

func (SegmentKind) Title() string { return "Segments" }

func (SegmentKind) Schema() Schema {
	return Schema{
		Fields: []Field{
			{Key: "text", Label: "Segment Text"},
		},
		AutoMapPatterns: map[string][]string{
			"text": {"text", "sentence", "segment", "content", "message", "quote"},
		},
		RequiredFields: []string{"text"},
	}
}

func (k SegmentKind) Apply(p *project.Project, _ *project.Allocator, rows []Row, mapping map[string]string, mode Mode) (added, skipped int) {
	documentID := ""
	if p.Document != nil {
		documentID = p.Document.ID
	}

	var items []project.CodedSegment
	for _, row := range rows {
		text := cell(row, mapping, "text")
		items = append(items, project.CodedSegment{
			ID:         project.NewID(),
			DocumentID: documentID,
			Text:       text,
			Start:      0,
			End:        len(text),
			CodeIDs:    []string{},
		})
		added++
	}

	if mode == ModeOverwrite {
		p.CodedSegments = items
		if p.CodedSegments == nil {
			p.CodedSegments = []project.CodedSegment{}
		}
	} else {
		p.CodedSegments = append(p.CodedSegments, items...)
	}
	return added, skipped
}

// cell returns the trimmed value of the mapped column for field, or "" when
// the field is unmapped. Blank optional fields stay empty strings, never nil.
func cell(row Row, mapping map[string]string, field string) string {
	column := mapping[field]
	if column == "" {
		return ""
	}
	return strings.TrimSpace(row[column])
}

var hexColorPattern = regexp.MustCompile(`^#?([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// NormalizeHexColor validates a 3- or 6-digit hex color, with or without a
// leading #, and returns it lowercased with the # prefix. Anything else is
// reported as not provided.
func NormalizeHexColor(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	m := hexColorPattern.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	return "#" + strings.ToLower(m[1]), true
}
