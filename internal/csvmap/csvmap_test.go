package csvmap

import (
	"strings"
	"testing"

	"github.com/tesseralabs/tessera/internal/errors"
)

func TestParse_Basic(t *testing.T) {
	input := "Name, Description\nTrust, \"Belief in, reliability\"\nRisk,exposure\n"

	table, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(table.Headers) != 2 || table.Headers[0] != "Name" || table.Headers[1] != "Description" {
		t.Errorf("Headers = %v", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}
	if table.Rows[0]["Name"] != "Trust" {
		t.Errorf("row 0 Name = %q", table.Rows[0]["Name"])
	}
	if table.Rows[0]["Description"] != "Belief in, reliability" {
		t.Errorf("row 0 Description = %q", table.Rows[0]["Description"])
	}
}

func TestParse_RaggedRows(t *testing.T) {
	input := "a,b,c\n1,2\n1,2,3,4\n"

	table, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if table.Rows[0]["c"] != "" {
		t.Errorf("short row cell = %q, want blank", table.Rows[0]["c"])
	}
	if table.Rows[1]["c"] != "3" {
		t.Errorf("long row cell = %q, want 3", table.Rows[1]["c"])
	}
}

func TestParse_SkipsBlankRecords(t *testing.T) {
	input := "text\nhello\n\"\"\nworld\n"

	table, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Errorf("got %d rows, want 2 (blank skipped)", len(table.Rows))
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("Parse(\"\") error = %v, want VALIDATION", err)
	}
}

func TestAutoMap(t *testing.T) {
	headers := []string{"Code Label", "Meaning", "Background Colour"}
	patterns := CodeKind{}.Schema().AutoMapPatterns

	mapping := AutoMap(headers, patterns)

	if mapping["name"] != "Code Label" {
		t.Errorf("name mapped to %q", mapping["name"])
	}
	if mapping["description"] != "Meaning" {
		t.Errorf("description mapped to %q", mapping["description"])
	}
	if mapping["color"] != "Background Colour" {
		t.Errorf("color mapped to %q", mapping["color"])
	}
}

func TestAutoMap_UnmatchedLeftBlank(t *testing.T) {
	mapping := AutoMap([]string{"x", "y"}, map[string][]string{"text": {"text", "sentence"}})
	if mapping["text"] != "" {
		t.Errorf("text mapped to %q, want blank for manual selection", mapping["text"])
	}
}

func TestAutoMap_FirstHeaderWins(t *testing.T) {
	headers := []string{"code name", "display name"}
	mapping := AutoMap(headers, map[string][]string{"name": {"name"}})
	if mapping["name"] != "code name" {
		t.Errorf("name mapped to %q, want first matching header", mapping["name"])
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	rows := []Row{
		{"Name": "Trust", "Color": "#fff"},
		{"Name": "", "Color": "#abc"},
		{"Name": "  ", "Color": ""},
	}
	mapping := map[string]string{"name": "Name", "color": "Color"}

	valid, invalid := Validate(rows, []string{"name"}, mapping)

	if len(valid) != 1 {
		t.Errorf("valid = %d, want 1", len(valid))
	}
	if len(invalid) != 2 {
		t.Fatalf("invalid = %d, want 2", len(invalid))
	}
	if invalid[0].Index != 2 {
		t.Errorf("invalid[0].Index = %d, want 2 (1-based)", invalid[0].Index)
	}
	if len(invalid[0].Issues) != 1 || invalid[0].Issues[0] != "Missing name" {
		t.Errorf("issues = %v, want [Missing name]", invalid[0].Issues)
	}
}

func TestValidate_EveryRequiredMissing(t *testing.T) {
	rows := []Row{{"A": ""}}
	mapping := map[string]string{"name": "A", "text": ""}

	valid, invalid := Validate(rows, []string{"name", "text"}, mapping)

	if len(valid) != 0 {
		t.Errorf("valid = %d, want 0", len(valid))
	}
	if len(invalid) != 1 {
		t.Fatalf("invalid = %d, want 1", len(invalid))
	}
	want := []string{"Missing name", "Missing text"}
	if len(invalid[0].Issues) != 2 || invalid[0].Issues[0] != want[0] || invalid[0].Issues[1] != want[1] {
		t.Errorf("issues = %v, want %v", invalid[0].Issues, want)
	}
}

func TestCheckRequiredMapped(t *testing.T) {
	schema := CodeKind{}.Schema()

	if err := CheckRequiredMapped(schema, map[string]string{"name": "Name"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := CheckRequiredMapped(schema, map[string]string{"name": ""})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("error = %v, want VALIDATION", err)
	}
}
