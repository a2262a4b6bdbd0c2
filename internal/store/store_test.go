package store

import (
	"testing"

	"github.com/tesseralabs/tessera/internal/project"
)

func TestInit_CreatesSchema(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	version, err := GetUserVersion(db)
	if err != nil {
		t.Fatalf("GetUserVersion failed: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestLoadProject_EmptyDatabase(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	p, err := LoadProject(db)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if p.Document != nil {
		t.Error("fresh project should have no document")
	}
	if len(p.Codes) != 0 || len(p.CodedSegments) != 0 {
		t.Error("fresh project should be empty")
	}
}

func TestSaveAndLoadProject_RoundTrip(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	p := project.New()
	p.Document = &project.Document{ID: "d1", Name: "interview.txt", Content: "Hello. World."}
	p.Codes = []project.Code{{ID: "c1", Name: "Trust", Color: "#ef4444"}}
	p.CodedSegments = []project.CodedSegment{
		{ID: "s1", DocumentID: "d1", Text: "Hello.", Start: 0, End: 6, CodeIDs: []string{"c1"}},
	}

	if err := SaveProject(db, p); err != nil {
		t.Fatalf("SaveProject failed: %v", err)
	}

	got, err := LoadProject(db)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if got.Document == nil || got.Document.Name != "interview.txt" {
		t.Errorf("document = %+v", got.Document)
	}
	if len(got.Codes) != 1 || got.Codes[0].Name != "Trust" {
		t.Errorf("codes = %+v", got.Codes)
	}
	if len(got.CodedSegments) != 1 || got.CodedSegments[0].PrimaryCodeID() != "c1" {
		t.Errorf("segments = %+v", got.CodedSegments)
	}
}

func TestSaveProject_Overwrites(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	p := project.New()
	p.Codes = []project.Code{{ID: "c1", Name: "First", Color: "#ef4444"}}
	if err := SaveProject(db, p); err != nil {
		t.Fatal(err)
	}

	p.Codes[0].Name = "Second"
	if err := SaveProject(db, p); err != nil {
		t.Fatal(err)
	}

	got, err := LoadProject(db)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Codes) != 1 || got.Codes[0].Name != "Second" {
		t.Errorf("codes = %+v, want single updated code", got.Codes)
	}
}

func TestLoadProject_CorruptSnapshot(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`INSERT INTO snapshots (key, data, updated_at) VALUES ('project', '{broken', 0)`); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProject(db)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if len(p.Codes) != 0 {
		t.Error("corrupt snapshot should yield a fresh project")
	}
}

func TestClearProject(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	p := project.New()
	p.Codes = []project.Code{{ID: "c1", Name: "X", Color: "#ef4444"}}
	if err := SaveProject(db, p); err != nil {
		t.Fatal(err)
	}
	if err := ClearProject(db); err != nil {
		t.Fatalf("ClearProject failed: %v", err)
	}

	got, err := LoadProject(db)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Codes) != 0 {
		t.Error("project should be empty after clear")
	}
}
