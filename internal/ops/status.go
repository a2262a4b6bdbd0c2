package ops

import (
	"database/sql"

	"github.com/tesseralabs/tessera/internal/project"
)

// StatusOutput summarizes the current project.
type StatusOutput struct {
	DocumentName  string `json:"document_name,omitempty"`
	DocumentChars int    `json:"document_chars,omitempty"`
	Sentences     int    `json:"sentences,omitempty"`
	Codes         int    `json:"codes"`
	Segments      int    `json:"segments"`
	CodedSegments int    `json:"coded_segments"`
}

// Status reports project counts without mutating anything.
func Status(db *sql.DB) (*StatusOutput, error) {
	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}

	out := &StatusOutput{
		Codes:         len(p.Codes),
		Segments:      len(p.CodedSegments),
		CodedSegments: p.CodedCount(),
	}
	if p.Document != nil {
		out.DocumentName = p.Document.Name
		out.DocumentChars = len(p.Document.Content)
		out.Sentences = len(project.Sentences(p.Document.Content))
	}
	return out, nil
}
