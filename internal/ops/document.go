package ops

import (
	"database/sql"
	"strings"
	"unicode/utf8"

	"github.com/tesseralabs/tessera/internal/errors"
	"github.com/tesseralabs/tessera/internal/project"
)

// LoadDocumentInput contains parameters for the LoadDocument operation.
type LoadDocumentInput struct {
	Name    string // display name, usually the file name
	Content string // full raw text
}

// LoadDocumentOutput contains the result of the LoadDocument operation.
type LoadDocumentOutput struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Chars           int    `json:"chars"`
	Sentences       int    `json:"sentences"`
	ClearedSegments int    `json:"cleared_segments"`
}

// LoadDocument replaces the project's document. Existing coded segments are
// cleared: they are anchored to sentence text of the outgoing document.
func LoadDocument(db *sql.DB, input LoadDocumentInput) (*LoadDocumentOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewValidation("document name is required")
	}
	if input.Content == "" {
		return nil, errors.NewValidation("document content is required")
	}
	if !isPlainText(input.Content) {
		return nil, errors.NewValidation("file is not a plain text document")
	}

	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}

	cleared := len(p.CodedSegments)
	doc := &project.Document{
		ID:      project.NewID(),
		Name:    name,
		Content: input.Content,
	}
	p.ReplaceDocument(doc)

	if err := saveProject(db, p); err != nil {
		return nil, err
	}

	return &LoadDocumentOutput{
		ID:              doc.ID,
		Name:            doc.Name,
		Chars:           len(doc.Content),
		Sentences:       len(project.Sentences(doc.Content)),
		ClearedSegments: cleared,
	}, nil
}

// isPlainText rejects content that is not valid UTF-8 or contains NUL bytes,
// the usual tell of a binary upload.
func isPlainText(content string) bool {
	return utf8.ValidString(content) && !strings.ContainsRune(content, 0)
}

// ShowDocumentOutput contains the loaded document and its tokenization.
type ShowDocumentOutput struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Content   string             `json:"content,omitempty"`
	Sentences []project.Sentence `json:"sentences"`
}

// ShowDocumentInput contains parameters for the ShowDocument operation.
type ShowDocumentInput struct {
	IncludeContent bool
}

// ShowDocument returns the current document with its sentence tokenization.
func ShowDocument(db *sql.DB, input ShowDocumentInput) (*ShowDocumentOutput, error) {
	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}
	if p.Document == nil {
		return nil, errors.NewNotFound("document", "none loaded")
	}

	out := &ShowDocumentOutput{
		ID:        p.Document.ID,
		Name:      p.Document.Name,
		Sentences: project.Sentences(p.Document.Content),
	}
	if input.IncludeContent {
		out.Content = p.Document.Content
	}
	return out, nil
}
