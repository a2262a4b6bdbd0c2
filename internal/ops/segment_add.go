package ops

import (
	"database/sql"
	"fmt"

	"github.com/tesseralabs/tessera/internal/errors"
	"github.com/tesseralabs/tessera/internal/project"
)

// AddSegmentInput contains parameters for the AddSegment operation.
type AddSegmentInput struct {
	// SentenceIndex selects the sentence to promote, as reported by
	// ShowDocument.
	SentenceIndex int
}

// AddSegmentOutput contains the result of the AddSegment operation.
type AddSegmentOutput struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// AddSegment promotes a document sentence to a coded segment. The segment
// starts with no code assignments.
func AddSegment(db *sql.DB, input AddSegmentInput) (*AddSegmentOutput, error) {
	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}
	if p.Document == nil {
		return nil, errors.NewConfiguration("load a document before creating segments")
	}

	var sentence *project.Sentence
	for _, s := range project.Sentences(p.Document.Content) {
		if s.Index == input.SentenceIndex {
			sentence = &s
			break
		}
	}
	if sentence == nil {
		return nil, errors.NewNotFound("sentence", fmt.Sprintf("index %d", input.SentenceIndex))
	}

	// Segments are matched back to sentences by text, so a second promotion
	// of the same text would be indistinguishable from the first.
	for i := range p.CodedSegments {
		if p.CodedSegments[i].Text == sentence.Text {
			return nil, errors.NewConflict("a segment with this text already exists")
		}
	}

	seg := project.CodedSegment{
		ID:         project.NewID(),
		DocumentID: p.Document.ID,
		Text:       sentence.Text,
		Start:      sentence.Start,
		End:        sentence.End,
		CodeIDs:    []string{},
	}
	p.CodedSegments = append(p.CodedSegments, seg)

	if err := saveProject(db, p); err != nil {
		return nil, err
	}

	return &AddSegmentOutput{ID: seg.ID, Text: seg.Text, Start: seg.Start, End: seg.End}, nil
}
