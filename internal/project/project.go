package project

import (
	"encoding/json"
	"strings"
)

// Project is the aggregate root: at most one document, an ordered set of
// codes, and the coded segments referencing them. The whole aggregate is
// persisted as one snapshot after every mutation.
type Project struct {
	// Document is the currently loaded document, if any
	Document *Document `json:"document,omitempty"`

	// Codes is the ordered code list, unique by ID
	Codes []Code `json:"codes"`

	// CodedSegments is the ordered segment list, unique by ID
	CodedSegments []CodedSegment `json:"coded_segments"`
}

// New returns an empty project.
func New() *Project {
	return &Project{
		Codes:         []Code{},
		CodedSegments: []CodedSegment{},
	}
}

// Document is the text under analysis. Immutable once created; loading a new
// file replaces it and clears all coded segments, since segments are anchored
// to sentence text of a specific document.
type Document struct {
	// ID is a ULID that uniquely identifies this document
	ID string `json:"id"`

	// Name is the file or display name
	Name string `json:"name"`

	// Content is the full raw text
	Content string `json:"content"`
}

// Code is a labeled category that can be assigned to segments.
type Code struct {
	// ID is a ULID that uniquely identifies this code
	ID string `json:"id"`

	// Name is the code label (required)
	Name string `json:"name"`

	// Description explains what the code captures (optional)
	Description string `json:"description,omitempty"`

	// Inclusion describes when to apply the code (optional)
	Inclusion string `json:"inclusion,omitempty"`

	// Exclusion describes when not to apply the code (optional)
	Exclusion string `json:"exclusion,omitempty"`

	// Color is the display color as a hex string; always set after construction
	Color string `json:"color"`
}

// CodedSegment is a unit of coded text. Start/End are character offsets into
// the document content, kept for display correlation only and not enforced
// against document bounds.
type CodedSegment struct {
	// ID is a ULID that uniquely identifies this segment
	ID string `json:"id"`

	// DocumentID is the owning document, empty if the segment was imported
	// without a loaded document
	DocumentID string `json:"document_id,omitempty"`

	// Text is the literal substring
	Text string `json:"text"`

	// Start is the character offset of the segment in the document content
	Start int `json:"start"`

	// End is the character offset one past the segment end
	End int `json:"end"`

	// CodeIDs is the ordered set of assigned code IDs, no duplicates.
	// This is the single canonical assignment field; the legacy singular
	// code_id is derived on serialization.
	CodeIDs []string `json:"code_ids"`
}

// PrimaryCodeID returns the legacy singular code id: the first assigned code,
// or empty when the segment is uncoded.
func (s *CodedSegment) PrimaryCodeID() string {
	if len(s.CodeIDs) == 0 {
		return ""
	}
	return s.CodeIDs[0]
}

// HasCode reports whether the given code id is assigned to this segment.
func (s *CodedSegment) HasCode(codeID string) bool {
	for _, id := range s.CodeIDs {
		if id == codeID {
			return true
		}
	}
	return false
}

// ToggleCode flips the assignment of codeID: removes it if present, appends
// it otherwise. Toggling the same pair twice is a no-op.
func (s *CodedSegment) ToggleCode(codeID string) {
	if s.HasCode(codeID) {
		kept := make([]string, 0, len(s.CodeIDs)-1)
		for _, id := range s.CodeIDs {
			if id != codeID {
				kept = append(kept, id)
			}
		}
		s.CodeIDs = kept
		return
	}
	s.CodeIDs = append(s.CodeIDs, codeID)
}

// segmentJSON is the wire form of CodedSegment. It adds the derived code_id
// for older snapshot readers and accepts it from older snapshots.
type segmentJSON struct {
	ID         string   `json:"id"`
	DocumentID string   `json:"document_id,omitempty"`
	Text       string   `json:"text"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	CodeIDs    []string `json:"code_ids"`
	CodeID     string   `json:"code_id,omitempty"`
}

// MarshalJSON emits the canonical code_ids plus the derived legacy code_id.
func (s CodedSegment) MarshalJSON() ([]byte, error) {
	return json.Marshal(segmentJSON{
		ID:         s.ID,
		DocumentID: s.DocumentID,
		Text:       s.Text,
		Start:      s.Start,
		End:        s.End,
		CodeIDs:    s.CodeIDs,
		CodeID:     s.PrimaryCodeID(),
	})
}

// UnmarshalJSON reads the canonical plural field, falling back to the legacy
// singular for snapshots written before multi-code support.
func (s *CodedSegment) UnmarshalJSON(data []byte) error {
	var w segmentJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.ID = w.ID
	s.DocumentID = w.DocumentID
	s.Text = w.Text
	s.Start = w.Start
	s.End = w.End
	s.CodeIDs = w.CodeIDs
	if s.CodeIDs == nil {
		if w.CodeID != "" {
			s.CodeIDs = []string{w.CodeID}
		} else {
			s.CodeIDs = []string{}
		}
	}
	return nil
}

// FindCode returns the code with the given id, or nil.
func (p *Project) FindCode(id string) *Code {
	for i := range p.Codes {
		if p.Codes[i].ID == id {
			return &p.Codes[i]
		}
	}
	return nil
}

// FindCodeByName returns the code with the given exact name, or nil.
func (p *Project) FindCodeByName(name string) *Code {
	for i := range p.Codes {
		if p.Codes[i].Name == name {
			return &p.Codes[i]
		}
	}
	return nil
}

// HasCodeName reports whether a code with the given name exists,
// compared case-insensitively.
func (p *Project) HasCodeName(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for i := range p.Codes {
		if strings.ToLower(p.Codes[i].Name) == lower {
			return true
		}
	}
	return false
}

// FindSegment returns the segment with the given id, or nil.
func (p *Project) FindSegment(id string) *CodedSegment {
	for i := range p.CodedSegments {
		if p.CodedSegments[i].ID == id {
			return &p.CodedSegments[i]
		}
	}
	return nil
}

// RemoveCode deletes the code with the given id and cascades the removal of
// that id from every segment's assignment list. Returns false if no code
// with that id exists.
func (p *Project) RemoveCode(id string) bool {
	idx := -1
	for i := range p.Codes {
		if p.Codes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	p.Codes = append(p.Codes[:idx], p.Codes[idx+1:]...)

	for i := range p.CodedSegments {
		seg := &p.CodedSegments[i]
		if !seg.HasCode(id) {
			continue
		}
		kept := make([]string, 0, len(seg.CodeIDs))
		for _, cid := range seg.CodeIDs {
			if cid != id {
				kept = append(kept, cid)
			}
		}
		seg.CodeIDs = kept
	}
	return true
}

// ReplaceDocument installs a new document and clears all coded segments.
// Segments are anchored to sentence text of a specific document, so they do
// not survive a document swap.
func (p *Project) ReplaceDocument(doc *Document) {
	p.Document = doc
	p.CodedSegments = []CodedSegment{}
}

// ClearAssignments strips every code assignment from every segment. Used when
// the code set is replaced wholesale and the referenced ids no longer exist.
func (p *Project) ClearAssignments() {
	for i := range p.CodedSegments {
		p.CodedSegments[i].CodeIDs = []string{}
	}
}

// CodedCount returns the number of segments with at least one assigned code.
func (p *Project) CodedCount() int {
	n := 0
	for i := range p.CodedSegments {
		if len(p.CodedSegments[i].CodeIDs) > 0 {
			n++
		}
	}
	return n
}
