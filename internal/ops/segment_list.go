package ops

import "database/sql"

// SegmentItem is one coded segment in a listing, with resolved code names.
type SegmentItem struct {
	ID         string   `json:"id"`
	DocumentID string   `json:"document_id,omitempty"`
	Text       string   `json:"text"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	CodeIDs    []string `json:"code_ids"`
	CodeNames  []string `json:"code_names"`
}

// ListSegmentsOutput contains the result of the ListSegments operation.
type ListSegmentsOutput struct {
	Items []SegmentItem `json:"items"`
	Total int           `json:"total"`
	Coded int           `json:"coded"`
}

// ListSegments returns every segment in creation order. Assignment ids that
// no longer resolve to a code render as "Unknown"; cascade cleanup should
// prevent that, but a listing must not fail on a stale snapshot.
func ListSegments(db *sql.DB) (*ListSegmentsOutput, error) {
	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}

	items := make([]SegmentItem, 0, len(p.CodedSegments))
	for _, seg := range p.CodedSegments {
		names := make([]string, 0, len(seg.CodeIDs))
		for _, id := range seg.CodeIDs {
			if code := p.FindCode(id); code != nil {
				names = append(names, code.Name)
			} else {
				names = append(names, "Unknown")
			}
		}
		items = append(items, SegmentItem{
			ID:         seg.ID,
			DocumentID: seg.DocumentID,
			Text:       seg.Text,
			Start:      seg.Start,
			End:        seg.End,
			CodeIDs:    seg.CodeIDs,
			CodeNames:  names,
		})
	}

	return &ListSegmentsOutput{Items: items, Total: len(items), Coded: p.CodedCount()}, nil
}
