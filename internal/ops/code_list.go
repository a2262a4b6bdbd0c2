package ops

import "database/sql"

// CodeItem is one code in a listing, with its segment usage count.
type CodeItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Inclusion   string `json:"inclusion,omitempty"`
	Exclusion   string `json:"exclusion,omitempty"`
	Color       string `json:"color"`
	Segments    int    `json:"segments"`
}

// ListCodesOutput contains the result of the ListCodes operation.
type ListCodesOutput struct {
	Items []CodeItem `json:"items"`
	Total int        `json:"total"`
}

// ListCodes returns every code in definition order with usage counts.
func ListCodes(db *sql.DB) (*ListCodesOutput, error) {
	p, err := loadProject(db)
	if err != nil {
		return nil, err
	}

	items := make([]CodeItem, 0, len(p.Codes))
	for _, code := range p.Codes {
		used := 0
		for i := range p.CodedSegments {
			if p.CodedSegments[i].HasCode(code.ID) {
				used++
			}
		}
		items = append(items, CodeItem{
			ID:          code.ID,
			Name:        code.Name,
			Description: code.Description,
			Inclusion:   code.Inclusion,
			Exclusion:   code.Exclusion,
			Color:       code.Color,
			Segments:    used,
		})
	}

	return &ListCodesOutput{Items: items, Total: len(items)}, nil
}
