package autocode

import (
	"regexp"
	"strings"

	"github.com/tesseralabs/tessera/internal/project"
)

// KeywordAssign is the deterministic local tier: a code is suggested for a
// segment iff the code's name appears in the segment text as a
// case-insensitive whole word. Pure, no failure mode.
func KeywordAssign(segments []project.CodedSegment, codes []project.Code) Assignments {
	patterns := make([]*regexp.Regexp, len(codes))
	for i, code := range codes {
		name := strings.TrimSpace(code.Name)
		if name == "" {
			continue
		}
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	}

	result := make(Assignments, len(segments))
	for _, seg := range segments {
		var names []string
		for i, code := range codes {
			if patterns[i] != nil && patterns[i].MatchString(seg.Text) {
				names = append(names, code.Name)
			}
		}
		result[seg.ID] = names
	}
	return result
}
