package project

import (
	"regexp"
	"strings"
)

// sentencePattern splits on common terminal punctuation and newlines. This is
// deliberately simple tokenization, not real NLP.
var sentencePattern = regexp.MustCompile(`[^.!?\n]+[.!?\n]+`)

// Sentence is one tokenized unit of the document, with character offsets into
// the original content. Text is trimmed; offsets refer to the untrimmed match.
type Sentence struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Sentences tokenizes content into sentences. Content with no terminal
// punctuation at all comes back as a single sentence.
func Sentences(content string) []Sentence {
	matches := sentencePattern.FindAllString(content, -1)
	if matches == nil {
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			return nil
		}
		return []Sentence{{Index: 0, Text: trimmed, Start: 0, End: len(content)}}
	}

	sentences := make([]Sentence, 0, len(matches))
	cursor := 0
	for i, raw := range matches {
		start := strings.Index(content[cursor:], raw) + cursor
		end := start + len(raw)
		cursor = end

		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		sentences = append(sentences, Sentence{
			Index: i,
			Text:  text,
			Start: start,
			End:   end,
		})
	}
	return sentences
}
