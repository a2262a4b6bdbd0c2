// Package autocode drives automatic code suggestion: a remote completion
// model when an API key is configured, or deterministic whole-word keyword
// matching when it is not. The tier is a configuration-time choice; a remote
// failure aborts the batch rather than silently falling back.
package autocode

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tesseralabs/tessera/internal/config"
	"github.com/tesseralabs/tessera/internal/errors"
	"github.com/tesseralabs/tessera/internal/project"
)

// Completion pricing per 1K tokens, used for the cost preview and for the
// actual-cost computation from returned usage metadata.
const (
	inputCostPer1K  = 0.0015
	outputCostPer1K = 0.002
)

// Method names reported in assignment results.
const (
	MethodRemote  = "remote"
	MethodKeyword = "keyword"
)

// Assignments maps a segment id to the code names suggested for it.
type Assignments map[string][]string

// Usage is the token and cost accounting for one remote batch.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	Cost             float64 `json:"cost"`
}

// Engine runs one assignment batch at a time.
type Engine struct {
	client *Client
}

// NewEngine builds an engine from config. With a blank API key the engine
// runs the keyword tier only.
func NewEngine(cfg *config.Config) *Engine {
	e := &Engine{}
	if strings.TrimSpace(cfg.APIKey) != "" {
		e.client = NewClient(cfg.APIBaseURL, cfg.APIKey, cfg.Model)
	}
	return e
}

// Method reports which tier Assign will use.
func (e *Engine) Method() string {
	if e.client != nil {
		return MethodRemote
	}
	return MethodKeyword
}

// Assign suggests codes for every segment. Remote tier: one request for the
// whole batch; a transport or parse failure aborts with no partial result.
// Keyword tier: pure local matching, Usage is nil.
func (e *Engine) Assign(ctx context.Context, segments []project.CodedSegment, codes []project.Code) (Assignments, *Usage, error) {
	if e.client == nil {
		return KeywordAssign(segments, codes), nil, nil
	}

	content, rawUsage, err := e.client.Complete(ctx, BuildPrompt(segments, codes))
	if err != nil {
		return nil, nil, err
	}

	// Strict parse: the assistant content must be exactly the JSON object
	// mapping segment ids to code-name arrays. No partial recovery.
	var assignments Assignments
	if err := json.Unmarshal([]byte(content), &assignments); err != nil {
		return nil, nil, errors.NewResponseFormat("invalid response format from completion API")
	}

	var usage *Usage
	if rawUsage != nil && rawUsage.PromptTokens > 0 {
		usage = &Usage{
			PromptTokens:     rawUsage.PromptTokens,
			CompletionTokens: rawUsage.CompletionTokens,
			TotalTokens:      rawUsage.TotalTokens,
			Cost: float64(rawUsage.PromptTokens)/1000*inputCostPer1K +
				float64(rawUsage.CompletionTokens)/1000*outputCostPer1K,
		}
	}

	return assignments, usage, nil
}

// BuildPrompt constructs the single batch prompt enumerating every code with
// its criteria and every segment with its id and literal text.
func BuildPrompt(segments []project.CodedSegment, codes []project.Code) string {
	var codesInfo strings.Builder
	for i, code := range codes {
		if i > 0 {
			codesInfo.WriteString("\n")
		}
		codesInfo.WriteString("- " + code.Name)
		if code.Description != "" {
			codesInfo.WriteString(": " + code.Description)
		}
		if code.Inclusion != "" {
			codesInfo.WriteString("\n  Inclusion criteria: " + code.Inclusion)
		}
		if code.Exclusion != "" {
			codesInfo.WriteString("\n  Exclusion criteria: " + code.Exclusion)
		}
		if code.Description == "" && code.Inclusion == "" && code.Exclusion == "" {
			codesInfo.WriteString(": No description provided")
		}
	}

	var segmentsInfo strings.Builder
	for i, seg := range segments {
		if i > 0 {
			segmentsInfo.WriteString("\n\n")
		}
		segmentsInfo.WriteString(fmt.Sprintf("Segment %s: %q", seg.ID, seg.Text))
	}

	return fmt.Sprintf(`You are a qualitative research assistant. Please analyze the following text segments and assign the most relevant codes from the available code list. Pay special attention to the inclusion and exclusion criteria for each code. Return your response as a JSON object where each key is a segment ID and the value is an array of code names that should be assigned to that segment.

Available Codes:
%s

Text Segments to Code:
%s

Instructions:
- Only assign codes that are truly relevant to the content
- Carefully consider inclusion criteria (when to apply the code)
- Carefully consider exclusion criteria (when NOT to apply the code)
- A segment can have multiple codes if appropriate
- A segment can have no codes if none are relevant
- Use exact code names from the list above

Return format:
{
  "segmentId1": ["Code Name 1", "Code Name 2"],
  "segmentId2": ["Code Name 3"],
  "segmentId3": []
}`, codesInfo.String(), segmentsInfo.String())
}

// EstimateTokens estimates the token count of text, at roughly 4 characters
// per token.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// Estimate is the user-facing cost preview for a batch, computed before
// anything is sent.
type Estimate struct {
	InputTokens           int     `json:"input_tokens"`
	EstimatedOutputTokens int     `json:"estimated_output_tokens"`
	InputCost             float64 `json:"input_cost"`
	OutputCost            float64 `json:"output_cost"`
	TotalCost             float64 `json:"total_cost"`
	Segments              int     `json:"segments"`
	Codes                 int     `json:"codes"`
}

// EstimateCost previews the token spend for a batch by building the exact
// prompt that would be sent. Output tokens are a rough guess: each segment
// may get a few codes plus JSON framing, capped at the response limit.
func EstimateCost(segments []project.CodedSegment, codes []project.Code) Estimate {
	inputTokens := EstimateTokens(BuildPrompt(segments, codes))
	outputTokens := min(2000, len(segments)*15+len(codes)*5)

	inputCost := float64(inputTokens) / 1000 * inputCostPer1K
	outputCost := float64(outputTokens) / 1000 * outputCostPer1K

	return Estimate{
		InputTokens:           inputTokens,
		EstimatedOutputTokens: outputTokens,
		InputCost:             inputCost,
		OutputCost:            outputCost,
		TotalCost:             inputCost + outputCost,
		Segments:              len(segments),
		Codes:                 len(codes),
	}
}
