package autocode

import (
	"reflect"
	"testing"

	"github.com/tesseralabs/tessera/internal/project"
)

func TestKeywordAssign_WholeWordOnly(t *testing.T) {
	codes := []project.Code{{ID: "c1", Name: "Risk", Color: "#ef4444"}}

	// "risky" contains "risk" but not as a whole word.
	segments := []project.CodedSegment{
		{ID: "s1", Text: "This is risky business"},
		{ID: "s2", Text: "This is a Risk factor"},
	}

	got := KeywordAssign(segments, codes)

	if len(got["s1"]) != 0 {
		t.Errorf("s1 assignments = %v, want none (word-boundary mismatch)", got["s1"])
	}
	if !reflect.DeepEqual(got["s2"], []string{"Risk"}) {
		t.Errorf("s2 assignments = %v, want [Risk]", got["s2"])
	}
}

func TestKeywordAssign_CaseInsensitive(t *testing.T) {
	codes := []project.Code{{ID: "c1", Name: "trust", Color: "#ef4444"}}
	segments := []project.CodedSegment{{ID: "s1", Text: "TRUST was mentioned."}}

	got := KeywordAssign(segments, codes)
	if !reflect.DeepEqual(got["s1"], []string{"trust"}) {
		t.Errorf("s1 = %v, want [trust]", got["s1"])
	}
}

func TestKeywordAssign_MultipleCodes(t *testing.T) {
	codes := []project.Code{
		{ID: "c1", Name: "risk", Color: "#ef4444"},
		{ID: "c2", Name: "trust", Color: "#3b82f6"},
		{ID: "c3", Name: "hope", Color: "#10b981"},
	}
	segments := []project.CodedSegment{{ID: "s1", Text: "Both risk and trust appear here."}}

	got := KeywordAssign(segments, codes)
	if !reflect.DeepEqual(got["s1"], []string{"risk", "trust"}) {
		t.Errorf("s1 = %v, want [risk trust]", got["s1"])
	}
}

func TestKeywordAssign_EscapesRegexSpecials(t *testing.T) {
	// A name with regex metacharacters must be matched literally, not panic.
	codes := []project.Code{{ID: "c1", Name: "risk/benefit", Color: "#ef4444"}}
	segments := []project.CodedSegment{
		{ID: "s1", Text: "a risk/benefit tradeoff"},
		{ID: "s2", Text: "a risk benefit tradeoff"},
	}

	got := KeywordAssign(segments, codes)
	if len(got["s1"]) != 1 {
		t.Errorf("s1 = %v, want literal match", got["s1"])
	}
	if len(got["s2"]) != 0 {
		t.Errorf("s2 = %v, want no match", got["s2"])
	}
}

func TestKeywordAssign_UnmatchedSegmentsGetEmptyList(t *testing.T) {
	codes := []project.Code{{ID: "c1", Name: "risk", Color: "#ef4444"}}
	segments := []project.CodedSegment{{ID: "s1", Text: "nothing relevant"}}

	got := KeywordAssign(segments, codes)
	names, present := got["s1"]
	if !present {
		t.Fatal("every segment must appear in the result")
	}
	if len(names) != 0 {
		t.Errorf("s1 = %v, want empty", names)
	}
}

func TestKeywordAssign_BlankNameIgnored(t *testing.T) {
	codes := []project.Code{{ID: "c1", Name: "   ", Color: "#ef4444"}}
	segments := []project.CodedSegment{{ID: "s1", Text: "anything"}}

	got := KeywordAssign(segments, codes)
	if len(got["s1"]) != 0 {
		t.Errorf("s1 = %v, want none for blank code name", got["s1"])
	}
}
