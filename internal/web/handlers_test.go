package web

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/tesseralabs/tessera/internal/config"
	"github.com/tesseralabs/tessera/internal/ops"
	"github.com/tesseralabs/tessera/internal/store"
)

func setupTest(t *testing.T) *Handlers {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := store.Init(tmpDir)
	if err != nil {
		t.Fatalf("store.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.APIKey = ""

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}
	renderer := NewRenderer(templateSub, "test")

	return &Handlers{
		db:       database,
		cfg:      cfg,
		renderer: renderer,
	}
}

func seedDocument(t *testing.T, h *Handlers, content string) {
	t.Helper()
	if _, err := ops.LoadDocument(h.db, ops.LoadDocumentInput{Name: "seed.txt", Content: content}); err != nil {
		t.Fatalf("seed document: %v", err)
	}
}

func postForm(t *testing.T, handler http.HandlerFunc, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

// --- HandleDocument ---

func TestHandleDocument_Empty(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/document", nil)
	rec := httptest.NewRecorder()
	h.HandleDocument(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No document loaded") {
		t.Error("expected empty state in response")
	}
}

func TestHandleDocument_WithContent(t *testing.T) {
	h := setupTest(t)
	seedDocument(t, h, "First one. Second one.")

	req := httptest.NewRequest("GET", "/document", nil)
	rec := httptest.NewRecorder()
	h.HandleDocument(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "seed.txt") {
		t.Error("expected document name in response")
	}
	if !strings.Contains(body, "First one.") || !strings.Contains(body, "Second one.") {
		t.Error("expected sentences in response")
	}
}

func TestHandleDocument_TintsCodedSentences(t *testing.T) {
	h := setupTest(t)
	seedDocument(t, h, "First one. Second one.")

	code, err := ops.AddCode(h.db, ops.AddCodeInput{Name: "Risk"})
	if err != nil {
		t.Fatalf("AddCode: %v", err)
	}
	seg, err := ops.AddSegment(h.db, ops.AddSegmentInput{SentenceIndex: 0})
	if err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	if _, err := ops.Toggle(h.db, ops.ToggleInput{SegmentID: seg.ID, CodeID: code.ID}); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	req := httptest.NewRequest("GET", "/document", nil)
	rec := httptest.NewRecorder()
	h.HandleDocument(rec, req)

	body := rec.Body.String()
	// First code gets the first palette color; the coded row carries it at
	// 25% alpha, the uncoded row carries none.
	if !strings.Contains(body, "background-color: #ef444440") {
		t.Error("coded sentence not tinted with its code color")
	}
	if strings.Count(body, "background-color: #ef444440") != 1 {
		t.Error("tint applied to more than the coded sentence")
	}
}

func TestHandleDocumentUpload_Paste(t *testing.T) {
	h := setupTest(t)

	rec := postForm(t, h.HandleDocumentUpload, "/document", url.Values{
		"name":    {"notes.txt"},
		"content": {"Pasted text."},
	})

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}

	doc, err := ops.ShowDocument(h.db, ops.ShowDocumentInput{IncludeContent: true})
	if err != nil {
		t.Fatalf("ShowDocument: %v", err)
	}
	if doc.Name != "notes.txt" || doc.Content != "Pasted text." {
		t.Errorf("stored document = %q %q", doc.Name, doc.Content)
	}
}

func TestHandleDocumentUpload_EmptyContent(t *testing.T) {
	h := setupTest(t)

	rec := postForm(t, h.HandleDocumentUpload, "/document", url.Values{"name": {"a.txt"}})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// --- Codes ---

func TestHandleCodeAddAndList(t *testing.T) {
	h := setupTest(t)

	rec := postForm(t, h.HandleCodeAdd, "/codes", url.Values{
		"name":        {"Risk"},
		"description": {"Mentions of danger"},
	})
	if rec.Code != http.StatusFound {
		t.Fatalf("add status = %d, want 302", rec.Code)
	}

	req := httptest.NewRequest("GET", "/codes", nil)
	list := httptest.NewRecorder()
	h.HandleCodes(list, req)

	body := list.Body.String()
	if !strings.Contains(body, "Risk") || !strings.Contains(body, "Mentions of danger") {
		t.Error("expected new code in codes page")
	}
	if !strings.Contains(body, "#ef4444") {
		t.Error("expected allocated preset color in codes page")
	}
}

func TestHandleCodeAdd_Duplicate(t *testing.T) {
	h := setupTest(t)

	postForm(t, h.HandleCodeAdd, "/codes", url.Values{"name": {"Risk"}})
	rec := postForm(t, h.HandleCodeAdd, "/codes", url.Values{"name": {"risk"}})

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestHandleCodeDelete(t *testing.T) {
	h := setupTest(t)

	created, err := ops.AddCode(h.db, ops.AddCodeInput{Name: "Risk"})
	if err != nil {
		t.Fatalf("AddCode: %v", err)
	}

	req := httptest.NewRequest("POST", "/codes/"+created.ID+"/delete", nil)
	req.SetPathValue("id", created.ID)
	rec := httptest.NewRecorder()
	h.HandleCodeDelete(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	list, err := ops.ListCodes(h.db)
	if err != nil {
		t.Fatalf("ListCodes: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("codes remaining = %d", list.Total)
	}
}

// --- Segments ---

func TestHandleSegmentAddAndToggle(t *testing.T) {
	h := setupTest(t)
	seedDocument(t, h, "The risk is real. All good.")
	code, err := ops.AddCode(h.db, ops.AddCodeInput{Name: "Risk"})
	if err != nil {
		t.Fatalf("AddCode: %v", err)
	}

	rec := postForm(t, h.HandleSegmentAdd, "/segments", url.Values{"sentence_index": {"0"}})
	if rec.Code != http.StatusFound {
		t.Fatalf("add status = %d, want 302", rec.Code)
	}

	segs, err := ops.ListSegments(h.db)
	if err != nil {
		t.Fatalf("ListSegments: %v", err)
	}
	if segs.Total != 1 {
		t.Fatalf("segments = %d, want 1", segs.Total)
	}

	req := httptest.NewRequest("POST", "/segments/"+segs.Items[0].ID+"/toggle",
		strings.NewReader(url.Values{"code_id": {code.ID}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("id", segs.Items[0].ID)
	toggle := httptest.NewRecorder()
	h.HandleToggle(toggle, req)

	if toggle.Code != http.StatusFound {
		t.Fatalf("toggle status = %d, want 302", toggle.Code)
	}

	page := httptest.NewRecorder()
	h.HandleSegments(page, httptest.NewRequest("GET", "/segments", nil))
	if !strings.Contains(page.Body.String(), "1 of 1 segments coded") {
		t.Error("expected coded count in segments page")
	}
}

func TestHandleSegmentAdd_BadIndex(t *testing.T) {
	h := setupTest(t)
	seedDocument(t, h, "One sentence.")

	rec := postForm(t, h.HandleSegmentAdd, "/segments", url.Values{"sentence_index": {"nope"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	rec = postForm(t, h.HandleSegmentAdd, "/segments", url.Values{"sentence_index": {"5"}})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

// --- Autocode ---

func TestHandleAutocode_KeywordRedirect(t *testing.T) {
	h := setupTest(t)
	seedDocument(t, h, "The risk is real.")
	if _, err := ops.AddCode(h.db, ops.AddCodeInput{Name: "Risk"}); err != nil {
		t.Fatalf("AddCode: %v", err)
	}
	if _, err := ops.AddSegment(h.db, ops.AddSegmentInput{SentenceIndex: 0}); err != nil {
		t.Fatalf("AddSegment: %v", err)
	}

	req := httptest.NewRequest("POST", "/autocode", nil)
	rec := httptest.NewRecorder()
	h.HandleAutocode(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/segments?method=keyword" {
		t.Errorf("redirect = %q", loc)
	}
}

func TestHandleAutocode_NoSegments(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("POST", "/autocode", nil)
	rec := httptest.NewRecorder()
	h.HandleAutocode(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleEstimate_JSON(t *testing.T) {
	h := setupTest(t)
	seedDocument(t, h, "The risk is real.")
	if _, err := ops.AddCode(h.db, ops.AddCodeInput{Name: "Risk"}); err != nil {
		t.Fatalf("AddCode: %v", err)
	}
	if _, err := ops.AddSegment(h.db, ops.AddSegmentInput{SentenceIndex: 0}); err != nil {
		t.Fatalf("AddSegment: %v", err)
	}

	req := httptest.NewRequest("GET", "/autocode/estimate", nil)
	rec := httptest.NewRecorder()
	h.HandleEstimate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"method":"keyword"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

// --- Import / Export ---

func TestHandleImport_Codes(t *testing.T) {
	h := setupTest(t)

	rec := postForm(t, h.HandleImport, "/import", url.Values{
		"kind": {"codes"},
		"data": {"name,description\nRisk,Danger\n"},
	})

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/codes" {
		t.Errorf("redirect = %q", loc)
	}
	list, err := ops.ListCodes(h.db)
	if err != nil {
		t.Fatalf("ListCodes: %v", err)
	}
	if list.Total != 1 {
		t.Errorf("codes = %d", list.Total)
	}
}

func TestHandleImport_OverwriteNeedsConfirm(t *testing.T) {
	h := setupTest(t)

	form := url.Values{
		"kind": {"codes"},
		"mode": {"overwrite"},
		"data": {"name,description\nRisk,Danger\n"},
	}
	rec := postForm(t, h.HandleImport, "/import", form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	form.Set("confirm", "true")
	rec = postForm(t, h.HandleImport, "/import", form)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
}

func TestHandleExport(t *testing.T) {
	h := setupTest(t)
	seedDocument(t, h, "The risk is real.")
	code, err := ops.AddCode(h.db, ops.AddCodeInput{Name: "Risk"})
	if err != nil {
		t.Fatalf("AddCode: %v", err)
	}
	seg, err := ops.AddSegment(h.db, ops.AddSegmentInput{SentenceIndex: 0})
	if err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	if _, err := ops.Toggle(h.db, ops.ToggleInput{SegmentID: seg.ID, CodeID: code.ID}); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	req := httptest.NewRequest("GET", "/export.csv", nil)
	rec := httptest.NewRecorder()
	h.HandleExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("content disposition = %q", cd)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "Segment Text,Assigned Codes\n") {
		t.Errorf("body = %q", body)
	}
	if !strings.Contains(body, "The risk is real.,Risk") {
		t.Errorf("body = %q", body)
	}
}

// --- Reset ---

func TestHandleReset(t *testing.T) {
	h := setupTest(t)
	seedDocument(t, h, "A sentence.")

	rec := postForm(t, h.HandleReset, "/reset", url.Values{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unconfirmed status = %d, want 400", rec.Code)
	}

	rec = postForm(t, h.HandleReset, "/reset", url.Values{"confirm": {"true"}})
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}

	out, err := ops.Status(h.db)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if out.DocumentName != "" {
		t.Error("document survived reset")
	}
}

// --- Error negotiation ---

func TestRenderError_JSONAccept(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("POST", "/autocode", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleAutocode(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"code":"CONFIGURATION"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}
