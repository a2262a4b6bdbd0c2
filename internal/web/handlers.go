package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tesseralabs/tessera/internal/config"
	"github.com/tesseralabs/tessera/internal/errors"
	"github.com/tesseralabs/tessera/internal/ops"
	"github.com/tesseralabs/tessera/internal/store"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleDocument handles GET /document: view the loaded document and its
// sentences with per-sentence promotion state.
func (h *Handlers) HandleDocument(w http.ResponseWriter, r *http.Request) {
	data := DocumentPageData{
		PageData: PageData{
			Title:   "Document",
			Version: h.renderer.version,
			Nav:     "document",
		},
	}

	doc, err := ops.ShowDocument(h.db, ops.ShowDocumentInput{IncludeContent: true})
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			h.renderer.renderError(w, r, err)
			return
		}
		// No document yet: render the upload form only.
		h.renderer.renderPage(w, r, "document", data)
		return
	}

	segments, err := ops.ListSegments(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	codes, err := ops.ListCodes(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	colors := make(map[string]string, len(codes.Items))
	for _, code := range codes.Items {
		colors[code.ID] = code.Color
	}

	// Sentences are matched back to segments by exact text. A coded sentence
	// is tinted with its first assigned code's color at 25% alpha.
	promoted := make(map[string]bool, len(segments.Items))
	tints := make(map[string]template.CSS, len(segments.Items))
	for _, item := range segments.Items {
		promoted[item.Text] = true
		for _, id := range item.CodeIDs {
			if color, ok := colors[id]; ok {
				tints[item.Text] = template.CSS(color + "40")
				break
			}
		}
	}

	data.HasDocument = true
	data.Name = doc.Name
	data.Chars = len(doc.Content)
	if strings.EqualFold(filepath.Ext(doc.Name), ".md") {
		data.RenderedHTML = renderMarkdown(doc.Content)
	}
	for _, s := range doc.Sentences {
		data.Sentences = append(data.Sentences, SentenceRow{
			Sentence: s,
			Promoted: promoted[s.Text],
			Tint:     tints[s.Text],
		})
	}

	h.renderer.renderPage(w, r, "document", data)
}

// HandleDocumentUpload handles POST /document: load new document text.
// Accepts either a pasted textarea or an uploaded file.
func (h *Handlers) HandleDocumentUpload(w http.ResponseWriter, r *http.Request) {
	name, content, err := documentFromRequest(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if _, err := ops.LoadDocument(h.db, ops.LoadDocumentInput{Name: name, Content: content}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/document", http.StatusFound)
}

func documentFromRequest(r *http.Request) (name, content string, err error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return "", "", errors.NewValidation("invalid form data")
		}
		file, header, ferr := r.FormFile("file")
		if ferr == nil {
			defer file.Close()
			var buf strings.Builder
			if _, err := io.Copy(&buf, file); err != nil {
				return "", "", errors.NewInternal(err)
			}
			return header.Filename, buf.String(), nil
		}
		// No file part; fall through to the form fields.
	} else if err := r.ParseForm(); err != nil {
		return "", "", errors.NewValidation("invalid form data")
	}

	name = strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = "pasted.txt"
	}
	return name, r.FormValue("content"), nil
}

// HandleCodes handles GET /codes: the codebook page.
func (h *Handlers) HandleCodes(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListCodes(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "codes", CodesPageData{
		PageData: PageData{
			Title:   "Codes",
			Version: h.renderer.version,
			Nav:     "codes",
		},
		Items: result.Items,
	})
}

// HandleCodeAdd handles POST /codes: create a code from the form.
func (h *Handlers) HandleCodeAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewValidation("invalid form data"))
		return
	}

	_, err := ops.AddCode(h.db, ops.AddCodeInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Inclusion:   r.FormValue("inclusion"),
		Exclusion:   r.FormValue("exclusion"),
		Color:       r.FormValue("color"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/codes", http.StatusFound)
}

// HandleCodeDelete handles POST /codes/{id}/delete.
func (h *Handlers) HandleCodeDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewValidation("code ID is required"))
		return
	}

	if _, err := ops.DeleteCode(h.db, ops.DeleteCodeInput{ID: id}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/codes", http.StatusFound)
}

// HandleSegments handles GET /segments: list segments with their codes and
// the toggle controls.
func (h *Handlers) HandleSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := ops.ListSegments(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	codes, err := ops.ListCodes(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "segments", SegmentsPageData{
		PageData: PageData{
			Title:   "Segments",
			Version: h.renderer.version,
			Nav:     "segments",
		},
		Items:  segments.Items,
		Codes:  codes.Items,
		Coded:  segments.Coded,
		Total:  segments.Total,
		Method: r.URL.Query().Get("method"),
	})
}

// HandleSegmentAdd handles POST /segments: promote a sentence by index.
func (h *Handlers) HandleSegmentAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewValidation("invalid form data"))
		return
	}
	index, err := strconv.Atoi(r.FormValue("sentence_index"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewValidation("sentence_index must be an integer"))
		return
	}

	if _, err := ops.AddSegment(h.db, ops.AddSegmentInput{SentenceIndex: index}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/document", http.StatusFound)
}

// HandleToggle handles POST /segments/{id}/toggle.
func (h *Handlers) HandleToggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewValidation("segment ID is required"))
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewValidation("invalid form data"))
		return
	}

	_, err := ops.Toggle(h.db, ops.ToggleInput{
		SegmentID: id,
		CodeID:    r.FormValue("code_id"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/segments", http.StatusFound)
}

// HandleAutocode handles POST /autocode: run automatic coding over all
// segments, then bounce back to the segments page with the method used.
func (h *Handlers) HandleAutocode(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Autocode(r.Context(), h.db, h.cfg)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/segments?method="+url.QueryEscape(result.Method), http.StatusFound)
}

// HandleEstimate handles GET /autocode/estimate: JSON cost preview.
func (h *Handlers) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	result, err := ops.EstimateAutocode(h.db, h.cfg)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleImport handles POST /import: CSV import of codes or segments from a
// pasted textarea.
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewValidation("invalid form data"))
		return
	}

	kind := r.FormValue("kind")
	result, err := ops.ImportCSV(h.db, ops.ImportCSVInput{
		Kind:    kind,
		Data:    r.FormValue("data"),
		Mode:    r.FormValue("mode"),
		Apply:   true,
		Confirm: r.FormValue("confirm") == "true",
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	target := "/segments"
	if result.Kind == "Codes" {
		target = "/codes"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// HandleExport handles GET /export.csv: download segments as CSV.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	p, err := store.LoadProject(h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	data, err := ops.SegmentsCSV(p)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	filename := fmt.Sprintf("segments-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}

// HandleReset handles POST /reset: wipe the project after confirmation.
func (h *Handlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewValidation("invalid form data"))
		return
	}
	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewValidation("confirm parameter must be \"true\""))
		return
	}

	if _, err := ops.Reset(h.db); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/document", http.StatusFound)
}
