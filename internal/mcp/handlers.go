package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tesseralabs/tessera/internal/config"
	"github.com/tesseralabs/tessera/internal/errors"
	"github.com/tesseralabs/tessera/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	baseDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, baseDir string) *Handlers {
	return &Handlers{db: db, cfg: cfg, baseDir: baseDir}
}

// Request types for each tool

// DocumentLoadRequest represents the arguments for document_load.
type DocumentLoadRequest struct {
	Name    string `json:"name"`
	Content string `json:"content,omitempty"`
	Path    string `json:"path,omitempty"`
}

// DocumentShowRequest represents the arguments for document_show.
type DocumentShowRequest struct {
	IncludeContent bool `json:"include_content,omitempty"`
}

// CodeAddRequest represents the arguments for code_add.
type CodeAddRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Inclusion   string `json:"inclusion,omitempty"`
	Exclusion   string `json:"exclusion,omitempty"`
	Color       string `json:"color,omitempty"`
}

// CodeUpdateRequest represents the arguments for code_update.
type CodeUpdateRequest struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Inclusion   *string `json:"inclusion,omitempty"`
	Exclusion   *string `json:"exclusion,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// CodeDeleteRequest represents the arguments for code_delete.
type CodeDeleteRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// SegmentAddRequest represents the arguments for segment_add.
type SegmentAddRequest struct {
	SentenceIndex int `json:"sentence_index"`
}

// SegmentToggleRequest represents the arguments for segment_toggle.
type SegmentToggleRequest struct {
	SegmentID string `json:"segment_id"`
	CodeID    string `json:"code_id,omitempty"`
	CodeName  string `json:"code_name,omitempty"`
}

// ImportRequest represents the arguments for project_import.
type ImportRequest struct {
	Kind    string `json:"kind"`
	Data    string `json:"data,omitempty"`
	Path    string `json:"path,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Apply   bool   `json:"apply,omitempty"`
	Confirm bool   `json:"confirm,omitempty"`
}

// ExportRequest represents the arguments for project_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// ResetRequest represents the arguments for project_reset.
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// Handler implementations

// HandleStatus handles the project_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Status(h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDocumentLoad handles the document_load tool call.
func (h *Handlers) HandleDocumentLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DocumentLoadRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	content := input.Content
	if content == "" && input.Path != "" {
		raw, err := os.ReadFile(input.Path)
		if err != nil {
			return errorResult(errors.NewValidation("failed to read file: " + err.Error())), nil
		}
		content = string(raw)
	}

	result, err := ops.LoadDocument(h.db, ops.LoadDocumentInput{Name: input.Name, Content: content})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDocumentShow handles the document_show tool call.
func (h *Handlers) HandleDocumentShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DocumentShowRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.ShowDocument(h.db, ops.ShowDocumentInput{IncludeContent: input.IncludeContent})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCodeAdd handles the code_add tool call.
func (h *Handlers) HandleCodeAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CodeAddRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.AddCode(h.db, ops.AddCodeInput{
		Name:        input.Name,
		Description: input.Description,
		Inclusion:   input.Inclusion,
		Exclusion:   input.Exclusion,
		Color:       input.Color,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCodeUpdate handles the code_update tool call.
func (h *Handlers) HandleCodeUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CodeUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.UpdateCode(h.db, ops.UpdateCodeInput{
		ID:          input.ID,
		Name:        input.Name,
		Description: input.Description,
		Inclusion:   input.Inclusion,
		Exclusion:   input.Exclusion,
		Color:       input.Color,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCodeDelete handles the code_delete tool call.
func (h *Handlers) HandleCodeDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CodeDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.DeleteCode(h.db, ops.DeleteCodeInput{ID: input.ID, Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCodeList handles the code_list tool call.
func (h *Handlers) HandleCodeList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListCodes(h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSegmentAdd handles the segment_add tool call.
func (h *Handlers) HandleSegmentAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SegmentAddRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.AddSegment(h.db, ops.AddSegmentInput{SentenceIndex: input.SentenceIndex})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSegmentList handles the segment_list tool call.
func (h *Handlers) HandleSegmentList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ListSegments(h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSegmentToggle handles the segment_toggle tool call.
func (h *Handlers) HandleSegmentToggle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SegmentToggleRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Toggle(h.db, ops.ToggleInput{
		SegmentID: input.SegmentID,
		CodeID:    input.CodeID,
		CodeName:  input.CodeName,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleAutocodeRun handles the autocode_run tool call.
func (h *Handlers) HandleAutocodeRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Autocode(ctx, h.db, h.cfg)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleAutocodeEstimate handles the autocode_estimate tool call.
func (h *Handlers) HandleAutocodeEstimate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.EstimateAutocode(h.db, h.cfg)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleImport handles the project_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.ImportCSV(h.db, ops.ImportCSVInput{
		Kind:    input.Kind,
		Data:    input.Data,
		Path:    input.Path,
		Mode:    input.Mode,
		Apply:   input.Apply,
		Confirm: input.Confirm,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the project_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.ExportCSV(h.db, h.baseDir, ops.ExportCSVInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleReset handles the project_reset tool call.
func (h *Handlers) HandleReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ResetRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}
	if !input.Confirm {
		return errorResult(errors.NewValidation("confirm must be true to reset the project")), nil
	}

	result, err := ops.Reset(h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult converts an error into an MCP error result with a structured
// JSON payload.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tErr, ok := err.(*errors.TesseraError); ok {
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": tErr.Message,
			"status":  tErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult converts data into a JSON MCP result.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
