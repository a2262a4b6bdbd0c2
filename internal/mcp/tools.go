package mcp

import "github.com/mark3labs/mcp-go/mcp"

var statusToolDef = mcp.NewTool("project_status",
	mcp.WithDescription("Summarize the current project: document, sentence count, codes, segments, and how many segments are coded."),
)

var resetToolDef = mcp.NewTool("project_reset",
	mcp.WithDescription("Delete the document, all codes, and all segments. Requires confirm=true."),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true to perform the reset.")),
)

var importToolDef = mcp.NewTool("project_import",
	mcp.WithDescription("Import codes or segments from CSV. Column mapping is auto-detected from headers and can be overridden. Rows missing required fields are excluded and reported, never fatal. Set apply=true to commit; otherwise only the plan is returned."),
	mcp.WithString("kind", mcp.Required(), mcp.Description("What to import: \"codes\" or \"segments\".")),
	mcp.WithString("data", mcp.Description("CSV text, including the header row. Either data or path is required.")),
	mcp.WithString("path", mcp.Description("Path to a CSV file. Either data or path is required.")),
	mcp.WithString("mode", mcp.Description("\"append\" (default, skips duplicate code names) or \"overwrite\" (replaces the collection; replacing codes strips all assignments).")),
	mcp.WithBoolean("apply", mcp.Description("Commit the import. When false, return the proposed mapping and row partition only.")),
	mcp.WithBoolean("confirm", mcp.Description("Acknowledge that an overwrite commit replaces existing data. Required when apply=true and mode=overwrite.")),
)

var exportToolDef = mcp.NewTool("project_export",
	mcp.WithDescription("Export all segments with their assigned code names to a CSV file with columns \"Segment Text\" and \"Assigned Codes\"."),
	mcp.WithString("path", mcp.Description("Destination file, must end in .csv. Defaults to a timestamped file under the exports directory.")),
)

var documentLoadToolDef = mcp.NewTool("document_load",
	mcp.WithDescription("Load a plain text document for analysis. Replaces the current document and clears all existing segments."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Display name for the document, usually the file name.")),
	mcp.WithString("content", mcp.Description("Document text. Either content or path is required.")),
	mcp.WithString("path", mcp.Description("Path to a text file to load. Either content or path is required.")),
)

var documentShowToolDef = mcp.NewTool("document_show",
	mcp.WithDescription("Show the loaded document and its sentence tokenization with character offsets."),
	mcp.WithBoolean("include_content", mcp.Description("Include the full document text in the response.")),
)

var codeAddToolDef = mcp.NewTool("code_add",
	mcp.WithDescription("Create a code. Names are unique case-insensitively. When no color is given, one is allocated from the preset palette, distinct from colors already in use."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Code label.")),
	mcp.WithString("description", mcp.Description("What the code captures.")),
	mcp.WithString("inclusion", mcp.Description("When to apply the code.")),
	mcp.WithString("exclusion", mcp.Description("When not to apply the code.")),
	mcp.WithString("color", mcp.Description("Hex color like #3b82f6. Allocated automatically when omitted.")),
)

var codeUpdateToolDef = mcp.NewTool("code_update",
	mcp.WithDescription("Update fields of an existing code. Omitted fields are left unchanged."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Code ID.")),
	mcp.WithString("name", mcp.Description("New name; must not collide with another code.")),
	mcp.WithString("description", mcp.Description("New description.")),
	mcp.WithString("inclusion", mcp.Description("New inclusion criteria.")),
	mcp.WithString("exclusion", mcp.Description("New exclusion criteria.")),
	mcp.WithString("color", mcp.Description("New hex color.")),
)

var codeDeleteToolDef = mcp.NewTool("code_delete",
	mcp.WithDescription("Delete a code by id or name. Its assignment is removed from every segment."),
	mcp.WithString("id", mcp.Description("Code ID. Provide id or name, not both.")),
	mcp.WithString("name", mcp.Description("Code name, matched case-insensitively.")),
)

var codeListToolDef = mcp.NewTool("code_list",
	mcp.WithDescription("List all codes with their colors, criteria, and per-code segment usage counts."),
)

var segmentAddToolDef = mcp.NewTool("segment_add",
	mcp.WithDescription("Promote a document sentence to a codable segment. The sentence is addressed by the index reported by document_show."),
	mcp.WithNumber("sentence_index", mcp.Required(), mcp.Description("Zero-based sentence index.")),
)

var segmentListToolDef = mcp.NewTool("segment_list",
	mcp.WithDescription("List all segments with their assigned code ids and resolved code names."),
)

var segmentToggleToolDef = mcp.NewTool("segment_toggle",
	mcp.WithDescription("Toggle a code assignment on a segment: assigns the code if absent, removes it if present."),
	mcp.WithString("segment_id", mcp.Required(), mcp.Description("Segment ID.")),
	mcp.WithString("code_id", mcp.Description("Code ID. Provide code_id or code_name, not both.")),
	mcp.WithString("code_name", mcp.Description("Code name, matched case-insensitively.")),
)

var autocodeRunToolDef = mcp.NewTool("autocode_run",
	mcp.WithDescription("Automatically assign codes to every segment, replacing all existing assignments. Uses the configured completion API when an API key is set, whole-word keyword matching otherwise. A remote failure aborts without changing anything."),
)

var autocodeEstimateToolDef = mcp.NewTool("autocode_estimate",
	mcp.WithDescription("Preview the token count and cost of running autocode_run on the current project, without sending anything."),
)
