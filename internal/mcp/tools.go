package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions

var listToolDef = mcp.NewTool("session_list",
	mcp.WithDescription("List recent unsaved recording sessions, newest first. Returns summaries without media payloads."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of sessions to return (default 20, max 100)"),
	),
)

var savedToolDef = mcp.NewTool("session_saved",
	mcp.WithDescription("List saved recording sessions, newest first. Saved sessions are excluded from retention pruning."),
)

var fetchToolDef = mcp.NewTool("session_fetch",
	mcp.WithDescription("Fetch a session's metadata by id, including thumbnails and media payload size."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Session id"),
	),
)

var saveToolDef = mcp.NewTool("session_save",
	mcp.WithDescription("Mark a session as saved with a name, excluding it from retention pruning."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Session id"),
	),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Name for the saved session"),
	),
)

var trimToolDef = mcp.NewTool("session_trim",
	mcp.WithDescription("Set trim points on a saved session. The payload is untouched; trim points are metadata applied on export."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Session id"),
	),
	mcp.WithNumber("trim_in",
		mcp.Required(),
		mcp.Description("Trim start offset in seconds, >= 0"),
	),
	mcp.WithNumber("trim_out",
		mcp.Required(),
		mcp.Description("Trim end offset in seconds, > trim_in and <= the session duration"),
	),
)

var deleteToolDef = mcp.NewTool("session_delete",
	mcp.WithDescription("Delete a session and its media payload. Deleting an id that does not exist is not an error."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Session id"),
	),
)

var pruneToolDef = mcp.NewTool("session_prune",
	mcp.WithDescription("Apply the retention budget to unsaved sessions: walking newest first, sessions past the cumulative duration budget are deleted."),
	mcp.WithNumber("budget_seconds",
		mcp.Description("Duration budget in seconds (default: the configured retention budget)"),
	),
)

var exportToolDef = mcp.NewTool("session_export",
	mcp.WithDescription("Write a session's media payload to a file in the exports directory, named after the saved name or the id."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Session id"),
	),
)
