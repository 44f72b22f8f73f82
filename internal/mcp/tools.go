package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/lexicon/internal/ops"
)

var fetchToolDef = mcp.NewTool("lexicon_fetch",
	mcp.WithDescription("Fetch one term from the indexed lexicon by its exact, case-sensitive name. "+
		"Returns the description, tags, live cells and the pattern drawn as rows of '.' and '*'."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Exact term name, e.g. \"Gosper glider gun\""),
	),
)

var showToolDef = mcp.NewTool("lexicon_show",
	mcp.WithDescription("Look up a term in the loaded catalog without using the index. "+
		"Same result shape as lexicon_fetch."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Exact term name"),
	),
)

var listToolDef = mcp.NewTool("lexicon_list",
	mcp.WithDescription("List term summaries in catalog order, optionally filtered by tag or name prefix."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("tag",
		mcp.Description("Only terms carrying this exact tag, e.g. \"p2\" or \"c/4 diagonally\""),
	),
	mcp.WithString("prefix",
		mcp.Description("Case-insensitive name prefix"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Page size (default 20, max 100)"),
		mcp.Min(0),
		mcp.Max(ops.MaxListLimit),
	),
	mcp.WithNumber("offset",
		mcp.Description("Number of terms to skip"),
		mcp.Min(0),
	),
)

var searchToolDef = mcp.NewTool("lexicon_search",
	mcp.WithDescription("Search term names and descriptions for a case-insensitive substring. "+
		"Each result carries an HTML snippet with the match in <b> tags."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Text to look for"),
	),
	mcp.WithString("tag",
		mcp.Description("Only terms carrying this exact tag"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Page size (default 20, max 100)"),
		mcp.Min(0),
		mcp.Max(ops.MaxSearchLimit),
	),
	mcp.WithNumber("offset",
		mcp.Description("Number of results to skip"),
		mcp.Min(0),
	),
)
