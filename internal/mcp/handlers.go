package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/lexicon/internal/errors"
	"github.com/hpungsan/lexicon/internal/lexicon"
	"github.com/hpungsan/lexicon/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db     *sql.DB
	lex    *lexicon.Lexicon
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, lex *lexicon.Lexicon, logger *slog.Logger) *Handlers {
	return &Handlers{db: db, lex: lex, logger: logger}
}

// Request types for each tool

// NameRequest represents the arguments for fetch and show.
type NameRequest struct {
	Name string `json:"name"`
}

// ListRequest represents the arguments for list.
type ListRequest struct {
	Tag    string `json:"tag,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// SearchRequest represents the arguments for search.
type SearchRequest struct {
	Query  string `json:"query"`
	Tag    string `json:"tag,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// HandleFetch handles the lexicon_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{Name: input.Name})
	if err != nil {
		return h.failure("lexicon_fetch", err), nil
	}

	return successResult(result)
}

// HandleShow handles the lexicon_show tool call.
func (h *Handlers) HandleShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Show(h.lex, input.Name)
	if err != nil {
		return h.failure("lexicon_show", err), nil
	}

	return successResult(result)
}

// HandleList handles the lexicon_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		Tag:    input.Tag,
		Prefix: input.Prefix,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return h.failure("lexicon_list", err), nil
	}

	return successResult(result)
}

// HandleSearch handles the lexicon_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Search(ctx, h.db, ops.SearchInput{
		Query:  input.Query,
		Tag:    input.Tag,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return h.failure("lexicon_search", err), nil
	}

	return successResult(result)
}

// failure logs internal errors before converting err to a tool result.
func (h *Handlers) failure(tool string, err error) *mcp.CallToolResult {
	if errors.As(err).Code == errors.ErrInternal {
		h.logger.Error("tool failed", "tool", tool, "error", err)
	}
	return errorResult(err)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	lErr := errors.As(err)

	var errorObj map[string]any
	if lErr.Code == errors.ErrInternal {
		errorObj = map[string]any{
			"code":    errors.ErrInternal,
			"message": "an internal error occurred",
			"status":  500,
		}
	} else {
		msg := lErr.Message
		// Keep context added by wrapping
		if err != error(lErr) {
			msg = err.Error()
		}
		errorObj = map[string]any{
			"code":    lErr.Code,
			"message": msg,
			"status":  lErr.Status,
		}
		if lErr.Details != nil {
			errorObj["details"] = lErr.Details
		}
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
