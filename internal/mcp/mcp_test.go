package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lexicon/internal/bundled"
	"github.com/hpungsan/lexicon/internal/config"
	"github.com/hpungsan/lexicon/internal/db"
	"github.com/hpungsan/lexicon/internal/errors"
	"github.com/hpungsan/lexicon/internal/lexicon"
	"github.com/hpungsan/lexicon/internal/logging"
	"github.com/hpungsan/lexicon/internal/ops"
)

// testSetup creates a temporary database holding the bundled catalog.
func testSetup(t *testing.T) (*sql.DB, *lexicon.Lexicon, *config.Config) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	lex, err := bundled.Load()
	require.NoError(t, err)

	_, err = ops.Index(context.Background(), database, lex, ops.IndexInput{Source: bundled.Source})
	require.NoError(t, err)

	return database, lex, config.DefaultConfig()
}

func testHandlers(t *testing.T) *Handlers {
	t.Helper()
	database, lex, _ := testSetup(t)
	return NewHandlers(database, lex, logging.Discard())
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleFetch(t *testing.T) {
	h := testHandlers(t)

	tests := []struct {
		name     string
		args     map[string]any
		wantCode string
	}{
		{name: "found", args: map[string]any{"name": "glider"}},
		{name: "name with spaces", args: map[string]any{"name": "Gosper glider gun"}},
		{name: "missing name", args: map[string]any{}, wantCode: "INVALID_REQUEST"},
		{name: "unknown term", args: map[string]any{"name": "spaceship"}, wantCode: "NOT_FOUND"},
		{name: "wrong type", args: map[string]any{"name": 42}, wantCode: "INVALID_REQUEST"},
		{name: "unknown argument", args: map[string]any{"name": "glider", "id": "x"}, wantCode: "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleFetch(context.Background(), makeRequest(tt.args))
			require.NoError(t, err)

			if tt.wantCode != "" {
				require.True(t, result.IsError)
				assertErrorCode(t, result, tt.wantCode)
				return
			}

			output := parseOutput(t, result)
			assert.Equal(t, tt.args["name"], output["name"])
			assert.NotEmpty(t, output["build_id"])
			assert.Contains(t, output, "grid")
		})
	}
}

func TestHandleFetch_Grid(t *testing.T) {
	h := testHandlers(t)

	result, err := h.HandleFetch(context.Background(), makeRequest(map[string]any{"name": "glider"}))
	require.NoError(t, err)
	output := parseOutput(t, result)

	assert.Equal(t, []any{"***", "*..", ".*."}, output["grid"])
	assert.Equal(t, []any{"c/4 diagonally", "p4"}, output["tags"])
	assert.EqualValues(t, 3, output["width"])
	assert.Len(t, output["cells"], 5)
}

func TestHandleFetch_NotIndexed(t *testing.T) {
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	h := NewHandlers(database, nil, logging.Discard())
	result, err := h.HandleFetch(context.Background(), makeRequest(map[string]any{"name": "glider"}))
	require.NoError(t, err)
	assertErrorCode(t, result, "NOT_INDEXED")
}

func TestHandleShow(t *testing.T) {
	h := testHandlers(t)

	result, err := h.HandleShow(context.Background(), makeRequest(map[string]any{"name": "block"}))
	require.NoError(t, err)
	output := parseOutput(t, result)
	assert.Equal(t, []any{"**", "**"}, output["grid"])

	result, err = h.HandleShow(context.Background(), makeRequest(map[string]any{"name": "Block"}))
	require.NoError(t, err)
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleList(t *testing.T) {
	h := testHandlers(t)

	tests := []struct {
		name      string
		args      map[string]any
		wantNames []string
		wantMore  bool
	}{
		{
			name:      "paged",
			args:      map[string]any{"limit": 2},
			wantNames: []string{"0hd Demonoid", "beehive"},
			wantMore:  true,
		},
		{
			name:      "offset",
			args:      map[string]any{"limit": 2, "offset": 8},
			wantNames: []string{"pufferfish", "toad"},
		},
		{
			name:      "tag",
			args:      map[string]any{"tag": "p1"},
			wantNames: []string{"beehive", "block", "Mickey Mouse"},
		},
		{
			name:      "prefix",
			args:      map[string]any{"prefix": "demon"},
			wantNames: []string{"Demonoid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleList(context.Background(), makeRequest(tt.args))
			require.NoError(t, err)
			output := parseOutput(t, result)

			assert.Equal(t, tt.wantNames, itemNames(t, output))
			pagination := output["pagination"].(map[string]any)
			assert.Equal(t, tt.wantMore, pagination["has_more"])
		})
	}
}

func TestHandleSearch(t *testing.T) {
	h := testHandlers(t)

	result, err := h.HandleSearch(context.Background(), makeRequest(map[string]any{"query": "spaceship"}))
	require.NoError(t, err)
	output := parseOutput(t, result)
	assert.Equal(t, []string{"Demonoid", "glider"}, itemNames(t, output))

	items := output["items"].([]any)
	snippet := items[0].(map[string]any)["snippet"].(string)
	assert.Contains(t, snippet, "<b>spaceship</b>")

	result, err = h.HandleSearch(context.Background(), makeRequest(map[string]any{"query": "  "}))
	require.NoError(t, err)
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestServerRegistration(t *testing.T) {
	database, lex, cfg := testSetup(t)

	s := NewServer(database, lex, cfg, logging.Discard(), "test")
	tools := s.ListTools()
	require.NotNil(t, tools)

	expected := []string{"lexicon_fetch", "lexicon_show", "lexicon_list", "lexicon_search"}
	assert.Len(t, tools, len(expected))
	for _, name := range expected {
		assert.Contains(t, tools, name)
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, lex, cfg := testSetup(t)

	cfg.DisabledTools = []string{"lexicon_search", "lexicon_search"}
	s := NewServer(database, lex, cfg, logging.Discard(), "test")
	tools := s.ListTools()

	assert.Len(t, tools, 3)
	assert.NotContains(t, tools, "lexicon_search")
	assert.Contains(t, tools, "lexicon_fetch")
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	database, lex, cfg := testSetup(t)

	cfg.DisabledTools = AllToolNames()
	s := NewServer(database, lex, cfg, logging.Discard(), "test")
	assert.Empty(t, s.ListTools())
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{name: "all valid", input: []string{"lexicon_list", "lexicon_search"}, wantLen: 0},
		{name: "one unknown", input: []string{"lexicon_list", "lexicon_delete"}, wantLen: 1},
		{name: "empty list", input: []string{}, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ValidateDisabledTools(tt.input), tt.wantLen)
		})
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	sort.Strings(names)
	assert.Equal(t, []string{"lexicon_fetch", "lexicon_list", "lexicon_search", "lexicon_show"}, names)
	assert.Empty(t, ValidateDisabledTools(names))
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	require.True(t, r.IsError)

	errObj := errorObject(t, r)
	assert.Equal(t, string(errors.ErrInternal), errObj["code"])
	assert.NotContains(t, errObj, "details")
	assert.NotContains(t, errObj["message"], "secret")
}

func TestErrorResult_PlainErrorIsInternal(t *testing.T) {
	errObj := errorObject(t, errorResult(fmt.Errorf("boom")))
	assert.Equal(t, string(errors.ErrInternal), errObj["code"])
}

func TestErrorResult_WrappedErrorPreservesContext(t *testing.T) {
	wrapped := fmt.Errorf("line 12: %w", errors.NewGrammar("cannot parse term header", 12, ":x"))

	errObj := errorObject(t, errorResult(wrapped))
	assert.Equal(t, string(errors.ErrGrammar), errObj["code"])
	assert.True(t, strings.HasPrefix(errObj["message"].(string), "line 12:"))
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	errObj := errorObject(t, errorResult(errors.NewNotFound("glider")))
	assert.Equal(t, string(errors.ErrNotFound), errObj["code"])
	assert.EqualValues(t, 404, errObj["status"])
	require.Contains(t, errObj, "details")
	assert.Equal(t, "glider", errObj["details"].(map[string]any)["name"])
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, result.IsError, "expected success, got error: %s", textOf(result))
	var output map[string]any
	require.NoError(t, json.Unmarshal([]byte(textOf(result)), &output))
	return output
}

func itemNames(t *testing.T, output map[string]any) []string {
	t.Helper()
	items, ok := output["items"].([]any)
	require.True(t, ok, "items missing from %v", output)
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.(map[string]any)["name"].(string)
	}
	return names
}

func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(textOf(result)), &payload))
	errObj, ok := payload["error"].(map[string]any)
	require.True(t, ok, "no error object in payload")
	return errObj
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()
	require.True(t, result.IsError, "expected error result, got %s", textOf(result))
	assert.Equal(t, expectedCode, errorObject(t, result)["code"])
}

func textOf(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}
