package web

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/hpungsan/lexicon/internal/errors"
	"github.com/hpungsan/lexicon/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	renderer *Renderer
}

// HandleList handles GET /terms: terms in catalog order.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := ops.ListInput{
		Tag:    q.Get("tag"),
		Prefix: q.Get("prefix"),
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	}

	result, err := ops.List(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   "Terms",
			Version: h.renderer.version,
			Nav:     "terms",
		},
		Items:      result.Items,
		Pagination: result.Pagination,
		Tag:        input.Tag,
		Prefix:     input.Prefix,
	})
}

// HandleSearch handles GET /terms/search: substring search over names and descriptions.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	tag := q.Get("tag")

	data := SearchPageData{
		PageData: PageData{
			Title:   "Search",
			Version: h.renderer.version,
			Nav:     "search",
		},
		Query:    query,
		Tag:      tag,
		HasQuery: query != "",
	}

	if query == "" {
		if wantsJSON(r) {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("query is required"))
			return
		}
		h.renderer.renderPage(w, "search", data)
		return
	}

	result, err := ops.Search(r.Context(), h.db, ops.SearchInput{
		Query:  query,
		Tag:    tag,
		Limit:  parseIntParam(r, "limit", ops.DefaultSearchLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	data.Items = result.Items
	data.Pagination = result.Pagination
	h.renderer.renderPage(w, "search", data)
}

// HandleDetail handles GET /terms/{name}: a single term with its pattern.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("term name is required"))
		return
	}

	term, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{Name: name})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, term)
		return
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: PageData{
			Title:   term.Name,
			Version: h.renderer.version,
			Nav:     "terms",
		},
		Term:            term,
		DescriptionHTML: renderDescription(term.Description),
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
