package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Catalog routes that can be forced to fail with [CatalogServer.FailOn].
const (
	RouteMe           = "me"
	RouteSearch       = "search"
	RouteCreate       = "create"
	RouteAddTracks    = "add"
	catalogPathPrefix = "/v1"
)

// CatalogServer is a stub of the catalog endpoints used by the playlist pipeline.
//
// Searches match on the exact query string; queries without an entry in Tracks return no results.
type CatalogServer struct {
	*httptest.Server

	UserID     string
	PlaylistID string

	mu         sync.Mutex
	tracks     map[string]string
	failures   map[string]int
	queries    []string
	insertions [][]string
	created    []map[string]any
	auth       []string
}

// NewCatalogServer starts a [CatalogServer] closed at test cleanup.
func NewCatalogServer(t *testing.T) *CatalogServer {
	t.Helper()

	c := &CatalogServer{
		UserID:     "user-1",
		PlaylistID: "playlist-1",
		tracks:     make(map[string]string),
		failures:   make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+catalogPathPrefix+"/me", c.handleMe)
	mux.HandleFunc("GET "+catalogPathPrefix+"/search", c.handleSearch)
	mux.HandleFunc("POST "+catalogPathPrefix+"/users/{id}/playlists", c.handleCreate)
	mux.HandleFunc("POST "+catalogPathPrefix+"/playlists/{id}/tracks", c.handleAdd)

	c.Server = httptest.NewServer(mux)
	t.Cleanup(c.Server.Close)
	return c
}

// BaseURL is the API root to configure clients with.
func (c *CatalogServer) BaseURL() string {
	return c.URL + catalogPathPrefix
}

// AddTrack makes query return a single track with uri.
func (c *CatalogServer) AddTrack(query, uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracks[query] = uri
}

// FailOn makes every request to route respond with status.
func (c *CatalogServer) FailOn(route string, status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[route] = status
}

// Queries returns the search queries received, in order.
func (c *CatalogServer) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

// Insertions returns the URI batches received by the add-tracks endpoint, in order.
func (c *CatalogServer) Insertions() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.insertions...)
}

// Created returns the decoded bodies of playlist creation requests.
func (c *CatalogServer) Created() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]map[string]any(nil), c.created...)
}

// Authorizations returns the Authorization headers received.
func (c *CatalogServer) Authorizations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.auth...)
}

// Requests returns the total number of requests handled.
func (c *CatalogServer) Requests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.auth)
}

func (c *CatalogServer) begin(w http.ResponseWriter, r *http.Request, route string) bool {
	c.mu.Lock()
	c.auth = append(c.auth, r.Header.Get("Authorization"))
	status, failing := c.failures[route]
	c.mu.Unlock()

	if failing {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error":{"status":%d,"message":"forced failure"}}`, status)
		return false
	}
	return true
}

func (c *CatalogServer) handleMe(w http.ResponseWriter, r *http.Request) {
	if !c.begin(w, r, RouteMe) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": c.UserID, "display_name": "Test User"})
}

func (c *CatalogServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !c.begin(w, r, RouteSearch) {
		return
	}

	q := r.URL.Query().Get("q")
	c.mu.Lock()
	c.queries = append(c.queries, q)
	uri, ok := c.tracks[q]
	c.mu.Unlock()

	items := []map[string]any{}
	if ok {
		items = append(items, map[string]any{"id": uri, "name": q, "uri": uri})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": map[string]any{"items": items}})
}

func (c *CatalogServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !c.begin(w, r, RouteCreate) {
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	c.mu.Lock()
	c.created = append(c.created, body)
	c.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":            c.PlaylistID,
		"name":          body["name"],
		"description":   body["description"],
		"public":        body["public"],
		"owner":         map[string]any{"id": r.PathValue("id")},
		"external_urls": map[string]any{"spotify": "https://open.spotify.com/playlist/" + c.PlaylistID},
	})
}

func (c *CatalogServer) handleAdd(w http.ResponseWriter, r *http.Request) {
	if !c.begin(w, r, RouteAddTracks) {
		return
	}

	var body struct {
		URIs []string `json:"uris"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	c.mu.Lock()
	c.insertions = append(c.insertions, body.URIs)
	c.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"snapshot_id": "snapshot"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
