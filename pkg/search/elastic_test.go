package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeES answers the handful of endpoints the client uses.
type fakeES struct {
	mu      sync.Mutex
	indexed map[string]string
	query   map[string]interface{}
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		io.WriteString(w, `{"name":"test","cluster_name":"test","version":{"number":"8.19.0","build_flavor":"default"},"tagline":"You Know, for Search"}`)
	case r.Method == http.MethodPut && r.URL.Path == "/catalog_queue":
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"type":"resource_already_exists_exception"},"status":400}`)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/catalog_queue/_doc/"):
		body, _ := io.ReadAll(r.Body)
		f.indexed[strings.TrimPrefix(r.URL.Path, "/catalog_queue/_doc/")] = string(body)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"result":"created"}`)
	case r.URL.Path == "/catalog_queue/_search":
		_ = json.NewDecoder(r.Body).Decode(&f.query)
		io.WriteString(w, `{"hits":{"total":{"value":1},"hits":[{"_id":"q1","_source":{"id":"q1","status":"ready"}}]}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{}`)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeES) {
	t.Helper()
	fake := &fakeES{indexed: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewClient(&Config{Addresses: []string{srv.URL}})
	if err != nil {
		t.Fatal(err)
	}
	return c, fake
}

func TestClient_IndexAndSearch(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	if err := c.CreateIndex(ctx, "catalog_queue", `{"mappings":{}}`); err != nil {
		t.Fatalf("existing index should not be an error: %v", err)
	}
	if err := c.Index(ctx, "catalog_queue", "q1", map[string]string{"status": "ready"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(fake.indexed["q1"], `"ready"`) {
		t.Fatalf("document not indexed: %v", fake.indexed)
	}

	res, err := c.Search(ctx, "catalog_queue", map[string]interface{}{
		"query": map[string]interface{}{"term": map[string]interface{}{"status": "ready"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Hits.Total.Value != 1 || len(res.Hits.Hits) != 1 || res.Hits.Hits[0].ID != "q1" {
		t.Fatalf("unexpected response %+v", res)
	}
	if _, ok := fake.query["query"]; !ok {
		t.Fatalf("query body not sent: %v", fake.query)
	}
}

func TestClient_SearchError(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.Search(context.Background(), "missing", map[string]interface{}{})
	if err == nil || !strings.Contains(err.Error(), "elasticsearch search") {
		t.Fatalf("want search error, got %v", err)
	}
}
