package sink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/amishk599/ghboard/internal/model"
)

// fakeES answers the info and index endpoints like a cluster would.
type fakeES struct {
	mu     sync.Mutex
	docs   map[string]model.Record
	status int // index response status; 0 means 201
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodGet && r.URL.Path == "/" {
		w.Write([]byte(`{"name":"test","cluster_name":"test","version":{"number":"8.19.0"},"tagline":"You Know, for Search"}`))
		return
	}

	_, id, ok := strings.Cut(r.URL.Path, "/_doc/")
	if !ok || (r.Method != http.MethodPut && r.Method != http.MethodPost) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if f.status != 0 {
		w.WriteHeader(f.status)
		w.Write([]byte(`{"error":"boom"}`))
		return
	}

	var rec model.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.docs[id] = rec
	f.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(`{"result":"created"}`))
}

func TestElasticsearchSink_IndexesByKey(t *testing.T) {
	es := &fakeES{docs: make(map[string]model.Record)}
	srv := httptest.NewServer(es)
	defer srv.Close()

	s, err := NewElasticsearchSink(context.Background(), ElasticsearchConfig{
		Addresses: []string{srv.URL},
		Index:     "jobs",
	})
	if err != nil {
		t.Fatalf("NewElasticsearchSink: %v", err)
	}

	if err := s.Emit(context.Background(), sampleRecord("acme", 99)); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	doc, ok := es.docs["acme:99"]
	if !ok {
		t.Fatalf("document acme:99 not indexed; have %v", es.docs)
	}
	if doc.Title != "Backend Engineer" || doc.Salary == nil {
		t.Errorf("indexed doc = %+v", doc)
	}
}

func TestElasticsearchSink_IndexError(t *testing.T) {
	es := &fakeES{docs: make(map[string]model.Record), status: http.StatusBadRequest}
	srv := httptest.NewServer(es)
	defer srv.Close()

	s, err := NewElasticsearchSink(context.Background(), ElasticsearchConfig{
		Addresses: []string{srv.URL},
		Index:     "jobs",
	})
	if err != nil {
		t.Fatalf("NewElasticsearchSink: %v", err)
	}

	if err := s.Emit(context.Background(), sampleRecord("acme", 1)); err == nil {
		t.Fatal("expected index error, got nil")
	}
}
