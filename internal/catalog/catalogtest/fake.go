// Package catalogtest provides an in-process fake of the remote catalog for
// tests.
package catalogtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// FakeCatalog serves canned JSON documents keyed by request path and records
// every hit. Query strings are ignored when matching.
type FakeCatalog struct {
	mu     sync.Mutex
	docs   map[string][]byte
	fails  map[string]int
	hits   map[string]int
	total  int
	Server *httptest.Server
}

// New starts a FakeCatalog. Call Close when done.
func New() *FakeCatalog {
	f := &FakeCatalog{
		docs:  make(map[string][]byte),
		fails: make(map[string]int),
		hits:  make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

// Close shuts the server down.
func (f *FakeCatalog) Close() { f.Server.Close() }

// URL returns the absolute URL for path (which must start with "/").
func (f *FakeCatalog) URL(path string) string { return f.Server.URL + path }

// Handle registers v, marshaled as JSON, as the response for path.
func (f *FakeCatalog) Handle(path string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[path] = data
}

// HandleRaw registers a literal body for path.
func (f *FakeCatalog) HandleRaw(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[path] = []byte(body)
}

// Fail makes path answer with the given status code.
func (f *FakeCatalog) Fail(path string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fails[path] = code
}

// Hits returns the total number of requests served.
func (f *FakeCatalog) Hits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// HitsFor returns how many times path was requested.
func (f *FakeCatalog) HitsFor(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *FakeCatalog) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.total++
	f.hits[r.URL.Path]++
	code, failing := f.fails[r.URL.Path]
	body, ok := f.docs[r.URL.Path]
	f.mu.Unlock()

	if failing {
		http.Error(w, "injected failure", code)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// Names builds a names-array document from language/value pairs.
func Names(pairs ...string) map[string]interface{} {
	names := make([]map[string]interface{}, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		names = append(names, map[string]interface{}{
			"name":     pairs[i+1],
			"language": map[string]string{"name": pairs[i]},
		})
	}
	return map[string]interface{}{"names": names}
}
