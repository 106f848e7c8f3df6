package listing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"business-directory/internal/common/logger"
	"business-directory/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeES records the last request body and answers with a canned response.
type fakeES struct {
	status   int
	response string
	method   string
	path     string
	body     map[string]interface{}
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.method = r.Method
	f.path = r.URL.Path
	raw, _ := io.ReadAll(r.Body)
	f.body = nil
	_ = json.Unmarshal(raw, &f.body)

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(f.response))
}

func newTestIndex(t *testing.T, fake *fakeES) *Index {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewIndex(client, "listings", logger.NewTestLogger(t))
}

func TestIndex_Search(t *testing.T) {
	fake := &fakeES{status: 200, response: `{
		"hits": {
			"total": {"value": 2},
			"hits": [
				{"_source": {"id": "a", "name": "Glow Salon", "city": "Springfield", "featured": true}},
				{"_source": {"id": "b", "name": "Glow Nails", "city": "Springfield"}}
			]
		}
	}`}
	index := newTestIndex(t, fake)

	listings, total, err := index.Search(context.Background(), Filter{Query: "glo", City: "Springfield", Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, listings, 2)
	assert.True(t, listings[0].Featured)
	assert.Equal(t, "/listings/_search", fake.path)

	raw, _ := json.Marshal(fake.body)
	assert.Contains(t, string(raw), `"value":"*glo*"`)
	assert.Contains(t, string(raw), `"city":"Springfield"`)
	assert.NotContains(t, string(raw), "featured", "featured must not influence ordering")
}

func TestIndex_Search_ErrorStatus(t *testing.T) {
	index := newTestIndex(t, &fakeES{status: 400, response: `{"error":"parse"}`})

	_, _, err := index.Search(context.Background(), Filter{Query: "x"})
	assert.ErrorIs(t, err, ErrSearchQueryFailed)
}

func TestIndex_IndexListing(t *testing.T) {
	fake := &fakeES{status: 201, response: `{"result":"created"}`}
	index := newTestIndex(t, fake)

	err := index.IndexListing(context.Background(), models.Listing{ID: "lst-1", Name: "Glow Salon", Plan: "pro", Featured: true})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, fake.method)
	assert.Equal(t, "/listings/_doc/lst-1", fake.path)
	assert.Equal(t, "Glow Salon", fake.body["name"])

	fake.status = 503
	assert.ErrorIs(t, index.IndexListing(context.Background(), models.Listing{ID: "lst-1"}), ErrIndexFailed)
}

func TestBuildSearchQuery_Escapes(t *testing.T) {
	raw, err := json.Marshal(buildSearchQuery(Filter{Query: "a*b?"}))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `*a\\*b\\?*`))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0))
	assert.Equal(t, 5, clampLimit(5))
	assert.Equal(t, 100, clampLimit(1000))
}
