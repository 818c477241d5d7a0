package secrets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regiond/internal/db/dbtest"
	"regiond/internal/models"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestLocalStoreRoundTrip(t *testing.T) {
	db := dbtest.Open(t)
	s, err := NewLocalStore(db, testKey)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = GetSimple(ctx, s, "global/path")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, SetSimple(ctx, s, "global/path", "secret"))
	require.NoError(t, SetSimple(ctx, s, "global/path", "supersecret"))
	got, err := GetSimple(ctx, s, "global/path")
	require.NoError(t, err)
	assert.Equal(t, "supersecret", got)

	composite := map[string]any{"mydata": []any{float64(1), float64(2)}}
	require.NoError(t, s.Set(ctx, "global/composite", composite))
	var out map[string]any
	require.NoError(t, s.Get(ctx, "global/composite", &out))
	assert.Equal(t, composite, out)

	require.NoError(t, s.Delete(ctx, "global/path"))
	_, err = GetSimple(ctx, s, "global/path")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreNeverWritesPlaintext(t *testing.T) {
	db := dbtest.Open(t)
	s, err := NewLocalStore(db, testKey)
	require.NoError(t, err)
	require.NoError(t, SetSimple(context.Background(), s, "p", "visible-text"))

	var row models.Secret
	require.NoError(t, db.Where("path = ?", "p").Take(&row).Error)
	assert.NotContains(t, string(row.Value), "visible-text")

	other, err := NewLocalStore(db, make([]byte, 32))
	require.NoError(t, err)
	_, err = GetSimple(context.Background(), other, "p")
	assert.Error(t, err)
}

// fakeKV serves the subset of the KV v2 API used by VaultStore.
type fakeKV struct {
	mu    sync.Mutex
	data  map[string]map[string]any
	reads int
}

const versionMetadata = `{"created_time":"2024-01-01T00:00:00Z","custom_metadata":null,"deletion_time":"","destroyed":false,"version":1}`

func (f *fakeKV) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasPrefix(r.URL.Path, "/v1/secret/data/"):
		path := strings.TrimPrefix(r.URL.Path, "/v1/secret/data/")
		switch r.Method {
		case http.MethodGet:
			f.reads++
			d, ok := f.data[path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"errors":[]}`))
				return
			}
			raw, _ := json.Marshal(d)
			_, _ = w.Write([]byte(`{"data":{"data":` + string(raw) + `,"metadata":` + versionMetadata + `}}`))
		case http.MethodPut, http.MethodPost:
			var body struct {
				Data map[string]any `json:"data"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.data[path] = body.Data
			_, _ = w.Write([]byte(`{"data":` + versionMetadata + `}`))
		}
	case strings.HasPrefix(r.URL.Path, "/v1/secret/metadata/") && r.Method == http.MethodDelete:
		delete(f.data, strings.TrimPrefix(r.URL.Path, "/v1/secret/metadata/"))
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestVaultStoreCachesReads(t *testing.T) {
	kv := &fakeKV{data: map[string]map[string]any{}}
	srv := httptest.NewServer(kv)
	defer srv.Close()

	s, err := NewVaultStore(VaultOptions{Address: srv.URL, Token: "root", CacheTTL: time.Minute})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = GetSimple(ctx, s, "global/path")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, SetSimple(ctx, s, "global/path", "secret"))
	for i := 0; i < 3; i++ {
		got, err := GetSimple(ctx, s, "global/path")
		require.NoError(t, err)
		assert.Equal(t, "secret", got)
	}
	assert.Equal(t, 2, kv.reads)

	require.NoError(t, s.Delete(ctx, "global/path"))
	_, err = GetSimple(ctx, s, "global/path")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFactoryBuildsBackendOnce(t *testing.T) {
	db := dbtest.Open(t)
	f := NewFactory(Options{Backend: BackendLocal, Key: testKey}, db)

	a, err := f.Get()
	require.NoError(t, err)
	b, err := f.Get()
	require.NoError(t, err)
	assert.Same(t, a, b)

	f.Clear()
	c, err := f.Get()
	require.NoError(t, err)
	assert.NotSame(t, a, c)

	_, err = NewFactory(Options{Backend: "etcd"}, db).Get()
	assert.Error(t, err)
}
