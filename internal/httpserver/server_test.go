package httpserver

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/spordle/assets"
	"github.com/robalobadob/spordle/internal/catalog"
	"github.com/robalobadob/spordle/internal/daily"
	"github.com/robalobadob/spordle/internal/database"
	"github.com/robalobadob/spordle/internal/media"
	"github.com/robalobadob/spordle/internal/metrics"
	"github.com/robalobadob/spordle/internal/round"
	"github.com/robalobadob/spordle/internal/store"
)

// titlePicker always targets the song with the given title.
type titlePicker struct {
	cat   catalog.Catalog
	title string
}

func (p titlePicker) Pick(ctx context.Context, ids []int64, _ time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, daily.ErrNoCandidates
	}
	found, err := p.cat.Search(ctx, p.title, 1)
	if err != nil || len(found) == 0 {
		return ids[0], err
	}
	return found[0].ID, nil
}

type env struct {
	srv *Server
	db  *sql.DB
	cat catalog.Catalog
}

func setup(t *testing.T) env {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "spordle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db, assets.Migrations()))

	cat := catalog.NewSQLite(db)
	seed, err := assets.SeedSongs()
	require.NoError(t, err)
	defer seed.Close()
	_, err = catalog.Seed(context.Background(), cat, seed)
	require.NoError(t, err)

	rec := metrics.New(true)
	archive := daily.NewArchive(db)
	rounds := round.NewService(cat, store.NewMemoryStore(), titlePicker{cat: cat, title: "Shape of You"},
		archive, rec, round.Options{MaxMisses: 10, PreviewSeconds: 5, ExtendedSeconds: 15})

	assetsFS := fstest.MapFS{
		"shape-of-you.mp3": {Data: []byte("shape-audio-bytes")},
		"shape-of-you.jpg": {Data: []byte("shape-cover")},
		"hello.jpg":        {Data: []byte("hello-cover")},
	}
	srv := New(Deps{
		Rounds:       rounds,
		Catalog:      cat,
		Archive:      archive,
		Media:        media.New(assetsFS),
		Metrics:      rec,
		ClientOrigin: "http://localhost:5173",
	})
	return env{srv: srv, db: db, cat: cat}
}

func (e env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func (e env) start(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/game/start", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sid, _ := decodeBody(t, w)["sessionId"].(string)
	require.NotEmpty(t, sid)
	return sid
}

func TestHealthAndCORS(t *testing.T) {
	e := setup(t)
	w := e.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = e.do(t, http.MethodOptions, "/api/game/start", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStart(t *testing.T) {
	e := setup(t)
	w := e.do(t, http.MethodPost, "/api/game/start", map[string]string{"previousSessionId": "unknown"})
	require.Equal(t, http.StatusOK, w.Code)
	m := decodeBody(t, w)
	sid := m["sessionId"].(string)
	assert.Equal(t, "/api/game/"+sid+"/audio/preview", m["previewUrl"])
	assert.EqualValues(t, 10, m["maxAttempts"])
	assert.EqualValues(t, 5, m["previewSeconds"])

	w = e.do(t, http.MethodPost, "/api/game/start", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/game/start", strings.NewReader("{nope"))
	rw := httptest.NewRecorder()
	e.srv.ServeHTTP(rw, req)
	assert.Equal(t, http.StatusBadRequest, rw.Code)
}

func TestGuessFlow_Win(t *testing.T) {
	e := setup(t)
	sid := e.start(t)

	w := e.do(t, http.MethodPost, "/api/game/"+sid+"/guess", map[string]string{"title": "Definitely Not A Song"})
	require.Equal(t, http.StatusOK, w.Code)
	m := decodeBody(t, w)
	assert.Equal(t, false, m["valid"])
	assert.NotEmpty(t, m["message"])
	assert.EqualValues(t, 0, m["attempts"])

	w = e.do(t, http.MethodPost, "/api/game/"+sid+"/guess", map[string]string{"title": "blinding lights"})
	require.Equal(t, http.StatusOK, w.Code)
	m = decodeBody(t, w)
	assert.Equal(t, true, m["valid"])
	assert.Equal(t, false, m["correct"])
	assert.Equal(t, "in_progress", m["status"])
	assert.EqualValues(t, 1, m["attempts"])
	guess := m["guess"].(map[string]any)
	assert.Equal(t, "Blinding Lights", guess["title"])
	year := guess["year"].(map[string]any)
	assert.Equal(t, "wrong", year["status"])
	assert.Equal(t, "lower", year["direction"])
	length := guess["length"].(map[string]any)
	assert.Equal(t, "higher", length["direction"])
	assert.Equal(t, "3:20", length["display"])
	assert.Contains(t, guess, "artist")
	assert.Contains(t, guess, "genre")
	assert.Contains(t, guess, "type")
	assert.NotContains(t, m, "solution")

	w = e.do(t, http.MethodPost, "/api/game/"+sid+"/guess", map[string]string{"title": "Shape of You"})
	require.Equal(t, http.StatusOK, w.Code)
	m = decodeBody(t, w)
	assert.Equal(t, true, m["correct"])
	assert.Equal(t, "won", m["status"])
	assert.NotContains(t, m, "hints")

	w = e.do(t, http.MethodPost, "/api/game/"+sid+"/guess", map[string]string{"title": "Hello"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_session", decodeBody(t, w)["error"])

	w = e.do(t, http.MethodGet, "/api/game/"+sid+"/reveal", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m = decodeBody(t, w)
	assert.Equal(t, "Shape of You", m["title"])
	assert.Equal(t, "3:53", m["duration"])

	w = e.do(t, http.MethodGet, "/api/daily/summary?date="+daily.DateKey(time.Now()), nil)
	require.Equal(t, http.StatusOK, w.Code)
	m = decodeBody(t, w)
	assert.EqualValues(t, 1, m["played"])
	assert.EqualValues(t, 1, m["won"])
	assert.EqualValues(t, 2, m["avgGuesses"])
}

func TestGuess_UnknownSession(t *testing.T) {
	e := setup(t)
	w := e.do(t, http.MethodPost, "/api/game/nope/guess", map[string]string{"title": "Hello"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "invalid_session", decodeBody(t, w)["error"])

	w = e.do(t, http.MethodGet, "/api/game/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStateHintsAndReveal(t *testing.T) {
	e := setup(t)
	sid := e.start(t)

	w := e.do(t, http.MethodGet, "/api/game/"+sid+"/reveal", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "session_not_terminal", decodeBody(t, w)["error"])

	for _, title := range []string{"Hello", "Get Lucky", "Bad Guy"} {
		w = e.do(t, http.MethodPost, "/api/game/"+sid+"/guess", map[string]string{"title": title})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w = e.do(t, http.MethodGet, "/api/game/"+sid+"/hints", nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decodeBody(t, w)
	hints := m["hints"].([]any)
	require.Len(t, hints, 1)
	assert.Equal(t, "text", hints[0].(map[string]any)["type"])
	assert.EqualValues(t, 6, m["nextHintAt"])

	w = e.do(t, http.MethodGet, "/api/game/"+sid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	m = decodeBody(t, w)
	assert.Equal(t, "in_progress", m["status"])
	assert.Len(t, m["guesses"], 3)
	first := m["guesses"].([]any)[0].(map[string]any)
	assert.Equal(t, "Hello", first["title"])
	assert.True(t, strings.HasPrefix(first["coverUrl"].(string), "/api/songs/"))
}

func TestMedia(t *testing.T) {
	e := setup(t)
	sid := e.start(t)

	w := e.do(t, http.MethodGet, "/api/game/"+sid+"/audio/preview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shape-audio-bytes", w.Body.String())
	assert.Equal(t, "5", w.Header().Get(media.LimitHeader))

	w = e.do(t, http.MethodGet, "/api/game/"+sid+"/audio/extended", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.do(t, http.MethodGet, "/api/game/"+sid+"/audio/full", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = e.do(t, http.MethodGet, "/api/game/"+sid+"/audio/bonus", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = e.do(t, http.MethodGet, "/api/game/"+sid+"/cover", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_ = e.do(t, http.MethodPost, "/api/game/"+sid+"/guess", map[string]string{"title": "Shape of You"})
	w = e.do(t, http.MethodGet, "/api/game/"+sid+"/audio/full", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get(media.LimitHeader))
	w = e.do(t, http.MethodGet, "/api/game/"+sid+"/cover", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shape-cover", w.Body.String())
}

func TestSongs(t *testing.T) {
	e := setup(t)

	w := e.do(t, http.MethodGet, "/api/songs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var titles []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &titles))
	assert.Greater(t, len(titles), 5)

	w = e.do(t, http.MethodGet, "/api/songs?q=hello&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &titles))
	require.Len(t, titles, 1)
	assert.Equal(t, "Hello", titles[0]["title"])
	id := int64(titles[0]["id"].(float64))

	w = e.do(t, http.MethodGet, "/api/songs?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := "/api/songs/" + jsonNumber(id)
	w = e.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decodeBody(t, w)
	assert.Equal(t, "Adele", m["artists"].([]any)[0])
	assert.NotContains(t, m, "hints")
	assert.NotContains(t, m, "hint1")

	w = e.do(t, http.MethodGet, path+"/cover", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello-cover", w.Body.String())

	w = e.do(t, http.MethodGet, "/api/songs/999999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = e.do(t, http.MethodGet, "/api/songs/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestAdminCRUD(t *testing.T) {
	e := setup(t)
	body := map[string]any{
		"title": "New Song", "artists": []string{"Band"}, "year": 2024,
		"genres": []string{"Indie"}, "types": []string{"ep"}, "duration": "4:05",
		"hint1": "a", "hint2": "b", "hint3": "c",
	}
	w := e.do(t, http.MethodPost, "/api/admin/songs", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	m := decodeBody(t, w)
	assert.Equal(t, "4:05", m["duration"])
	assert.Equal(t, []any{"EP"}, m["types"])
	id := jsonNumber(int64(m["id"].(float64)))

	body["title"] = "Renamed Song"
	w = e.do(t, http.MethodPut, "/api/admin/songs/"+id, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Renamed Song", decodeBody(t, w)["title"])

	w = e.do(t, http.MethodGet, "/api/admin/songs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Renamed Song")

	w = e.do(t, http.MethodDelete, "/api/admin/songs/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(t, http.MethodDelete, "/api/admin/songs/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	dup := map[string]any{"title": "shape of you", "artists": []string{"Band"}, "year": 2024,
		"genres": []string{"Indie"}, "types": []string{"Single"}, "duration": "3:00",
		"hint1": "a", "hint2": "b", "hint3": "c"}
	w = e.do(t, http.MethodPost, "/api/admin/songs", dup)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_title", decodeBody(t, w)["error"])

	bad := map[string]any{"title": "x", "artists": []string{"a"}, "year": 2020, "genres": []string{"g"},
		"types": []string{"Single"}, "duration": "four minutes", "hint1": "a", "hint2": "b", "hint3": "c"}
	w = e.do(t, http.MethodPost, "/api/admin/songs", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad["duration"] = "1:00"
	bad["year"] = 20
	w = e.do(t, http.MethodPost, "/api/admin/songs", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_song", decodeBody(t, w)["error"])
}

func TestGzipOnJSONRoutes(t *testing.T) {
	e := setup(t)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/songs", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(plain), "Shape of You")
}

func TestCatalogUnavailable(t *testing.T) {
	e := setup(t)
	sid := e.start(t)
	require.NoError(t, e.db.Close())

	w := e.do(t, http.MethodPost, "/api/game/start", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "catalog_unavailable", decodeBody(t, w)["error"])

	w = e.do(t, http.MethodPost, "/api/game/"+sid+"/guess", map[string]string{"title": "Hello"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTargetDeletedMidRound(t *testing.T) {
	e := setup(t)
	sid := e.start(t)
	found, err := e.cat.Search(context.Background(), "Shape of You", 1)
	require.NoError(t, err)
	require.Len(t, found, 1)

	w := e.do(t, http.MethodDelete, "/api/admin/songs/"+jsonNumber(found[0].ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = e.do(t, http.MethodPost, "/api/game/"+sid+"/guess", map[string]string{"title": "Hello"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "invalid_session", decodeBody(t, w)["error"])

	w = e.do(t, http.MethodGet, "/api/game/"+sid, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	e := setup(t)
	e.start(t)
	w := e.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "spordle_rounds_started_total 1")
	assert.Contains(t, w.Body.String(), `route="/api/game/start"`)
}
