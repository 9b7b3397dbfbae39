package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"MusicFlow/config"
	"MusicFlow/model"
	"MusicFlow/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t      *testing.T
	srv    *Server
	store  *storage.Store
	cfg    *config.Config
	webDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(root, "data")
	cfg.AudioDir = filepath.Join(root, "audio")
	cfg.WebAppDir = filepath.Join(root, "web")
	cfg.MaxUploadSize = 1 << 20
	cfg.AuthRateLimit = 0
	require.NoError(t, os.MkdirAll(cfg.WebAppDir, 0755))

	store, err := storage.NewStore(cfg.DataDir, nil)
	require.NoError(t, err)
	audio, err := storage.NewLocalAudioStore(cfg.AudioDir)
	require.NoError(t, err)

	require.NoError(t, storage.NewCollection[model.Track](store, storage.Tracks).Save(context.Background(), []model.Track{
		{ID: "1", Title: "Bohemian Rhapsody", Artist: "Queen", Album: "A Night at the Opera", Genre: "Rock", Year: 1975, Duration: "5:55"},
		{ID: "2", Title: "Teardrop", Artist: "Massive Attack", Album: "Mezzanine", Genre: "Trip-Hop", Year: 1998, Duration: "5:29"},
	}))
	require.NoError(t, storage.NewCollection[model.Artist](store, storage.Artists).Save(context.Background(), []model.Artist{
		{ID: "1", Name: "Queen", Genre: "Rock"},
	}))

	return &testServer{t: t, srv: New(cfg, store, audio), store: store, cfg: cfg, webDir: cfg.WebAppDir}
}

func (ts *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (ts *testServer) register(email string) string {
	ts.t.Helper()
	rr := ts.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "listener", "email": email, "password": "secret",
	}, "")
	require.Equal(ts.t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[map[string]interface{}](ts.t, rr)["token"].(string)
}

func TestHealthAndCORS(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = ts.do(http.MethodOptions, "/api/tracks", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestTrackEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/api/tracks", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]model.Track](t, rr), 2)

	rr = ts.do(http.MethodGet, "/api/tracks/404", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "track not found", decode[map[string]string](t, rr)["error"])

	rr = ts.do(http.MethodPut, "/api/tracks/1", map[string]interface{}{"genre": "Opera Rock"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	track := decode[model.Track](t, rr)
	assert.Equal(t, "Opera Rock", track.Genre)
	assert.Equal(t, "Bohemian Rhapsody", track.Title)

	rr = ts.do(http.MethodPut, "/api/tracks/1", map[string]interface{}{"year": "later"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(http.MethodPut, "/api/tracks/1", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(http.MethodPost, "/api/tracks/2/like", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]bool{"liked": true}, decode[map[string]bool](t, rr))
}

func TestCatalogSearchAndStats(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/api/artists/1/tracks", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]model.Track](t, rr), 1)

	rr = ts.do(http.MethodGet, "/api/albums/9/tracks", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(http.MethodGet, "/api/search?q=quee", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	res := decode[struct {
		Tracks  []model.Track  `json:"tracks"`
		Artists []model.Artist `json:"artists"`
	}](t, rr)
	require.Len(t, res.Tracks, 1)
	assert.Equal(t, "Queen", res.Tracks[0].Artist)
	assert.Len(t, res.Artists, 1)

	rr = ts.do(http.MethodGet, "/api/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[map[string]int](t, rr)
	assert.Equal(t, 2, stats["totalTracks"])
	assert.Equal(t, 355+329, stats["totalDuration"])
}

func TestPlaylistEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPost, "/api/playlists", map[string]string{"name": "Mix", "description": "d"}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[model.Playlist](t, rr)
	assert.Equal(t, "0m", created.Duration)
	assert.False(t, created.IsPublic)

	rr = ts.do(http.MethodPost, "/api/playlists", map[string]string{"description": "no name"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	path := "/api/playlists/" + created.ID
	rr = ts.do(http.MethodPost, path+"/tracks", map[string]string{"trackId": "1"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[model.Playlist](t, rr).TrackCount)

	rr = ts.do(http.MethodPost, path+"/tracks", map[string]string{"trackId": "nope"}, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(http.MethodGet, path+"/tracks", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]model.Track](t, rr), 1)

	rr = ts.do(http.MethodDelete, path+"/tracks/1", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[model.Playlist](t, rr).TrackCount)

	rr = ts.do(http.MethodPut, path, map[string]interface{}{"isPublic": true}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[model.Playlist](t, rr).IsPublic)

	for i := 0; i < 2; i++ {
		rr = ts.do(http.MethodDelete, path, nil, "")
		assert.Equal(t, http.StatusOK, rr.Code)
	}
	rr = ts.do(http.MethodGet, "/api/playlists", nil, "")
	assert.Empty(t, decode[[]model.Playlist](t, rr))
}

func TestRegisterLoginAndProfile(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "freddie", "email": "freddie@example.com", "password": "mercury",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")
	session := decode[map[string]interface{}](t, rr)
	token := session["token"].(string)
	assert.NotEmpty(t, token)
	assert.Equal(t, "User registered successfully", session["message"])
	assert.Equal(t, "freddie@example.com", session["user"].(map[string]interface{})["email"])

	rr = ts.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "other", "email": "freddie@example.com", "password": "x",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[map[string]string](t, rr)["error"], "already exists")

	rr = ts.do(http.MethodPost, "/api/auth/register", map[string]string{"email": "a@b.c"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "freddie@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid email or password", decode[map[string]string](t, rr)["error"])

	rr = ts.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@example.com", "password": "mercury"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "freddie@example.com", "password": "mercury"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	login := decode[map[string]interface{}](t, rr)
	assert.Equal(t, "Login successful", login["message"])
	assert.NotEmpty(t, login["token"])

	rr = ts.do(http.MethodGet, "/api/auth/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = ts.do(http.MethodGet, "/api/auth/profile", nil, "garbage")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.do(http.MethodPut, "/api/auth/profile", map[string]interface{}{
		"username":    "mercury",
		"preferences": map[string]interface{}{"theme": "dark"},
	}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(http.MethodGet, "/api/auth/profile", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	profile := decode[model.PublicUser](t, rr)
	assert.Equal(t, "mercury", profile.Username)
	assert.Equal(t, "dark", profile.Preferences["theme"])
	assert.NotContains(t, rr.Body.String(), "passwordHash")
}

func TestDeletedUserTokenIsForbidden(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("gone@example.com")

	require.NoError(t, storage.NewCollection[model.User](ts.store, storage.Users).Save(context.Background(), nil))

	rr := ts.do(http.MethodGet, "/api/history", nil, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestHistoryAndRecommendations(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("listener@example.com")

	rr := ts.do(http.MethodGet, "/api/recommendations", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	rec := decode[struct {
		Tracks []model.Track `json:"tracks"`
		Type   string        `json:"type"`
	}](t, rr)
	assert.Equal(t, "popular", rec.Type)
	assert.Len(t, rec.Tracks, 2)

	rr = ts.do(http.MethodPost, "/api/history", map[string]interface{}{"trackId": "1", "duration": 200}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(http.MethodPost, "/api/history", map[string]interface{}{"duration": 5}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(http.MethodPost, "/api/history", `{"trackId": "1", "duration": 1e20}`, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[map[string]string](t, rr)["error"], "between 0 and 86400")

	rr = ts.do(http.MethodPost, "/api/history", map[string]interface{}{"trackId": "deleted-track", "duration": 30}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(http.MethodGet, "/api/history", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	history := decode[[]map[string]interface{}](t, rr)
	require.Len(t, history, 1)
	assert.Equal(t, "1", history[0]["trackId"])
	assert.Equal(t, "Bohemian Rhapsody", history[0]["track"].(map[string]interface{})["title"])

	rr = ts.do(http.MethodGet, "/api/recommendations", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	rec = decode[struct {
		Tracks []model.Track `json:"tracks"`
		Type   string        `json:"type"`
	}](t, rr)
	assert.Equal(t, "based_on_history", rec.Type)
	assert.Empty(t, rec.Tracks)

	rr = ts.do(http.MethodGet, "/api/recommendations", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestImportExportEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPost, "/api/import/tracks", `[{"title":"Porcelain","artist":"Moby"},{"title":"no artist"}]`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, map[string]int{"imported": 1, "total": 2, "duplicates": 1}, decode[map[string]int](t, rr))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "tracks.csv")
	require.NoError(t, err)
	part.Write([]byte("title,artist\nIntro,The xx\n"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/import/tracks", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[map[string]int](t, rec)["imported"])

	rr = ts.do(http.MethodPost, "/api/import/tracks?format=xml", "<tracks/>", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(http.MethodGet, "/api/export/tracks?format=csv", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "tracks.csv")
	assert.True(t, strings.HasPrefix(rr.Body.String(), "id,title,artist,album,genre,year,duration,bitrate,liked\n"))
	assert.Contains(t, rr.Body.String(), `"Intro","The xx"`)

	rr = ts.do(http.MethodGet, "/api/export/tracks?format=m3u", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "#EXTINF:355,Queen - Bohemian Rhapsody\n/api/tracks/1/audio\n")

	rr = ts.do(http.MethodGet, "/api/export/tracks?format=xml", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBackupAndRestoreEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/api/backup", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "musicflow-backup-")
	backup := rr.Body.String()

	rr = ts.do(http.MethodPut, "/api/tracks/1", map[string]interface{}{"title": "Changed"}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(http.MethodPost, "/api/restore", backup, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.do(http.MethodGet, "/api/tracks/1", nil, "")
	assert.Equal(t, "Bohemian Rhapsody", decode[model.Track](t, rr).Title)

	rr = ts.do(http.MethodPost, "/api/restore", `{"something": []}`, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAudioUploadAndServe(t *testing.T) {
	ts := newTestServer(t)

	upload := func(filename string, content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		part.Write(content)
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/tracks/1/audio", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rr := httptest.NewRecorder()
		ts.srv.Router().ServeHTTP(rr, req)
		return rr
	}

	rr := ts.do(http.MethodGet, "/api/tracks/1/audio", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = upload("song.exe", []byte("nope"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = upload("song.mp3", bytes.Repeat([]byte{0xff}, int(ts.cfg.MaxUploadSize)+10))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = upload("song.MP3", []byte("ID3 fake audio"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = ts.do(http.MethodGet, "/api/tracks/1/audio", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "audio/mpeg", rr.Header().Get("Content-Type"))
	assert.Equal(t, "ID3 fake audio", rr.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/tracks/1/audio", nil)
	req.Header.Set("Range", "bytes=0-2")
	rec := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "ID3", rec.Body.String())

	rr = ts.do(http.MethodGet, "/api/tracks/missing/audio", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStaticFallback(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(ts.webDir, "index.html"), []byte("<html>app</html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(ts.webDir, "app.js"), []byte("console.log(1)"), 0644))

	rr := ts.do(http.MethodGet, "/library/tracks", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "app")

	rr = ts.do(http.MethodGet, "/app.js", nil, "")
	assert.Equal(t, "console.log(1)", rr.Body.String())

	rr = ts.do(http.MethodGet, "/api/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAuthRateLimit(t *testing.T) {
	ts := newTestServer(t)
	ts.cfg.AuthRateLimit = 2
	ts.srv = New(ts.cfg, ts.store, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := ts.do(http.MethodPost, "/api/auth/login", map[string]string{
			"email": fmt.Sprintf("u%d@example.com", i), "password": "x",
		}, "")
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}

func TestAuthRateLimitIgnoresForwardedForByDefault(t *testing.T) {
	ts := newTestServer(t)
	ts.cfg.AuthRateLimit = 1
	ts.srv = New(ts.cfg, ts.store, nil)

	login := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"a@example.com","password":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rr := httptest.NewRecorder()
		ts.srv.Router().ServeHTTP(rr, req)
		return rr.Code
	}
	assert.Equal(t, http.StatusUnauthorized, login("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, login("10.0.0.2"))

	ts.cfg.TrustProxy = true
	ts.srv = New(ts.cfg, ts.store, nil)
	assert.Equal(t, http.StatusUnauthorized, login("10.0.0.1"))
	assert.Equal(t, http.StatusUnauthorized, login("10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, login("10.0.0.2"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	assert.Equal(t, "192.0.2.7", clientIP(req, false))
	assert.Equal(t, "203.0.113.9", clientIP(req, true))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "192.0.2.7", clientIP(req, true))
}

func TestRecoverMiddleware(t *testing.T) {
	h := recoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
