package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeHealthCheck(t *testing.T) {
	cfg := validTestConfig()
	errs := make(chan error, 1)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/healthz", nil)

	serveHealthCheck(cfg, errs)(w, r, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ok\n", w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestServeVersion(t *testing.T) {
	cfg := validTestConfig()
	errs := make(chan error, 1)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/version", nil)

	serveVersion(cfg, errs)(w, r, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "imposter v"+releaseVersion+"\n", w.Body.String())
}

func TestServeRobots(t *testing.T) {
	cfg := validTestConfig()
	errs := make(chan error, 1)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/robots.txt", nil)

	serveRobots(cfg, errs)(w, r, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Disallow: /")
}

func TestServeRoomQR(t *testing.T) {
	cfg := &Config{
		gracePeriod: 10 * time.Second,
		maxPlayers:  12,
	}
	s := newServer(cfg, defaultCatalog())

	host := &Client{send: make(chan any, 8), id: newConnID()}
	s.register(host)
	s.dispatch(host, ClientMessage{Type: "create-room", PlayerName: "Alice"})
	created := recv[RoomCreatedMessage](t, host)

	mux := httprouter.New()
	mux.GET("/rooms/:code/qr", serveRoomQR(cfg, s))

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/rooms/" + created.RoomCode + "/qr")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, len(body) > 0)

	// Unknown rooms get a 404 rather than a QR code to nowhere.
	resp, err = http.Get(ts.URL + "/rooms/NOSUCH/qr")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"

	assert.Equal(t, "10.0.0.1:1234", realIP(r))

	r.Header.Set("X-Real-IP", "203.0.113.7")
	assert.Equal(t, "203.0.113.7:1234", realIP(r))

	r.Header.Set("CF-Connecting-IP", "2001:db8::1")
	assert.Equal(t, "[2001:db8::1]:1234", realIP(r))
}

func TestHumanReadableSize(t *testing.T) {
	assert.Equal(t, "512 B", humanReadableSize(512))
	assert.Equal(t, "1.0 kB", humanReadableSize(1000))
	assert.Equal(t, "1.5 MB", humanReadableSize(1500000))
}
