package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Entry {
	l := log.New()
	l.SetOutput(io.Discard)
	return log.NewEntry(l)
}

func catalogServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"total":1,"items":[{"id":"a","title":"HEX-leaf","image":"a.svg","price":750}]}`))
		}
	}))
	t.Cleanup(srv.Close)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("API_URL", srv.URL)
	t.Setenv("CDN_URL", "https://cdn.test")
	return srv
}

func TestRunWritesFile(t *testing.T) {
	catalogServer(t, http.StatusOK)
	out := filepath.Join(t.TempDir(), "catalog.csv")

	require.NoError(t, run(testLogger(), out, time.Second))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "HEX-leaf")
}

func TestRunRemovesPartialFileOnFailure(t *testing.T) {
	catalogServer(t, http.StatusInternalServerError)
	out := filepath.Join(t.TempDir(), "catalog.csv")

	err := run(testLogger(), out, time.Second)
	require.Error(t, err)
	_, statErr := os.Stat(out)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRunConfigError(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("API_URL", "not a url")
	out := filepath.Join(t.TempDir(), "catalog.csv")

	err := run(testLogger(), out, time.Second)
	assert.ErrorContains(t, err, "load config")
	_, statErr := os.Stat(out)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}
