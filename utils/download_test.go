package utils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleArtwork = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect class="paint" width="10" height="10"/></svg>`

func TestUtils_ShouldDownloadArtwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleArtwork)
	}))
	defer srv.Close()

	f, err := DownloadArtwork(srv.URL + "/page.svg")
	require.NoError(t, err)
	defer os.Remove(f.Name())
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, sampleArtwork, string(data))
}

func TestUtils_ShouldRejectFailedDownload(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := DownloadArtwork(srv.URL + "/missing.svg")
	assert.Error(t, err)
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	assert.True(t, IsValidUrl("https://github.com/esimov/colorbook/"))
	assert.False(t, IsValidUrl("pages/page1.svg"))
}

func TestUtils_ShouldDetectArtworkType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.svg")
	require.NoError(t, os.WriteFile(path, []byte(sampleArtwork), 0644))

	ctype, err := DetectContentType(path)
	require.NoError(t, err)
	assert.True(t, IsArtworkType(ctype), ctype)

	assert.False(t, IsArtworkType("image/png"))
	assert.True(t, IsArtworkType("image/svg+xml"))
}
