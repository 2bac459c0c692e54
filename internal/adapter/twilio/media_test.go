package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcher(t *testing.T) *MediaFetcher {
	t.Helper()
	return &MediaFetcher{
		accountSID: testAccountSID,
		authToken:  testAuthToken,
		mediaDir:   t.TempDir(),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		metrics:    testMetrics(),
		logger:     discardLogger(),
	}
}

func TestFetch_Success(t *testing.T) {
	payload := []byte("jpeg-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "media fetch must authenticate")
		assert.Equal(t, testAccountSID, user)
		assert.Equal(t, testAuthToken, pass)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := testFetcher(t)
	media := f.Fetch(context.Background(), srv.URL+"/media/ME123", "image/jpeg", "1780000000000")
	require.NotNil(t, media)

	assert.True(t, strings.HasPrefix(media.Filename, "report-1780000000000-"))
	assert.True(t, strings.HasSuffix(media.Filename, ".jpg"))
	assert.Equal(t, int64(len(payload)), media.Size)
	assert.Equal(t, "image/jpeg", media.ContentType)
	assert.Equal(t, "/media/"+media.Filename, media.URL)

	written, err := os.ReadFile(media.Filepath)
	require.NoError(t, err)
	assert.Equal(t, payload, written)
}

func TestFetch_UnknownContentTypeFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("mystery"))
	}))
	defer srv.Close()

	f := testFetcher(t)
	media := f.Fetch(context.Background(), srv.URL, "application/x-mystery", "42")
	require.NotNil(t, media)
	assert.True(t, strings.HasSuffix(media.Filename, ".bin"))
}

func TestFetch_ContentTypeParametersIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("audio"))
	}))
	defer srv.Close()

	f := testFetcher(t)
	media := f.Fetch(context.Background(), srv.URL, "audio/ogg; codecs=opus", "42")
	require.NotNil(t, media)
	assert.True(t, strings.HasSuffix(media.Filename, ".ogg"))
}

func TestFetch_HTTPErrorReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := testFetcher(t)
	assert.Nil(t, f.Fetch(context.Background(), srv.URL, "image/jpeg", "42"))
}

func TestFetch_NoURLSkips(t *testing.T) {
	f := testFetcher(t)
	assert.Nil(t, f.Fetch(context.Background(), "", "image/jpeg", "42"))
}

func TestFetch_NoCredentialsSkips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("must not be called without credentials")
	}))
	defer srv.Close()

	f := testFetcher(t)
	f.authToken = ""
	assert.Nil(t, f.Fetch(context.Background(), srv.URL, "image/jpeg", "42"))
}

func TestFetch_UnreachableHostReturnsNil(t *testing.T) {
	f := testFetcher(t)
	assert.Nil(t, f.Fetch(context.Background(), "http://127.0.0.1:1/media", "image/jpeg", "42"))
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		ext         string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"video/mp4", ".mp4"},
		{"audio/amr", ".amr"},
		{"application/pdf", ".pdf"},
		{"IMAGE/JPEG", ".jpg"},
		{"application/octet-stream", ".bin"},
		{"", ".bin"},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.ext, extensionFor(tt.contentType))
		})
	}
}
