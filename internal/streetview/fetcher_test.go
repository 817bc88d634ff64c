package streetview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "600x400", r.URL.Query().Get("size"))
		assert.NotEmpty(t, r.URL.Query().Get("fov"))
		w.Write([]byte("jpeg-bytes-" + r.URL.Query().Get("fov")))
	}))
	defer server.Close()

	f := NewFetcher(server.URL, "test-key", 5*time.Second)

	images, err := f.Fetch(context.Background(), "100 Founders Pkwy, Castle Rock, CO 80109")
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	for _, img := range images {
		assert.NotEmpty(t, img)
	}
}

func TestFetcher_Fetch_AnglePlacement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Echo the heading so the test can check each image landed in its slot.
		w.Write([]byte("h=" + r.URL.Query().Get("heading")))
	}))
	defer server.Close()

	f := NewFetcher(server.URL, "test-key", 5*time.Second)

	images, err := f.Fetch(context.Background(), "somewhere")
	require.NoError(t, err)
	require.Len(t, images, 3)
	// Front shot carries no heading; the offsets do.
	assert.Equal(t, "h=", string(images[0]))
	assert.Equal(t, "h=-40", string(images[1]))
	assert.Equal(t, "h=40", string(images[2]))
}

func TestFetcher_Fetch_AnyFailureFailsAll(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Fail exactly one of the three angles.
		if atomic.AddInt32(&calls, 1) == 2 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	f := NewFetcher(server.URL, "test-key", 5*time.Second)

	images, err := f.Fetch(context.Background(), "somewhere")
	require.Error(t, err)
	assert.Nil(t, images)
}
