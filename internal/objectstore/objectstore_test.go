package objectstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"beach.jpg", "beach.jpg"},
		{"my photo (1).JPG", "my_photo__1_.JPG"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{"..", "_"},
		{"", "_"},
		{"café-day-2.png", "caf_-day-2.png"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}
}

func TestLocalPutAndList(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir(), "http://localhost:8080/media/")
	require.NoError(t, err)

	url, err := store.Put(ctx, Key("gallery", "p1", "b.jpg"), strings.NewReader("bbb"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/gallery/p1/b.jpg", url)

	_, err = store.Put(ctx, Key("gallery", "p1", "a photo.jpg"), strings.NewReader("aaa"))
	require.NoError(t, err)

	objects, err := store.List(ctx, "gallery/p1")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "a_photo.jpg", objects[0].Name)
	assert.Equal(t, "http://localhost:8080/media/gallery/p1/a_photo.jpg", objects[0].URL)
	assert.Equal(t, "b.jpg", objects[1].Name)

	empty, err := store.List(ctx, "gallery/unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLocalRejectsEscapes(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "http://x/media")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../outside.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = store.Put(context.Background(), "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestLocalHandler(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "http://x/media")
	require.NoError(t, err)
	_, err = store.Put(context.Background(), "receipts/p1/r.txt", strings.NewReader("receipt"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.StripPrefix("/media/", store.Handler()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/media/receipts/p1/r.txt")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "receipt", string(body))
}
