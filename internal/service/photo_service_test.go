package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/pkg/api"
)

func TestPhotos(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	p := tripWithMembers(t, env, alice)

	upload := func(u models.UserRef, name string) (*api.Photo, error) {
		resp, err := env.as(u).photos.UploadPhoto(context.Background(), connect.NewRequest(&api.UploadPhotoRequest{
			ProjectID: p.ID, Filename: name, Data: []byte("img"),
		}))
		if err != nil {
			return nil, err
		}
		return resp.Msg.Photo, nil
	}

	photo, err := upload(alice, "Beach day!.png")
	require.NoError(t, err)
	assert.Equal(t, "Beach_day_.png", photo.Name)
	assert.Equal(t, "http://media.test/gallery/"+p.ID+"/Beach_day_.png", photo.URL)

	_, err = upload(alice, "another.jpg")
	require.NoError(t, err)

	_, err = upload(bob, "intruder.jpg")
	requireCode(t, err, connect.CodePermissionDenied)

	resp, err := env.as(alice).photos.ListPhotos(context.Background(), connect.NewRequest(&api.ListPhotosRequest{ProjectID: p.ID}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Photos, 2)
	assert.Equal(t, "Beach_day_.png", resp.Msg.Photos[0].Name)
	assert.Equal(t, "another.jpg", resp.Msg.Photos[1].Name)
}

func TestPhotos_EmptyGallery(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	p := tripWithMembers(t, env, alice)

	resp, err := env.as(alice).photos.ListPhotos(context.Background(), connect.NewRequest(&api.ListPhotosRequest{ProjectID: p.ID}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Photos)
}
