package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

func TestLocalStore_PutGetList(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir(), "/uploads/")
	require.NoError(t, err)

	url, err := s.Put(ctx, "processed/abc12345.jpg", strings.NewReader("jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/processed/abc12345.jpg", url)

	_, err = s.Put(ctx, "backups/homes/homes_backup_1.json", strings.NewReader("[]"), "application/json")
	require.NoError(t, err)

	rc, err := s.Get(ctx, "processed/abc12345.jpg")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "jpeg", string(body))

	objs, err := s.List(ctx, "backups/")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "backups/homes/homes_backup_1.json", objs[0].Key)
	assert.EqualValues(t, 2, objs[0].Size)
}

func TestLocalStore_MissingKeyIsNotFound(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "nope.json")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, key := range []string{"../etc/passwd", "a/../../b", ""} {
		_, err := s.Put(context.Background(), key, strings.NewReader("x"), "text/plain")
		var v *domain.ValidationError
		assert.ErrorAs(t, err, &v, key)
	}
}

func TestS3Store_URL(t *testing.T) {
	assert.Equal(t, "https://media.s3.amazonaws.com/a.jpg", newS3Store(nil, S3Config{Bucket: "media"}).URL("a.jpg"))
	assert.Equal(t, "http://minio:9000/media/a.jpg", newS3Store(nil, S3Config{Bucket: "media", Endpoint: "http://minio:9000/"}).URL("a.jpg"))
	assert.Equal(t, "https://cdn.example.com/a.jpg", newS3Store(nil, S3Config{Bucket: "media", PublicURL: "https://cdn.example.com/"}).URL("a.jpg"))
}
