package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	return &s3.PutObjectOutput{}, f.err
}

func TestPutObject(t *testing.T) {
	t.Parallel()

	fake := &fakePutter{}
	store := newWithClient(fake, Config{Bucket: "newsroom"})

	uri, err := store.PutObject(context.Background(), "/noticias/imagenes/a_deadbeef.jpg", "image/jpeg", bytes.NewReader([]byte("img")))
	require.NoError(t, err)
	require.Equal(t, "s3://newsroom/noticias/imagenes/a_deadbeef.jpg", uri)
	require.Equal(t, "noticias/imagenes/a_deadbeef.jpg", aws.ToString(fake.input.Key))
	require.Equal(t, "image/jpeg", aws.ToString(fake.input.ContentType))
	require.Equal(t, []byte("img"), fake.body)
}

func TestPutObjectPublicBaseAndErrors(t *testing.T) {
	t.Parallel()

	store := newWithClient(&fakePutter{}, Config{Bucket: "b", PublicBase: "https://media.example.com/"})
	uri, err := store.PutObject(context.Background(), "x.jpg", "", bytes.NewReader(nil))
	require.NoError(t, err)
	require.Equal(t, "https://media.example.com/x.jpg", uri)

	_, err = store.PutObject(context.Background(), "", "", bytes.NewReader(nil))
	require.Error(t, err)

	failing := newWithClient(&fakePutter{err: errors.New("denied")}, Config{Bucket: "b"})
	_, err = failing.PutObject(context.Background(), "x.jpg", "", bytes.NewReader(nil))
	require.ErrorContains(t, err, "denied")
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Region: "us-east-1"})
	require.Error(t, err)
	_, err = New(context.Background(), Config{Bucket: "b"})
	require.Error(t, err)
}
