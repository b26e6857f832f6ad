package blob

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "variants/1/a.png", strings.NewReader("abc"), 3, "image/png"))
	obj, ok := s.Get("variants/1/a.png")
	require.True(t, ok)
	require.Equal(t, "image/png", obj.ContentType)
	require.Equal(t, []byte("abc"), obj.Data)
	require.Equal(t, "memory://variants/1/a.png", s.URL("variants/1/a.png"))

	require.Error(t, s.Put(ctx, "short", strings.NewReader("ab"), 3, "image/png"))
	require.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, "variants/1/a.png"))
	require.NoError(t, s.Delete(ctx, "missing"))
	require.Zero(t, s.Len())
}

func TestMinioStoreURL(t *testing.T) {
	s := &MinioStore{baseURL: "http://localhost:9000/catalog-images"}
	require.Equal(t, "http://localhost:9000/catalog-images/variants/1/a.png", s.URL("/variants/1/a.png"))
}
