package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	sferrors "github.com/abgdnv/storefront/internal/storefront/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKeyValueContract checks the behaviour every KeyValue backend must share.
func testKeyValueContract(t *testing.T, kv KeyValue) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent key", func(t *testing.T) {
		value, found, err := kv.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, value)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "cart", []byte(`[{"id":"1"}]`)))
		value, found, err := kv.Get(ctx, "cart")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[{"id":"1"}]`, string(value))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "cart", []byte(`[]`)))
		value, found, err := kv.Get(ctx, "cart")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[]`, string(value))
	})

	t.Run("arbitrary bytes", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "raw", []byte("not json {")))
		value, found, err := kv.Get(ctx, "raw")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "not json {", string(value))
	})
}

func Test_Memory(t *testing.T) {
	testKeyValueContract(t, NewMemory())
}

func Test_Memory_CopiesValues(t *testing.T) {
	// given
	ctx := context.Background()
	kv := NewMemory()
	value := []byte("abc")
	require.NoError(t, kv.Set(ctx, "k", value))

	// when
	value[0] = 'x'
	got, _, err := kv.Get(ctx, "k")

	// then
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func Test_File(t *testing.T) {
	kv, err := NewFile(filepath.Join(t.TempDir(), "nested", "dir"))
	require.NoError(t, err)
	testKeyValueContract(t, kv)
}

func Test_File_SurvivesReopen(t *testing.T) {
	// given
	ctx := context.Background()
	dir := t.TempDir()
	first, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "cart", []byte(`[1]`)))

	// when
	second, err := NewFile(dir)
	require.NoError(t, err)
	value, found, err := second.Get(ctx, "cart")

	// then
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[1]`, string(value))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be cleaned up")
}

func Test_File_RejectsInvalidKeys(t *testing.T) {
	kv, err := NewFile(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "../escape", `a\b`} {
		_, _, err := kv.Get(context.Background(), key)
		assert.ErrorIs(t, err, sferrors.ErrInvalidKey, "key %q", key)
		assert.ErrorIs(t, kv.Set(context.Background(), key, []byte("x")), sferrors.ErrInvalidKey, "key %q", key)
	}
}

func Test_pgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/shop?sslmode=disable", pgx5URL("postgres://u:p@db:5432/shop?sslmode=disable"))
	assert.Equal(t, "pgx5://db/shop", pgx5URL("postgresql://db/shop"))
	assert.Equal(t, "pgx5://db/shop", pgx5URL("pgx5://db/shop"))
}
