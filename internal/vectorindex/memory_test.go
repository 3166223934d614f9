package vectorindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(id, fileID string, chunkIndex, page int, text string, values ...float32) Vector {
	return Vector{
		ID:     id,
		Values: values,
		Metadata: Metadata{
			FileID:     fileID,
			ChunkIndex: chunkIndex,
			Page:       page,
			Text:       text,
		},
	}
}

func TestMemoryIndexQueryRanking(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	err := idx.Upsert(ctx, []Vector{
		vec("f1::chunk::0", "f1", 0, 0, "north", 1, 0),
		vec("f1::chunk::1", "f1", 1, 0, "east", 0, 1),
		vec("f1::chunk::2", "f1", 2, 1, "northeast", 1, 1),
	})
	require.NoError(t, err)

	matches, err := idx.Query(ctx, []float32{1, 0}, 2, "")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "f1::chunk::0", matches[0].ID)
	assert.Equal(t, "f1::chunk::2", matches[1].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
	assert.Equal(t, "north", matches[0].Text)
	assert.Equal(t, 0, matches[0].Metadata.ChunkIndex)
}

func TestMemoryIndexFileFilter(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	require.NoError(t, idx.Upsert(ctx, []Vector{
		vec("a::chunk::0", "a", 0, 0, "from a", 1, 0),
		vec("b::chunk::0", "b", 0, 0, "from b", 1, 0),
	}))

	matches, err := idx.Query(ctx, []float32{1, 0}, 10, "b")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b", matches[0].Metadata.FileID)
}

func TestMemoryIndexUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	require.NoError(t, idx.Upsert(ctx, []Vector{vec("a::chunk::0", "a", 0, 0, "old", 1, 0)}))
	require.NoError(t, idx.Upsert(ctx, []Vector{vec("a::chunk::0", "a", 0, 0, "new", 0, 1)}))

	assert.Equal(t, 1, idx.Len())
	matches, err := idx.Query(ctx, []float32{0, 1}, 1, "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "new", matches[0].Text)
}

func TestMemoryIndexDeleteByFile(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	require.NoError(t, idx.Upsert(ctx, []Vector{
		vec("a::chunk::0", "a", 0, 0, "", 1, 0),
		vec("a::chunk::1", "a", 1, 0, "", 0, 1),
		vec("b::chunk::0", "b", 0, 0, "", 1, 1),
	}))

	require.NoError(t, idx.DeleteByFile(ctx, "a"))
	assert.Equal(t, 1, idx.Len())

	// deleting an unknown file id is not an error
	require.NoError(t, idx.DeleteByFile(ctx, "does-not-exist"))
	assert.Equal(t, 1, idx.Len())
}

func TestMemoryIndexEmptyQuery(t *testing.T) {
	idx := NewMemoryIndex()
	matches, err := idx.Query(context.Background(), []float32{1, 0}, 5, "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}
