package dag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verso/internal/store"
)

func TestRefStoreUpdateResolve(t *testing.T) {
	ctx := context.Background()
	refs := NewRefStore(store.NewMemory())

	require.NoError(t, refs.UpdateRef(ctx, "main", "abc123"))

	hash, err := refs.ResolveRef(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "abc123", hash)

	// Overwrite moves the pointer.
	require.NoError(t, refs.UpdateRef(ctx, "main", "def456"))
	hash, err = refs.ResolveRef(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "def456", hash)
}

func TestRefStoreResolveMissing(t *testing.T) {
	ctx := context.Background()
	refs := NewRefStore(store.NewMemory())

	_, err := refs.ResolveRef(ctx, "nope")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var rnf *RefNotFoundError
	require.ErrorAs(t, err, &rnf)
	assert.Equal(t, "nope", rnf.Name)
}

func TestRefStoreSymbolicHead(t *testing.T) {
	ctx := context.Background()
	refs := NewRefStore(store.NewMemory())

	require.NoError(t, refs.SetHead(ctx, "main"))

	branch, detached, err := refs.HeadBranch(ctx)
	require.NoError(t, err)
	assert.False(t, detached)
	assert.Equal(t, "main", branch)

	// HEAD points at a branch that has no commits yet.
	_, err = refs.ResolveRef(ctx, headKey)
	require.Error(t, err)
	var rnf *RefNotFoundError
	require.ErrorAs(t, err, &rnf)
	assert.Equal(t, "main", rnf.Name, "the unresolved hop is the branch, not HEAD")

	require.NoError(t, refs.UpdateRef(ctx, "main", "abc123"))
	hash, err := refs.ResolveRef(ctx, headKey)
	require.NoError(t, err)
	assert.Equal(t, "abc123", hash)
}

func TestRefStoreDetachedHead(t *testing.T) {
	ctx := context.Background()
	refs := NewRefStore(store.NewMemory())

	require.NoError(t, refs.SetHeadDetached(ctx, "abc123"))

	_, detached, err := refs.HeadBranch(ctx)
	require.NoError(t, err)
	assert.True(t, detached)

	hash, err := refs.ResolveRef(ctx, headKey)
	require.NoError(t, err)
	assert.Equal(t, "abc123", hash)
}

func TestRefStoreMissingHead(t *testing.T) {
	ctx := context.Background()
	refs := NewRefStore(store.NewMemory())

	_, _, err := refs.HeadBranch(ctx)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	_, err = refs.ResolveRef(ctx, headKey)
	assert.True(t, IsNotFound(err))
}

func TestRefStoreDelete(t *testing.T) {
	ctx := context.Background()
	refs := NewRefStore(store.NewMemory())

	require.NoError(t, refs.UpdateRef(ctx, "feature", "abc123"))
	require.NoError(t, refs.DeleteRef(ctx, "feature"))

	_, err := refs.ResolveRef(ctx, "feature")
	assert.True(t, IsNotFound(err))

	err = refs.DeleteRef(ctx, "feature")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestRefStoreList(t *testing.T) {
	ctx := context.Background()
	refs := NewRefStore(store.NewMemory())

	names, err := refs.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, refs.UpdateRef(ctx, "main", "a"))
	require.NoError(t, refs.UpdateRef(ctx, "feature/login", "b"))
	require.NoError(t, refs.SetHead(ctx, "main"))

	names, err = refs.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"feature/login", "main"}, names, "HEAD is not a ref")
}
