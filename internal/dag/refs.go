package dag

import (
	"context"
	"sort"
	"strings"

	"github.com/roach88/verso/internal/store"
)

const (
	headKey        = "HEAD"
	refPrefix      = "refs/"
	symbolicPrefix = "ref: "
)

// RefStore manages named pointers to commit hashes plus the symbolic
// HEAD. Refs live under "refs/<name>"; HEAD holds either "ref: <branch>"
// (symbolic, branch need not exist yet) or a bare hash (detached).
//
// An explicit handle, not ambient state: construct one per store and pass
// it to every operation. Updates are plain last-writer-wins storage
// writes; single-writer-per-ref discipline is the caller's.
type RefStore struct {
	store store.Store
}

// NewRefStore returns a ref handle over the given store.
func NewRefStore(st store.Store) *RefStore {
	return &RefStore{store: st}
}

// SetHead makes HEAD symbolic, pointing at a branch name.
func (r *RefStore) SetHead(ctx context.Context, branch string) error {
	return r.store.Write(ctx, headKey, []byte(symbolicPrefix+branch))
}

// SetHeadDetached points HEAD directly at a commit hash.
func (r *RefStore) SetHeadDetached(ctx context.Context, hash string) error {
	return r.store.Write(ctx, headKey, []byte(hash))
}

// UpdateRef creates or overwrites a named pointer. The target hash is not
// verified against the commit store; DAG integrity is enforced when
// commits are saved, not when pointers move.
func (r *RefStore) UpdateRef(ctx context.Context, name, hash string) error {
	return r.store.Write(ctx, refPrefix+name, []byte(hash))
}

// DeleteRef removes a named pointer.
func (r *RefStore) DeleteRef(ctx context.Context, name string) error {
	err := r.store.Delete(ctx, refPrefix+name)
	if store.IsNotFound(err) {
		return &RefNotFoundError{Name: name}
	}
	return err
}

// ResolveRef returns the commit hash a ref points at. "HEAD" follows the
// symbolic target one hop; a detached HEAD yields its stored hash
// directly. Any unresolved hop yields RefNotFoundError, never a silently
// dangling pointer.
func (r *RefStore) ResolveRef(ctx context.Context, name string) (string, error) {
	if name == headKey {
		data, err := r.store.Read(ctx, headKey)
		if err != nil {
			if store.IsNotFound(err) {
				return "", &RefNotFoundError{Name: headKey}
			}
			return "", err
		}
		content := strings.TrimSpace(string(data))
		branch, symbolic := strings.CutPrefix(content, symbolicPrefix)
		if !symbolic {
			return content, nil
		}
		name = branch
	}

	data, err := r.store.Read(ctx, refPrefix+name)
	if err != nil {
		if store.IsNotFound(err) {
			return "", &RefNotFoundError{Name: name}
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// HeadBranch returns the branch name HEAD points at. detached is true
// when HEAD holds a bare hash. A missing HEAD is a RefNotFoundError.
func (r *RefStore) HeadBranch(ctx context.Context) (branch string, detached bool, err error) {
	data, err := r.store.Read(ctx, headKey)
	if err != nil {
		if store.IsNotFound(err) {
			return "", false, &RefNotFoundError{Name: headKey}
		}
		return "", false, err
	}
	content := strings.TrimSpace(string(data))
	if target, ok := strings.CutPrefix(content, symbolicPrefix); ok {
		return target, false, nil
	}
	return "", true, nil
}

// List returns all non-HEAD ref names, sorted.
func (r *RefStore) List(ctx context.Context) ([]string, error) {
	keys, err := r.store.List(ctx, refPrefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, strings.TrimPrefix(key, refPrefix))
	}
	sort.Strings(names)
	return names, nil
}
