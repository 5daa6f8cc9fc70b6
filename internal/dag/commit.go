// Package dag implements the commit graph and its pointer structure:
// immutable content-addressed commits, named refs with a symbolic HEAD,
// and the user-facing branch lifecycle. Persistence goes through the
// store collaborator; this package never interprets a commit's state
// beyond hashing it.
package dag

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/verso/internal/ir"
	"github.com/roach88/verso/internal/logging"
	"github.com/roach88/verso/internal/store"
)

// Commit is an immutable snapshot descriptor. State is an opaque value
// supplied by the caller (collection/schema hashes, log position); the
// core only hashes and stores it.
//
// Hash is a deterministic function of {parents, message, author, state}.
// The creation Timestamp is metadata on the stored blob and is not part
// of identity: saving identical content twice yields the same hash.
type Commit struct {
	Hash      string   `json:"hash"`
	Parents   []string `json:"parents"`
	Message   string   `json:"message"`
	Author    string   `json:"author"`
	Timestamp int64    `json:"timestamp"`
	State     ir.Value `json:"state"`
}

// CommitOptions carries the caller-supplied commit fields.
type CommitOptions struct {
	Message string
	Author  string
	Parents []string
}

// NewCommit builds a commit over state and computes its content address.
// It does not persist anything; see Commits.Save.
func NewCommit(state ir.Value, opts CommitOptions) (*Commit, error) {
	parents := make(ir.Array, len(opts.Parents))
	for i, p := range opts.Parents {
		parents[i] = ir.String(p)
	}

	hash, err := ir.HashValue(ir.DomainCommit, ir.Object{
		"parents": parents,
		"message": ir.String(opts.Message),
		"author":  ir.String(opts.Author),
		"state":   state,
	})
	if err != nil {
		return nil, fmt.Errorf("hash commit: %w", err)
	}

	return &Commit{
		Hash:      hash,
		Parents:   append([]string(nil), opts.Parents...),
		Message:   opts.Message,
		Author:    opts.Author,
		Timestamp: time.Now().UnixMilli(),
		State:     state,
	}, nil
}

// UnmarshalJSON decodes a stored commit, routing state through the ir
// value model.
func (c *Commit) UnmarshalJSON(data []byte) error {
	var raw struct {
		Hash      string          `json:"hash"`
		Parents   []string        `json:"parents"`
		Message   string          `json:"message"`
		Author    string          `json:"author"`
		Timestamp int64           `json:"timestamp"`
		State     json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Hash = raw.Hash
	c.Parents = raw.Parents
	c.Message = raw.Message
	c.Author = raw.Author
	c.Timestamp = raw.Timestamp

	if len(raw.State) == 0 {
		c.State = nil
		return nil
	}
	state, err := ir.FromJSON(raw.State)
	if err != nil {
		return fmt.Errorf("commit %s: state: %w", raw.Hash, err)
	}
	c.State = state
	return nil
}

// commitCacheSize bounds the read cache; commits are small descriptors.
const commitCacheSize = 512

// Commits persists commit blobs keyed by hash, with an LRU read cache.
type Commits struct {
	store store.Store
	cache *lru.Cache[string, *Commit]
}

// NewCommits returns a commit handle over the given store.
func NewCommits(st store.Store) *Commits {
	cache, err := lru.New[string, *Commit](commitCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size
	}
	return &Commits{store: st, cache: cache}
}

// Save persists a commit. Writing an already-present hash is a no-op
// success. Every parent must already be persisted: the store never
// accepts a commit whose parents it does not know.
func (cs *Commits) Save(ctx context.Context, c *Commit) error {
	for _, parent := range c.Parents {
		if _, err := cs.store.Read(ctx, parent); err != nil {
			if store.IsNotFound(err) {
				return fmt.Errorf("commit %s: unknown parent %s", c.Hash, parent)
			}
			return err
		}
	}

	if _, err := cs.store.Read(ctx, c.Hash); err == nil {
		return nil
	} else if !store.IsNotFound(err) {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal commit %s: %w", c.Hash, err)
	}
	if err := cs.store.Write(ctx, c.Hash, data); err != nil {
		return err
	}

	cs.cache.Add(c.Hash, c)
	logging.For("dag").Debug().
		Str("hash", c.Hash).
		Int("parents", len(c.Parents)).
		Msg("commit saved")
	return nil
}

// Load reads a commit by hash, verifying that the stored content still
// hashes to its key.
func (cs *Commits) Load(ctx context.Context, hash string) (*Commit, error) {
	if c, ok := cs.cache.Get(hash); ok {
		return c, nil
	}

	data, err := cs.store.Read(ctx, hash)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, &CommitNotFoundError{Hash: hash}
		}
		return nil, err
	}

	var c Commit
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode commit %s: %w", hash, err)
	}

	recomputed, err := NewCommit(c.State, CommitOptions{
		Message: c.Message,
		Author:  c.Author,
		Parents: c.Parents,
	})
	if err != nil {
		return nil, fmt.Errorf("verify commit %s: %w", hash, err)
	}
	if recomputed.Hash != hash {
		return nil, fmt.Errorf("commit %s: stored content hashes to %s", hash, recomputed.Hash)
	}

	cs.cache.Add(hash, &c)
	return &c, nil
}
