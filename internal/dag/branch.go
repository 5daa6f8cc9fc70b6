package dag

import (
	"context"
	"regexp"

	"github.com/roach88/verso/internal/ir"
	"github.com/roach88/verso/internal/logging"
)

// branchNameRE is the branch-name grammar: one or more slash-separated
// non-empty segments of [A-Za-z0-9._-]. Excludes leading/trailing
// slashes, empty segments, and whitespace.
var branchNameRE = regexp.MustCompile(`^[A-Za-z0-9._-]+(/[A-Za-z0-9._-]+)*$`)

// ValidateBranchName checks a name against the branch-name grammar.
func ValidateBranchName(name string) error {
	if !branchNameRE.MatchString(name) {
		return &InvalidBranchNameError{Name: name}
	}
	return nil
}

// Branch is the user-facing view of a ref: its name, the commit it points
// at, and whether HEAD currently targets it.
type Branch struct {
	Name      string `json:"name"`
	Commit    string `json:"commit"`
	IsCurrent bool   `json:"is_current"`
}

// BranchManager is the branch lifecycle over a RefStore and the commit
// store.
type BranchManager struct {
	refs    *RefStore
	commits *Commits
}

// NewBranchManager returns a branch manager over the given handles.
func NewBranchManager(refs *RefStore, commits *Commits) *BranchManager {
	return &BranchManager{refs: refs, commits: commits}
}

// CreateOptions configures Create. From, when set, is the base commit
// hash; otherwise the branch starts at the current HEAD resolution.
type CreateOptions struct {
	From string
}

// Create makes a new branch pointing at a base commit.
func (b *BranchManager) Create(ctx context.Context, name string, opts CreateOptions) error {
	if err := ValidateBranchName(name); err != nil {
		return err
	}
	exists, err := b.Exists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return &BranchAlreadyExistsError{Name: name}
	}

	base := opts.From
	if base == "" {
		base, err = b.refs.ResolveRef(ctx, headKey)
		if err != nil {
			return err
		}
	}

	if err := b.refs.UpdateRef(ctx, name, base); err != nil {
		return err
	}
	logging.For("branch").Info().Str("name", name).Str("commit", base).Msg("branch created")
	return nil
}

// CheckoutOptions configures Checkout.
type CheckoutOptions struct {
	Create bool
}

// Checkout points HEAD at a branch, optionally creating it first.
// Re-materializing live state for the new HEAD is the caller's job.
func (b *BranchManager) Checkout(ctx context.Context, name string, opts CheckoutOptions) error {
	exists, err := b.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		if !opts.Create {
			return &BranchNotFoundError{Name: name}
		}
		if err := b.Create(ctx, name, CreateOptions{}); err != nil {
			return err
		}
	}
	if err := b.refs.SetHead(ctx, name); err != nil {
		return err
	}
	logging.For("branch").Info().Str("name", name).Msg("checked out")
	return nil
}

// DeleteOptions configures Delete.
type DeleteOptions struct {
	Force bool
}

// Delete removes a branch. Deleting the current branch requires Force.
func (b *BranchManager) Delete(ctx context.Context, name string, opts DeleteOptions) error {
	exists, err := b.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return &BranchNotFoundError{Name: name}
	}

	current, detached, err := b.refs.HeadBranch(ctx)
	if err != nil && !IsNotFound(err) {
		return err
	}
	if err == nil && !detached && current == name && !opts.Force {
		return &CannotDeleteCurrentBranchError{Name: name}
	}

	if err := b.refs.DeleteRef(ctx, name); err != nil {
		return err
	}
	logging.For("branch").Info().Str("name", name).Msg("branch deleted")
	return nil
}

// Rename moves a branch to a new name, re-pointing HEAD when the old name
// was current.
func (b *BranchManager) Rename(ctx context.Context, oldName, newName string) error {
	if err := ValidateBranchName(newName); err != nil {
		return err
	}
	taken, err := b.Exists(ctx, newName)
	if err != nil {
		return err
	}
	if taken {
		return &BranchAlreadyExistsError{Name: newName}
	}

	hash, err := b.refs.ResolveRef(ctx, oldName)
	if err != nil {
		if IsNotFound(err) {
			return &BranchNotFoundError{Name: oldName}
		}
		return err
	}

	if err := b.refs.UpdateRef(ctx, newName, hash); err != nil {
		return err
	}
	if err := b.refs.DeleteRef(ctx, oldName); err != nil {
		return err
	}

	current, detached, err := b.refs.HeadBranch(ctx)
	if err == nil && !detached && current == oldName {
		if err := b.refs.SetHead(ctx, newName); err != nil {
			return err
		}
	} else if err != nil && !IsNotFound(err) {
		return err
	}

	logging.For("branch").Info().Str("from", oldName).Str("to", newName).Msg("branch renamed")
	return nil
}

// List enumerates all branches with their current-ness.
func (b *BranchManager) List(ctx context.Context) ([]Branch, error) {
	names, err := b.refs.List(ctx)
	if err != nil {
		return nil, err
	}

	current, detached, err := b.refs.HeadBranch(ctx)
	if err != nil {
		if !IsNotFound(err) {
			return nil, err
		}
		detached = true // no HEAD yet: nothing is current
	}

	branches := make([]Branch, 0, len(names))
	for _, name := range names {
		hash, err := b.refs.ResolveRef(ctx, name)
		if err != nil {
			return nil, err
		}
		branches = append(branches, Branch{
			Name:      name,
			Commit:    hash,
			IsCurrent: !detached && name == current,
		})
	}
	return branches, nil
}

// Current returns the branch name HEAD targets. A detached HEAD yields
// DetachedHeadError rather than a fabricated name.
func (b *BranchManager) Current(ctx context.Context) (string, error) {
	current, detached, err := b.refs.HeadBranch(ctx)
	if err != nil {
		return "", err
	}
	if detached {
		return "", &DetachedHeadError{}
	}
	return current, nil
}

// Exists reports whether a branch resolves.
func (b *BranchManager) Exists(ctx context.Context, name string) (bool, error) {
	_, err := b.refs.ResolveRef(ctx, name)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CommitAt creates and saves a commit whose parent is the current HEAD
// resolution (none on an unborn branch), then advances HEAD: the current
// branch ref when HEAD is symbolic, HEAD itself when detached.
func (b *BranchManager) CommitAt(ctx context.Context, state ir.Value, opts CommitOptions) (*Commit, error) {
	if len(opts.Parents) == 0 {
		head, err := b.refs.ResolveRef(ctx, headKey)
		if err == nil {
			opts.Parents = []string{head}
		} else if !IsNotFound(err) {
			return nil, err
		}
	}

	commit, err := NewCommit(state, opts)
	if err != nil {
		return nil, err
	}
	if err := b.commits.Save(ctx, commit); err != nil {
		return nil, err
	}

	branch, detached, err := b.refs.HeadBranch(ctx)
	switch {
	case err != nil && IsNotFound(err):
		// No HEAD at all: leave pointers untouched.
	case err != nil:
		return nil, err
	case detached:
		if err := b.refs.SetHeadDetached(ctx, commit.Hash); err != nil {
			return nil, err
		}
	default:
		if err := b.refs.UpdateRef(ctx, branch, commit.Hash); err != nil {
			return nil, err
		}
	}
	return commit, nil
}

// Log walks first-parent history from a ref (or HEAD when from is empty),
// newest first, up to limit commits (limit <= 0 means unbounded).
func (b *BranchManager) Log(ctx context.Context, from string, limit int) ([]*Commit, error) {
	if from == "" {
		from = headKey
	}
	hash, err := b.refs.ResolveRef(ctx, from)
	if err != nil {
		return nil, err
	}

	var history []*Commit
	for hash != "" {
		if limit > 0 && len(history) >= limit {
			break
		}
		commit, err := b.commits.Load(ctx, hash)
		if err != nil {
			return nil, err
		}
		history = append(history, commit)
		if len(commit.Parents) == 0 {
			break
		}
		hash = commit.Parents[0]
	}
	return history, nil
}
