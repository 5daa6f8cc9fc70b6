package dag

import "errors"

// Branch and ref errors carry fixed messages that callers string-match;
// the offending name travels on the struct, not in the message.

// InvalidBranchNameError reports a name outside the branch-name grammar.
type InvalidBranchNameError struct {
	Name string
}

func (e *InvalidBranchNameError) Error() string { return "Invalid branch name" }

// BranchAlreadyExistsError reports a create or rename onto a taken name.
type BranchAlreadyExistsError struct {
	Name string
}

func (e *BranchAlreadyExistsError) Error() string { return "Branch already exists" }

// BranchNotFoundError reports an operation on a missing branch.
type BranchNotFoundError struct {
	Name string
}

func (e *BranchNotFoundError) Error() string { return "Branch not found" }

// CannotDeleteCurrentBranchError reports an unforced delete of the branch
// HEAD points at.
type CannotDeleteCurrentBranchError struct {
	Name string
}

func (e *CannotDeleteCurrentBranchError) Error() string { return "Cannot delete current branch" }

// RefNotFoundError reports a ref that failed to resolve at some hop.
type RefNotFoundError struct {
	Name string
}

func (e *RefNotFoundError) Error() string { return "ref not found: " + e.Name }

// CommitNotFoundError reports a load of an unknown commit hash.
type CommitNotFoundError struct {
	Hash string
}

func (e *CommitNotFoundError) Error() string { return "commit not found: " + e.Hash }

// DetachedHeadError reports an operation that needs a current branch while
// HEAD points directly at a commit.
type DetachedHeadError struct{}

func (e *DetachedHeadError) Error() string { return "HEAD is detached" }

// IsNotFound reports whether err is any of the not-found errors
// (branch, ref, or commit), unwrapping as needed.
func IsNotFound(err error) bool {
	var bnf *BranchNotFoundError
	var rnf *RefNotFoundError
	var cnf *CommitNotFoundError
	return errors.As(err, &bnf) || errors.As(err, &rnf) || errors.As(err, &cnf)
}

// IsDetachedHead reports whether err is a DetachedHeadError.
func IsDetachedHead(err error) bool {
	var dh *DetachedHeadError
	return errors.As(err, &dh)
}
