package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error format used throughout the CLI:
//
//	Error: <what went wrong>
//	  Context: <relevant details>
//	  Fix: <what the caller should do>
//
// Every type here also implements SVNErrorCode() so a protocol layer can map
// it 1:1 onto an SVN error code without string-matching Error().

// SVNError is implemented by every structured error type in this file.
type SVNError interface {
	error
	SVNErrorCode() string
}

// =============================================================================
// Sentinel errors, for errors.Is callers that don't need the struct fields.
// =============================================================================

var (
	ErrOutOfDate          = errors.New("path is out of date")
	ErrNotFile            = errors.New("path is not a file")
	ErrPathAlreadyLocked  = errors.New("path is already locked")
	ErrBadLockToken       = errors.New("lock token does not match")
	ErrNoSuchLock         = errors.New("no such lock")
	ErrNoSuchRevision     = errors.New("no such revision")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrAlreadyExists      = errors.New("entry already exists")
	ErrNotUpToDate        = errors.New("working copy is not up to date")
	ErrIncompleteData     = errors.New("incomplete data")
	ErrReposHookFailure   = errors.New("property validation failed")
	ErrCancelled          = errors.New("operation cancelled")
)

// =============================================================================
// Structured error types
// =============================================================================

// OutOfDateError is returned when a lock or commit precondition references a
// path at a revision older than its last change.
type OutOfDateError struct {
	Path            string
	RequestedRev    int64
	LastChangeRev   int64
	PathMissing     bool
}

func (e *OutOfDateError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Error: '%s' is out of date", e.Path))
	if e.PathMissing {
		b.WriteString("\n  Context: the path does not exist at the latest revision")
	} else {
		b.WriteString(fmt.Sprintf("\n  Context: requested at r%d, but last changed at r%d", e.RequestedRev, e.LastChangeRev))
	}
	b.WriteString("\n  Fix: update the working copy to the latest revision and retry")
	return b.String()
}
func (e *OutOfDateError) Unwrap() error    { return ErrOutOfDate }
func (e *OutOfDateError) SVNErrorCode() string { return "FS_OUT_OF_DATE" }

// NotFileError is returned when a file-only operation (lock) targets a directory.
type NotFileError struct {
	Path string
}

func (e *NotFileError) Error() string {
	return fmt.Sprintf("Error: '%s' is not a file\n  Context: locks apply only to files\n  Fix: target a file path, not a directory", e.Path)
}
func (e *NotFileError) Unwrap() error    { return ErrNotFile }
func (e *NotFileError) SVNErrorCode() string { return "FS_NOT_FILE" }

// PathAlreadyLockedError is returned by a non-forced lock on an already-locked path.
type PathAlreadyLockedError struct {
	Path  string
	Owner string
}

func (e *PathAlreadyLockedError) Error() string {
	return fmt.Sprintf("Error: '%s' is already locked\n  Context: held by %s\n  Fix: pass force=true to steal the lock, or ask the owner to release it", e.Path, e.Owner)
}
func (e *PathAlreadyLockedError) Unwrap() error    { return ErrPathAlreadyLocked }
func (e *PathAlreadyLockedError) SVNErrorCode() string { return "FS_PATH_ALREADY_LOCKED" }

// BadLockTokenError is returned when an operation supplies a token that does
// not match the path's current lock, or omits a token a locked descendant requires.
type BadLockTokenError struct {
	Path string
}

func (e *BadLockTokenError) Error() string {
	return fmt.Sprintf("Error: lock token for '%s' does not match\n  Context: the path is locked under a different token\n  Fix: supply the token returned by lock(), or break the lock administratively", e.Path)
}
func (e *BadLockTokenError) Unwrap() error    { return ErrBadLockToken }
func (e *BadLockTokenError) SVNErrorCode() string { return "FS_BAD_LOCK_TOKEN" }

// NoSuchLockError is returned by unlock when the path has no lock and breakLock is false.
type NoSuchLockError struct {
	Path string
}

func (e *NoSuchLockError) Error() string {
	return fmt.Sprintf("Error: no lock on '%s'\n  Context: the path is not currently locked\n  Fix: nothing to do, the path is already unlocked", e.Path)
}
func (e *NoSuchLockError) Unwrap() error    { return ErrNoSuchLock }
func (e *NoSuchLockError) SVNErrorCode() string { return "FS_NO_SUCH_LOCK" }

// NoSuchRevisionError is returned when a revision id or Git commit has no mapping.
type NoSuchRevisionError struct {
	Requested string
}

func (e *NoSuchRevisionError) Error() string {
	return fmt.Sprintf("Error: no such revision '%s'\n  Context: the revision store has no entry for this id/commit\n  Fix: query latest() for the current range", e.Requested)
}
func (e *NoSuchRevisionError) Unwrap() error    { return ErrNoSuchRevision }
func (e *NoSuchRevisionError) SVNErrorCode() string { return "FS_NO_SUCH_REVISION" }

// EntryNotFoundError is returned when a commit-builder operation references
// a path missing from the current directory frame.
type EntryNotFoundError struct {
	Path string
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("Error: entry '%s' not found\n  Context: no such name in the current directory\n  Fix: check the path against the latest revision's tree", e.Path)
}
func (e *EntryNotFoundError) Unwrap() error    { return ErrEntryNotFound }
func (e *EntryNotFoundError) SVNErrorCode() string { return "ENTRY_NOT_FOUND" }

// AlreadyExistsError is returned when addDir collides with an existing name.
type AlreadyExistsError struct {
	Path string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("Error: '%s' already exists\n  Context: an entry with this name is already present\n  Fix: open the existing directory, or choose a different name", e.Path)
}
func (e *AlreadyExistsError) Unwrap() error    { return ErrAlreadyExists }
func (e *AlreadyExistsError) SVNErrorCode() string { return "FS_ALREADY_EXISTS" }

// NotUpToDateError is returned when saveFile's modify flag disagrees with
// whether the target name currently exists.
type NotUpToDateError struct {
	Path string
}

func (e *NotUpToDateError) Error() string {
	return fmt.Sprintf("Error: '%s' is not up to date\n  Context: the add/modify flag does not match the entry's current presence\n  Fix: re-read the directory and retry with the correct flag", e.Path)
}
func (e *NotUpToDateError) Unwrap() error    { return ErrNotUpToDate }
func (e *NotUpToDateError) SVNErrorCode() string { return "WC_NOT_UP_TO_DATE" }

// IncompleteDataError is returned when an added file receives no content.
type IncompleteDataError struct {
	Path string
}

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("Error: incomplete data for '%s'\n  Context: no content was supplied for a newly added file\n  Fix: the delta consumer must provide a blob oid before commit()", e.Path)
}
func (e *IncompleteDataError) Unwrap() error    { return ErrIncompleteData }
func (e *IncompleteDataError) SVNErrorCode() string { return "INCOMPLETE_DATA" }

// ReposHookFailureError is returned when property validation finds a
// mismatch between the client's asserted properties and the tree view's
// derived properties.
type ReposHookFailureError struct {
	Path     string
	Expected map[string]string
	Actual   map[string]string
}

func (e *ReposHookFailureError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Error: property validation failed for '%s'", e.Path))
	b.WriteString("\n  Context: expected ")
	b.WriteString(formatProps(e.Expected))
	b.WriteString(", actual ")
	b.WriteString(formatProps(e.Actual))
	b.WriteString("\n  Fix: set svn:ignore (and friends) to match .gitignore / .gitattributes / .tgitconfig in this directory")
	return b.String()
}
func (e *ReposHookFailureError) Unwrap() error    { return ErrReposHookFailure }
func (e *ReposHookFailureError) SVNErrorCode() string { return "REPOS_HOOK_FAILURE" }

func formatProps(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	var parts []string
	for k, v := range m {
		parts = append(parts, fmt.Sprintf("%s=%q", k, v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// CancelledError is returned when closeDir is asked to close an empty
// directory frame; Git cannot represent an empty tree as an entry.
type CancelledError struct {
	Path string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("Error: cannot close '%s'\n  Context: the directory has no entries and Git cannot represent an empty tree\n  Fix: add at least one entry before closing, or delete the directory instead", e.Path)
}
func (e *CancelledError) Unwrap() error    { return ErrCancelled }
func (e *CancelledError) SVNErrorCode() string { return "CANCELLED" }

// =============================================================================
// Error-type checking helpers
// =============================================================================

func IsOutOfDate(err error) bool         { var e *OutOfDateError; return errors.As(err, &e) }
func IsNotFile(err error) bool           { var e *NotFileError; return errors.As(err, &e) }
func IsPathAlreadyLocked(err error) bool { var e *PathAlreadyLockedError; return errors.As(err, &e) }
func IsBadLockToken(err error) bool      { var e *BadLockTokenError; return errors.As(err, &e) }
func IsNoSuchLock(err error) bool        { var e *NoSuchLockError; return errors.As(err, &e) }
func IsNoSuchRevision(err error) bool    { var e *NoSuchRevisionError; return errors.As(err, &e) }
func IsEntryNotFound(err error) bool     { var e *EntryNotFoundError; return errors.As(err, &e) }
func IsAlreadyExists(err error) bool     { var e *AlreadyExistsError; return errors.As(err, &e) }
func IsNotUpToDate(err error) bool       { var e *NotUpToDateError; return errors.As(err, &e) }
func IsIncompleteData(err error) bool    { var e *IncompleteDataError; return errors.As(err, &e) }
func IsReposHookFailure(err error) bool  { var e *ReposHookFailureError; return errors.As(err, &e) }
func IsCancelled(err error) bool         { var e *CancelledError; return errors.As(err, &e) }

// SVNErrorCodeFor returns the SVN error code for any structured error in this
// file, or "" if err does not implement SVNError.
func SVNErrorCodeFor(err error) string {
	var se SVNError
	if errors.As(err, &se) {
		return se.SVNErrorCode()
	}
	return ""
}
