package semrel

import "errors"

// Sentinel errors for the version engine. Callers match against these with
// errors.Is; the wrapped message carries the human-readable detail.
var (
	// ErrInvalidVersion reports a string that does not satisfy the
	// semantic-version grammar, or a tag that was expected to match the
	// configured tag format but did not.
	ErrInvalidVersion = errors.New("invalid semantic version")

	// ErrInvalidTagFormat reports a tag format template that does not
	// contain exactly one {version} placeholder.
	ErrInvalidTagFormat = errors.New("invalid tag format")

	// ErrCommitParse is carried by ParseError values. The parsers never
	// return it directly; a malformed commit becomes a ParseError value and
	// the caller decides whether to treat it as an error.
	ErrCommitParse = errors.New("unable to parse commit")

	// ErrNoVersionBump reports a strict-mode next-version calculation that
	// found no releasable change.
	ErrNoVersionBump = errors.New("no release will be made")

	// ErrPrereleaseNotEnabled reports a strict-mode next-version calculation
	// where the only change was a prerelease revision but the caller did not
	// request a prerelease.
	ErrPrereleaseNotEnabled = errors.New("prerelease revision bump requires prerelease mode")

	// ErrNotAReleaseBranch reports a prerelease token lookup on a branch
	// that matches none of the configured release branch patterns.
	ErrNotAReleaseBranch = errors.New("branch is not in any configured release groups")

	// ErrInternal reports an invariant violation, such as a commit expected
	// to exist in history being missing. Always fatal.
	ErrInternal = errors.New("internal error")
)
