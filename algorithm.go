package semrel

import (
	"fmt"
	"log/slog"
)

// DetermineBump aggregates the bump levels of a set of parse results into
// the single highest level. ParseError entries contribute nothing, so one
// malformed commit never aborts processing of the rest of the history.
func DetermineBump(results []ParseResult) LevelBump {
	level := NoRelease
	for _, result := range results {
		if parsed, ok := result.(ParsedCommit); ok {
			level = maxBump(level, parsed.Bump)
		}
	}
	return level
}

// NextVersionOptions are the inputs to the next-version algorithm.
type NextVersionOptions struct {
	// LastVersion is the version of the most recent release visible to the
	// caller, or the default initial version when no release exists.
	LastVersion Version

	// LastFullVersion is the most recent non-prerelease release, or the
	// default initial version. Only consulted when LastVersion is a
	// prerelease.
	LastFullVersion Version

	// Commits are the parsed results of every commit since the last
	// release.
	Commits []ParseResult

	// Prerelease requests that the result be a prerelease using
	// PrereleaseToken (DefaultPrereleaseToken when empty).
	Prerelease      bool
	PrereleaseToken string

	// MajorOnZero, when false, absorbs breaking changes into the minor
	// digit while the major digit is pinned at 0. AllowZeroVersion, when
	// false, promotes any qualifying change on a 0.x version straight to
	// 1.0.0.
	MajorOnZero      bool
	AllowZeroVersion bool

	// BuildMetadata, when non-empty, is appended to every returned
	// version.
	BuildMetadata string

	// Strict makes a no-op calculation fail with ErrNoVersionBump (or
	// ErrPrereleaseNotEnabled) instead of returning LastVersion unchanged.
	Strict bool
}

// NextVersion computes the single next version from the parsed commit
// history, the prior releases and the configuration. The procedure is
// deterministic and evaluates its rules in a fixed order:
//
//  1. aggregate the highest bump across the parsed commits
//  2. guard against no-op runs and prerelease-only bumps without opt-in
//  3. apply the zero-version policy (force MAJOR, or cap at MINOR)
//  4. when the last version is a prerelease, either continue its revision
//     sequence, finalize it, or fall back to the last full release as the
//     bump baseline — comparing the already-capped level against the diff
//     between the last version and the last full release
//  5. bump the baseline and convert to a prerelease or full release
func NextVersion(opts NextVersionOptions) (Version, error) {
	token := opts.PrereleaseToken
	if token == "" {
		token = DefaultPrereleaseToken
	}
	withBuild := func(v Version) Version {
		if opts.BuildMetadata == "" {
			return v
		}
		return v.WithBuildMetadata(opts.BuildMetadata)
	}

	level := DetermineBump(opts.Commits)
	slog.Debug("aggregated bump level", "level", level, "commits", len(opts.Commits))

	if level == NoRelease {
		if opts.Strict {
			return Version{}, fmt.Errorf("%w: no version bump detected from %d commits",
				ErrNoVersionBump, len(opts.Commits))
		}
		return withBuild(opts.LastVersion), nil
	}

	if level == PrereleaseRevision && !opts.Prerelease {
		if opts.Strict {
			return Version{}, ErrPrereleaseNotEnabled
		}
		return withBuild(opts.LastVersion), nil
	}

	// Zero-version policy. The MINOR cap cannot lower a prerelease-revision
	// bump because PRERELEASE_REVISION already orders below MINOR.
	if opts.LastVersion.Major == 0 {
		if !opts.AllowZeroVersion {
			level = Major
		} else if !opts.MajorOnZero {
			level = minBump(level, Minor)
		}
	}

	baseline := opts.LastVersion
	if opts.LastVersion.IsPrerelease() {
		// The diff is measured purely between the last version and the
		// last full release, independent of the level requested above.
		diff := opts.LastVersion.Diff(opts.LastFullVersion)
		if level <= diff {
			// The new change does not exceed what the prerelease already
			// represents.
			if opts.Prerelease {
				revision := uint64(1)
				if opts.LastVersion.PrereleaseToken == token {
					revision = opts.LastVersion.PrereleaseRevision + 1
				}
				return withBuild(opts.LastVersion.WithPrerelease(token, revision)), nil
			}
			return withBuild(opts.LastVersion.Finalize()), nil
		}
		// The change exceeds the scope of the existing prerelease: its
		// state is consumed and a fresh bump starts from the last full
		// release.
		baseline = opts.LastFullVersion
	}

	next := baseline.Bump(level)
	if opts.Prerelease {
		// Revision 1, always: the baseline was just bumped, so there is no
		// revision sequence to continue.
		next = next.WithPrerelease(token, 1)
	} else {
		next = next.Finalize()
	}
	slog.Debug("computed next version", "baseline", baseline, "level", level, "next", next)
	return withBuild(next), nil
}
