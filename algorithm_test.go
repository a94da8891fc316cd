package semrel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func bumpsOf(levels ...LevelBump) []ParseResult {
	results := make([]ParseResult, len(levels))
	for i, level := range levels {
		results[i] = ParsedCommit{Bump: level}
	}
	return results
}

func TestDetermineBump(t *testing.T) {
	t.Run("Highest level wins", func(t *testing.T) {
		require.Equal(t, Minor, DetermineBump(bumpsOf(Patch, Minor, NoRelease)))
		require.Equal(t, Major, DetermineBump(bumpsOf(Patch, Major, Minor)))
	})

	t.Run("Parse errors contribute nothing", func(t *testing.T) {
		results := append(bumpsOf(Patch), ParseError{Reason: "nonsense"})
		require.Equal(t, Patch, DetermineBump(results))

		require.Equal(t, NoRelease, DetermineBump([]ParseResult{
			ParseError{Reason: "nonsense"},
		}))
	})

	t.Run("Empty input is no release", func(t *testing.T) {
		require.Equal(t, NoRelease, DetermineBump(nil))
	})
}

func TestNextVersion(t *testing.T) {
	base := func() NextVersionOptions {
		return NextVersionOptions{
			LastVersion:      MustParse("1.1.1"),
			LastFullVersion:  MustParse("1.1.1"),
			MajorOnZero:      true,
			AllowZeroVersion: true,
		}
	}

	t.Run("Feature on a full release", func(t *testing.T) {
		opts := base()
		opts.Commits = bumpsOf(Minor)
		next, err := NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, "1.2.0", next.String())
	})

	t.Run("Fix continues an active prerelease", func(t *testing.T) {
		opts := base()
		opts.LastVersion = MustParse("1.2.0-alpha.2")
		opts.Commits = bumpsOf(Patch)
		opts.Prerelease = true
		opts.PrereleaseToken = "alpha"
		next, err := NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, "1.2.0-alpha.3", next.String())
	})

	t.Run("Fix finalizes an active prerelease without opt-in", func(t *testing.T) {
		opts := base()
		opts.LastVersion = MustParse("1.2.0-alpha.2")
		opts.Commits = bumpsOf(Patch)
		next, err := NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, "1.2.0", next.String())
	})

	t.Run("Token change restarts the revision sequence", func(t *testing.T) {
		opts := base()
		opts.LastVersion = MustParse("1.2.0-alpha.2")
		opts.Commits = bumpsOf(Patch)
		opts.Prerelease = true
		opts.PrereleaseToken = "beta"
		next, err := NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, "1.2.0-beta.1", next.String())
	})

	t.Run("Breaking change exceeds the prerelease scope", func(t *testing.T) {
		opts := base()
		opts.LastVersion = MustParse("1.2.0-alpha.2")
		opts.Commits = bumpsOf(Major)

		next, err := NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, "2.0.0", next.String())

		opts.Prerelease = true
		opts.PrereleaseToken = "alpha"
		next, err = NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, "2.0.0-alpha.1", next.String())
	})

	t.Run("Default prerelease token", func(t *testing.T) {
		opts := base()
		opts.Commits = bumpsOf(Minor)
		opts.Prerelease = true
		next, err := NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, "1.2.0-rc.1", next.String())
	})

	t.Run("No qualifying commits", func(t *testing.T) {
		opts := base()
		opts.Commits = []ParseResult{ParseError{Reason: "nonsense"}}

		next, err := NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, opts.LastVersion, next)

		opts.Strict = true
		_, err = NextVersion(opts)
		require.ErrorIs(t, err, ErrNoVersionBump)
	})

	t.Run("Prerelease-only bump without opt-in", func(t *testing.T) {
		opts := base()
		opts.Commits = bumpsOf(PrereleaseRevision)

		next, err := NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, opts.LastVersion, next)

		opts.Strict = true
		_, err = NextVersion(opts)
		require.ErrorIs(t, err, ErrPrereleaseNotEnabled)
	})

	t.Run("Build metadata on every path", func(t *testing.T) {
		opts := base()
		opts.BuildMetadata = "build.5"

		next, err := NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, "1.1.1+build.5", next.String())

		opts.Commits = bumpsOf(Minor)
		next, err = NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, "1.2.0+build.5", next.String())
	})
}

func TestNextVersionZeroPolicy(t *testing.T) {
	base := func() NextVersionOptions {
		return NextVersionOptions{
			LastVersion:      MustParse("0.1.1"),
			LastFullVersion:  MustParse("0.1.1"),
			MajorOnZero:      true,
			AllowZeroVersion: true,
		}
	}

	t.Run("Major on zero honoured by default", func(t *testing.T) {
		opts := base()
		opts.Commits = bumpsOf(Major)
		next, err := NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, "1.0.0", next.String())
	})

	t.Run("Breaking change capped at minor", func(t *testing.T) {
		opts := base()
		opts.MajorOnZero = false
		opts.Commits = bumpsOf(Major)
		next, err := NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, "0.2.0", next.String())
	})

	t.Run("Patch unaffected by the minor cap", func(t *testing.T) {
		opts := base()
		opts.MajorOnZero = false
		opts.Commits = bumpsOf(Patch)
		next, err := NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, "0.1.2", next.String())
	})

	t.Run("Zero versions disallowed promotes to 1.0.0", func(t *testing.T) {
		opts := base()
		opts.AllowZeroVersion = false
		opts.Commits = bumpsOf(Patch)
		next, err := NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, "1.0.0", next.String())
	})

	t.Run("Policy does not apply past 1.0.0", func(t *testing.T) {
		opts := base()
		opts.LastVersion = MustParse("1.1.1")
		opts.LastFullVersion = MustParse("1.1.1")
		opts.MajorOnZero = false
		opts.Commits = bumpsOf(Major)
		next, err := NextVersion(opts)
		require.NoError(t, err)
		require.Equal(t, "2.0.0", next.String())
	})
}
