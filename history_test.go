package semrel

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"
)

func mustTranslator(t *testing.T) *TagTranslator {
	t.Helper()
	translator, err := NewTagTranslator(DefaultTagFormat)
	require.NoError(t, err)
	return translator
}

func TestReleasesFromTags(t *testing.T) {
	translator := mustTranslator(t)
	when := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tags := []Tag{
		{Name: "v1.0.0", Target: "aaa", TaggedDate: when},
		{Name: "v2.0.0-rc.1", Target: "bbb", TaggedDate: when},
		{Name: "checkpoint", Target: "ccc", TaggedDate: when},
		{Name: "v2.0.0", Target: "ddd", TaggedDate: when},
		{Name: "v0.9.0", Target: "eee", TaggedDate: when},
	}

	releases := ReleasesFromTags(tags, translator)

	t.Run("Non-release tags are skipped", func(t *testing.T) {
		require.Len(t, releases, 4)
		for _, release := range releases {
			require.NotEqual(t, "checkpoint", release.TagName)
		}
	})

	t.Run("Ordered descending by version", func(t *testing.T) {
		var got []string
		for _, release := range releases {
			got = append(got, release.Version.String())
		}
		require.Equal(t, []string{"2.0.0", "2.0.0-rc.1", "1.0.0", "0.9.0"}, got)
	})
}

func TestLastRelease(t *testing.T) {
	translator := mustTranslator(t)
	history := NewHistory(nil, translator, []Tag{
		{Name: "v1.0.0", Target: "aaa"},
		{Name: "v1.1.0-rc.2", Target: "bbb"},
		{Name: "v1.1.0-beta.1", Target: "ccc"},
	})

	t.Run("Unfiltered returns the highest version", func(t *testing.T) {
		release, ok := history.LastRelease(nil)
		require.True(t, ok)
		require.Equal(t, "1.1.0-rc.2", release.Version.String())
	})

	t.Run("Excluding prereleases", func(t *testing.T) {
		release, ok := history.LastRelease(ExcludePrereleases)
		require.True(t, ok)
		require.Equal(t, "1.0.0", release.Version.String())
	})

	t.Run("Excluding foreign prerelease tokens", func(t *testing.T) {
		release, ok := history.LastRelease(ExcludePrereleasesExceptToken("beta"))
		require.True(t, ok)
		require.Equal(t, "1.1.0-beta.1", release.Version.String())
	})

	t.Run("Everything filtered out", func(t *testing.T) {
		_, ok := history.LastRelease(func(Version) bool { return true })
		require.False(t, ok)
	})
}

func TestUnreleasedCommits(t *testing.T) {
	repo, err := testRepoCreate()
	require.NoError(t, err)

	// Build a small history with a merge:
	//
	//   base --- mid ---------- merge (HEAD)
	//       \                 /
	//        `----- side ----'
	base, err := testCommit(repo, "base.txt", "feat: base")
	require.NoError(t, err)
	mid, err := testCommit(repo, "mid.txt", "feat: mid")
	require.NoError(t, err)
	side, err := testMergeCommit(repo, "side.txt", "fix: side work",
		[]plumbing.Hash{base})
	require.NoError(t, err)
	merge, err := testMergeCommit(repo, "merge.txt", "Merge side work",
		[]plumbing.Hash{mid, side})
	require.NoError(t, err)

	project := NewGitProject(repo)
	history := NewHistory(project, mustTranslator(t), nil)

	messagesOf := func(commits []Commit) []string {
		var messages []string
		for _, commit := range commits {
			messages = append(messages, commit.Message)
		}
		return messages
	}

	t.Run("Depth first, rightmost parent explored first", func(t *testing.T) {
		commits, err := history.UnreleasedCommits(merge.String(), "")
		require.NoError(t, err)
		require.Equal(t, []string{
			"Merge side work",
			"fix: side work",
			"feat: base",
			"feat: mid",
		}, messagesOf(commits))
	})

	t.Run("Walk stops at the last release", func(t *testing.T) {
		commits, err := history.UnreleasedCommits(merge.String(), base.String())
		require.NoError(t, err)
		require.Equal(t, []string{
			"Merge side work",
			"fix: side work",
			"feat: mid",
		}, messagesOf(commits))
	})

	t.Run("Head equal to the last release yields nothing", func(t *testing.T) {
		commits, err := history.UnreleasedCommits(base.String(), base.String())
		require.NoError(t, err)
		require.Empty(t, commits)
	})

	t.Run("Missing commit is an internal error", func(t *testing.T) {
		_, err := history.UnreleasedCommits(
			"0000000000000000000000000000000000000001", "")
		require.ErrorIs(t, err, ErrInternal)
	})

	t.Run("Repeated walks reuse the cached result", func(t *testing.T) {
		first, err := history.UnreleasedCommits(merge.String(), base.String())
		require.NoError(t, err)
		second, err := history.UnreleasedCommits(merge.String(), base.String())
		require.NoError(t, err)
		require.Equal(t, first, second)
	})
}
