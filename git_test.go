package semrel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGitProject(t *testing.T) {
	repo, err := testRepoCreate()
	require.NoError(t, err)

	first, err := testCommit(repo, "a.txt", "feat: first")
	require.NoError(t, err)
	second, err := testCommit(repo, "b.txt", "fix: second")
	require.NoError(t, err)

	require.NoError(t, testLightweightTag(repo, "v1.0.0", first))
	require.NoError(t, testAnnotatedTag(repo, "v1.1.0", second))

	project := NewGitProject(repo)

	t.Run("Head", func(t *testing.T) {
		head, err := project.Head()
		require.NoError(t, err)
		require.Equal(t, second.String(), head)
	})

	t.Run("Current branch", func(t *testing.T) {
		branch, err := project.CurrentBranch()
		require.NoError(t, err)
		require.Equal(t, "master", branch)
	})

	t.Run("Commit lookup", func(t *testing.T) {
		commit, err := project.Commit(second.String())
		require.NoError(t, err)
		require.Equal(t, "fix: second", commit.Message)
		require.Equal(t, []string{first.String()}, commit.Parents)
		require.Equal(t, "test", commit.Author.Name)
	})

	t.Run("Unknown commit", func(t *testing.T) {
		_, err := project.Commit("0000000000000000000000000000000000000001")
		require.Error(t, err)
	})

	t.Run("Tags dereference to commits", func(t *testing.T) {
		tags, err := project.Tags()
		require.NoError(t, err)
		require.Len(t, tags, 2)

		byName := map[string]Tag{}
		for _, tag := range tags {
			byName[tag.Name] = tag
		}

		lightweight := byName["v1.0.0"]
		require.Equal(t, first.String(), lightweight.Target)
		require.Equal(t, "test", lightweight.Tagger.Name)

		annotated := byName["v1.1.0"]
		require.Equal(t, second.String(), annotated.Target)
		require.Equal(t, "test", annotated.Tagger.Name)
		require.False(t, annotated.TaggedDate.IsZero())
	})
}
