package semrel

import (
	"context"
	"fmt"

	"github.com/google/go-github/v28/github"
	"golang.org/x/oauth2"
)

// ReleasePublisher publishes a computed version to a hosted VCS.
type ReleasePublisher interface {
	CreateRelease(ctx context.Context, tag, title, notes string, prerelease bool) (string, error)
}

// GitHubClient publishes releases to a GitHub repository.
type GitHubClient struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubClient builds a client for owner/repo authenticated with a
// personal access token.
func NewGitHubClient(ctx context.Context, owner, repo, token string) *GitHubClient {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &GitHubClient{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
	}
}

// CreateRelease creates a GitHub release for an existing tag and returns its
// HTML URL.
func (c *GitHubClient) CreateRelease(ctx context.Context, tag, title, notes string, prerelease bool) (string, error) {
	release, _, err := c.client.Repositories.CreateRelease(ctx, c.owner, c.repo, &github.RepositoryRelease{
		TagName:    github.String(tag),
		Name:       github.String(title),
		Body:       github.String(notes),
		Prerelease: github.Bool(prerelease),
	})
	if err != nil {
		return "", fmt.Errorf("creating release %s: %w", tag, err)
	}
	return release.GetHTMLURL(), nil
}

// CommitURL returns the web URL of a commit.
func (c *GitHubClient) CommitURL(hash string) string {
	return fmt.Sprintf("https://github.com/%s/%s/commit/%s", c.owner, c.repo, hash)
}

// CompareURL returns the web URL comparing two refs.
func (c *GitHubClient) CompareURL(from, to string) string {
	return fmt.Sprintf("https://github.com/%s/%s/compare/%s...%s", c.owner, c.repo, from, to)
}
