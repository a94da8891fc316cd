package semrel

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Tag is a VCS tag as reported by the repository collaborator. Target is the
// hash of the commit the tag ultimately points at (the dereferenced commit
// for annotated tags).
type Tag struct {
	Name       string
	Target     string
	Tagger     Signature
	TaggedDate time.Time
}

// Release is a read-only historical record reconstructed from a tag whose
// name matches the configured tag format.
type Release struct {
	Version    Version
	TagName    string
	Target     string
	Tagger     Signature
	Committer  Signature
	TaggedDate time.Time
}

// VersionFilter reports whether a release version should be skipped when
// looking for the last release.
type VersionFilter func(Version) bool

// ExcludePrereleases skips every prerelease version.
func ExcludePrereleases(v Version) bool { return v.IsPrerelease() }

// ExcludePrereleasesExceptToken skips prereleases carrying a different token
// than the one configured for the current branch.
func ExcludePrereleasesExceptToken(token string) VersionFilter {
	return func(v Version) bool {
		return v.IsPrerelease() && v.PrereleaseToken != token
	}
}

// ReleasesFromTags recognises which tags are releases according to the tag
// format and orders them descending by version. Tags that do not match the
// format are silently skipped: not every tag is a release tag.
func ReleasesFromTags(tags []Tag, translator *TagTranslator) []Release {
	releases := make([]Release, 0, len(tags))
	for _, tag := range tags {
		version, ok := translator.VersionFromTag(tag.Name)
		if !ok {
			slog.Debug("skipping non-release tag", "tag", tag.Name)
			continue
		}
		releases = append(releases, Release{
			Version:    version,
			TagName:    tag.Name,
			Target:     tag.Target,
			Tagger:     tag.Tagger,
			Committer:  tag.Tagger,
			TaggedDate: tag.TaggedDate,
		})
	}
	sort.Slice(releases, func(i, j int) bool {
		return releases[i].Version.GreaterThan(releases[j].Version)
	})
	return releases
}

// CommitReader looks up raw commits by hash. Implemented by GitProject.
type CommitReader interface {
	Commit(hash string) (Commit, error)
}

// History reconstructs the release history of a repository snapshot and
// answers "last release" and "commits since last release" queries. The
// snapshot is assumed immutable for the lifetime of the History, so
// traversal results are memoized; the cache is safe for concurrent readers.
type History struct {
	reader   CommitReader
	releases []Release

	mu    sync.Mutex
	walks map[string][]Commit
}

// NewHistory builds a History over the given tags. Tags not matching the
// translator's format are ignored.
func NewHistory(reader CommitReader, translator *TagTranslator, tags []Tag) *History {
	return &History{
		reader:   reader,
		releases: ReleasesFromTags(tags, translator),
		walks:    make(map[string][]Commit),
	}
}

// Releases returns every recognised release, ordered descending by version.
func (h *History) Releases() []Release {
	return h.releases
}

// LastRelease returns the most recent release whose version is not skipped
// by the filter. A nil filter accepts everything.
func (h *History) LastRelease(skip VersionFilter) (Release, bool) {
	for _, release := range h.releases {
		if skip != nil && skip(release.Version) {
			continue
		}
		return release, true
	}
	return Release{}, false
}

// UnreleasedCommits returns every commit reachable from head via parent
// edges, stopping at (and not including) the commit tagged by the release
// at stopAt. An empty stopAt walks the entire history.
//
// The walk is depth first with parents pushed in source order, so the
// rightmost parent of a merge is explored before the leftmost; each commit
// is visited exactly once, on first encounter. A missing commit is an
// invariant violation and fails with ErrInternal.
func (h *History) UnreleasedCommits(head, stopAt string) ([]Commit, error) {
	cacheKey := head + "|" + stopAt

	h.mu.Lock()
	cached, ok := h.walks[cacheKey]
	h.mu.Unlock()
	if ok {
		return cached, nil
	}

	var commits []Commit
	visited := map[string]bool{}
	stack := []string{head}
	for len(stack) > 0 {
		hash := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[hash] {
			continue
		}
		visited[hash] = true
		if hash == stopAt {
			continue
		}

		commit, err := h.reader.Commit(hash)
		if err != nil {
			return nil, fmt.Errorf("%w: commit %s expected in history: %v", ErrInternal, hash, err)
		}
		commits = append(commits, commit)
		stack = append(stack, commit.Parents...)
	}

	h.mu.Lock()
	h.walks[cacheKey] = commits
	h.mu.Unlock()
	return commits, nil
}
