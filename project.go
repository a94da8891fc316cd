package semrel

import (
	"fmt"
	"sync"

	"github.com/go-git/go-git/v5"
)

// Project ties a Git repository to its release configuration and answers
// the central question: what is the next version?
type Project struct {
	git        *GitProject
	config     Config
	parser     CommitParser
	translator *TagTranslator

	historyOnce sync.Once
	history     *History
	historyErr  error
}

// NewProject builds a Project over an open repository. The configuration is
// validated implicitly: translator and parser construction fail on bad
// settings.
func NewProject(repo *git.Repository, config Config) (*Project, error) {
	translator, err := config.NewTagTranslator()
	if err != nil {
		return nil, err
	}
	parser, err := config.NewCommitParser()
	if err != nil {
		return nil, err
	}
	return &Project{
		git:        NewGitProject(repo),
		config:     config,
		parser:     parser,
		translator: translator,
	}, nil
}

// OpenProject opens the repository at path and builds a Project over it.
func OpenProject(path string, config Config) (*Project, error) {
	repo, err := OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return NewProject(repo, config)
}

// Translator returns the tag translator in use.
func (p *Project) Translator() *TagTranslator {
	return p.translator
}

// History reconstructs the release history lazily. The underlying tag list
// is read once; later calls reuse the same History.
func (p *Project) History() (*History, error) {
	p.historyOnce.Do(func() {
		tags, err := p.git.Tags()
		if err != nil {
			p.historyErr = err
			return
		}
		p.history = NewHistory(p.git, p.translator, tags)
	})
	return p.history, p.historyErr
}

// CalculateOptions tune a next-version calculation.
type CalculateOptions struct {
	// Prerelease requests a prerelease result.
	Prerelease bool

	// PrereleaseToken overrides the token resolved from the branch
	// configuration.
	PrereleaseToken string

	// BuildMetadata is appended to the result when non-empty.
	BuildMetadata string

	// Strict fails on a no-op calculation instead of returning the last
	// version unchanged.
	Strict bool
}

// CalculateNextVersion parses every commit since the last release on the
// current branch and runs the next-version algorithm over the results.
//
// The prerelease token comes from the branch configuration unless
// overridden. A branch outside every release group is only an error when a
// prerelease was requested; a full release does not need a token, so the
// default stands in for filtering purposes.
func (p *Project) CalculateNextVersion(opts CalculateOptions) (Version, error) {
	token := opts.PrereleaseToken
	if token == "" {
		resolved, err := p.resolveBranchToken()
		if err != nil {
			if opts.Prerelease {
				return Version{}, err
			}
			resolved = DefaultPrereleaseToken
		}
		token = resolved
	}

	history, err := p.History()
	if err != nil {
		return Version{}, err
	}
	defaultVersion, err := p.config.DefaultInitialVersion(p.translator)
	if err != nil {
		return Version{}, err
	}

	// Prereleases from other tokens belong to other branches' sequences and
	// must not shadow this one.
	lastVersion := defaultVersion
	stopAt := ""
	if release, ok := history.LastRelease(ExcludePrereleasesExceptToken(token)); ok {
		lastVersion = release.Version
		stopAt = release.Target
	}
	lastFullVersion := defaultVersion
	if release, ok := history.LastRelease(ExcludePrereleases); ok {
		lastFullVersion = release.Version
	}

	head, err := p.git.Head()
	if err != nil {
		return Version{}, err
	}
	commits, err := history.UnreleasedCommits(head, stopAt)
	if err != nil {
		return Version{}, err
	}

	results := make([]ParseResult, 0, len(commits))
	for _, commit := range commits {
		results = append(results, p.parser.Parse(commit)...)
	}

	return NextVersion(NextVersionOptions{
		LastVersion:      lastVersion,
		LastFullVersion:  lastFullVersion,
		Commits:          results,
		Prerelease:       opts.Prerelease,
		PrereleaseToken:  token,
		MajorOnZero:      p.config.MajorOnZero,
		AllowZeroVersion: p.config.AllowZeroVersion,
		BuildMetadata:    opts.BuildMetadata,
		Strict:           opts.Strict,
	})
}

func (p *Project) resolveBranchToken() (string, error) {
	branch, err := p.git.CurrentBranch()
	if err != nil {
		return "", err
	}
	return p.config.PrereleaseTokenFor(branch)
}
