package semrel

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// OpenRepository opens a Git repository at the specified path
func OpenRepository(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
}

// GitProject adapts a go-git repository to the read-only views the version
// engine needs: tag listing, commit lookup by hash and HEAD resolution.
type GitProject struct {
	repo *git.Repository
}

// NewGitProject wraps an already opened repository.
func NewGitProject(repo *git.Repository) *GitProject {
	return &GitProject{repo: repo}
}

// Repository exposes the underlying go-git repository.
func (g *GitProject) Repository() *git.Repository {
	return g.repo
}

// Head returns the hash of the commit HEAD points at.
func (g *GitProject) Head() (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// CurrentBranch returns the short name of the checked-out branch. A detached
// HEAD has no branch and is reported as an error.
func (g *GitProject) CurrentBranch() (string, error) {
	head, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is detached at %s", head.Hash())
	}
	return head.Name().Short(), nil
}

// Tags lists every tag in the repository, dereferencing annotated tags to
// the commit they ultimately point at. For annotated tags the tagger and
// tagged date come from the tag object; lightweight tags carry no tagger, so
// the target commit's committer stands in.
func (g *GitProject) Tags() ([]Tag, error) {
	refs, err := g.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var tags []Tag
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}

		obj, err := g.repo.TagObject(ref.Hash())
		switch err {
		case nil:
			// Annotated tag
			tags = append(tags, Tag{
				Name:   ref.Name().Short(),
				Target: obj.Target.String(),
				Tagger: Signature{
					Name:  obj.Tagger.Name,
					Email: obj.Tagger.Email,
					When:  obj.Tagger.When,
				},
				TaggedDate: obj.Tagger.When,
			})
		case plumbing.ErrObjectNotFound:
			// Lightweight tag
			commit, err := g.repo.CommitObject(ref.Hash())
			if err != nil {
				return fmt.Errorf("resolving tag %s: %w", ref.Name().Short(), err)
			}
			tags = append(tags, Tag{
				Name:       ref.Name().Short(),
				Target:     commit.Hash.String(),
				Tagger:     toSignature(commit.Committer),
				TaggedDate: commit.Committer.When,
			})
		default:
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// Commit looks up a single commit by hash. Implements CommitReader.
func (g *GitProject) Commit(hash string) (Commit, error) {
	obj, err := g.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return Commit{}, fmt.Errorf("getting commit object %s: %w", hash, err)
	}
	return toCommit(obj), nil
}

func toCommit(obj *object.Commit) Commit {
	parents := make([]string, 0, obj.NumParents())
	for _, parent := range obj.ParentHashes {
		parents = append(parents, parent.String())
	}
	return Commit{
		Hash:      obj.Hash.String(),
		Message:   obj.Message,
		Author:    toSignature(obj.Author),
		Committer: toSignature(obj.Committer),
		Parents:   parents,
	}
}

func toSignature(sig object.Signature) Signature {
	return Signature{Name: sig.Name, Email: sig.Email, When: sig.When}
}
