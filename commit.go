package semrel

import (
	"fmt"
	"strings"
	"time"
)

// Signature identifies the author or committer of a commit or tag.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Commit is the raw commit material consumed from the version control
// collaborator. Parents are listed in source order; the first entry is the
// first parent.
type Commit struct {
	Hash      string
	Message   string
	Author    Signature
	Committer Signature
	Parents   []string
}

// ShortHash returns the abbreviated commit hash used in log output.
func (c Commit) ShortHash() string {
	if len(c.Hash) < 8 {
		return c.Hash
	}
	return c.Hash[:8]
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return subject
}

// ParseResult is either a ParsedCommit or a ParseError. Parsing never fails
// with an error return; malformed commits become ParseError values and the
// caller decides what to do with them.
type ParseResult interface {
	SourceCommit() Commit
}

// ParsedCommit is the structured classification of one logical change. A
// single VCS commit can produce several ParsedCommits when squash splitting
// is enabled.
type ParsedCommit struct {
	Bump                 LevelBump
	Type                 string
	Scope                string
	Descriptions         []string
	BreakingDescriptions []string
	LinkedIssues         []string
	LinkedMergeRequest   string
	Commit               Commit
}

// SourceCommit returns the commit the result was parsed from.
func (p ParsedCommit) SourceCommit() Commit { return p.Commit }

// ParseError records a commit that could not be classified. It satisfies the
// error interface and unwraps to ErrCommitParse, but the parsers only ever
// return it as a value.
type ParseError struct {
	Commit Commit
	Reason string
}

// SourceCommit returns the commit that failed to parse.
func (e ParseError) SourceCommit() Commit { return e.Commit }

func (e ParseError) Error() string {
	return fmt.Sprintf("commit %s: %s", e.Commit.ShortHash(), e.Reason)
}

// Unwrap allows errors.Is(err, ErrCommitParse) matching when a caller
// chooses to raise a ParseError.
func (e ParseError) Unwrap() error { return ErrCommitParse }

// CommitParser converts one raw commit into its parsed results. A slice is
// returned because a squashed merge commit can bundle several logical
// changes; most commits produce exactly one result. An empty slice means the
// commit was deliberately ignored (for example a merge commit).
type CommitParser interface {
	Parse(commit Commit) []ParseResult
}

// parseParagraphs splits a text block into paragraphs on blank lines,
// collapsing single line breaks into spaces. Carriage returns are removed
// first so Windows line endings behave the same.
func parseParagraphs(text string) []string {
	var paragraphs []string
	for _, paragraph := range strings.Split(strings.ReplaceAll(text, "\r", ""), "\n\n") {
		condensed := strings.TrimSpace(strings.ReplaceAll(paragraph, "\n", " "))
		if condensed != "" {
			paragraphs = append(paragraphs, condensed)
		}
	}
	return paragraphs
}
