package semrel

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Changelog-friendly names for the well-known commit types.
var longTypeNames = map[string]string{
	"build":    "build system",
	"chore":    "chores",
	"ci":       "continuous integration",
	"docs":     "documentation",
	"feat":     "features",
	"fix":      "bug fixes",
	"perf":     "performance improvements",
	"refactor": "refactoring",
	"style":    "code style",
	"test":     "testing",
}

var (
	breakingRE       = regexp.MustCompile(`^BREAKING[ -]CHANGE:\s?(.*)`)
	mergeRequestRE   = regexp.MustCompile(`[\t ]\((?:pull request )?(?P<mr>[#!][0-9]+)\)[\t ]*$`)
	issueFooterRE    = regexp.MustCompile(`(?im)^(?:close[sd]?|fix(?:es|ed)?|resolve[sd]?):[\t ]+(?P<predicate>.+?)[\t ]*$`)
	issueSeparatorRE = regexp.MustCompile(` *[,;/ ] *`)
)

// AngularParserOptions configures the angular/conventional commit parser.
// The zero value is not usable; construct parsers through
// NewAngularCommitParser, which fills in defaults and validates eagerly.
type AngularParserOptions struct {
	// MinorTags and PatchTags are the commit types mapped to MINOR and
	// PATCH bumps. AllowedTags lists every structurally valid type; types
	// in it but in neither bump list fall back to DefaultBumpLevel.
	MinorTags   []string  `toml:"minor_tags"`
	PatchTags   []string  `toml:"patch_tags"`
	AllowedTags []string  `toml:"allowed_tags"`
	DefaultBump LevelBump `toml:"default_bump_level"`

	// ParseSquashCommits scans a commit message for multiple embedded
	// conventional subjects and splits them into independent results.
	ParseSquashCommits bool `toml:"parse_squash_commits"`

	// IgnoreMergeCommits turns commits with more than one parent into a
	// ParseError instead of classifying their message.
	IgnoreMergeCommits bool `toml:"ignore_merge_commits"`

	// AllowedScopes optionally restricts the scopes accepted per type.
	// Each value is an unanchored regular expression matched against the
	// whole scope. Only consulted when StrictScope is set; types without
	// an entry accept any scope.
	AllowedScopes map[string][]string `toml:"allowed_scopes"`
	StrictScope   bool                `toml:"strict_scope"`
}

// DefaultAngularParserOptions mirrors the conventional-commit defaults:
// feat is minor, fix and perf are patch, the remaining well-known types are
// allowed but produce no release.
func DefaultAngularParserOptions() AngularParserOptions {
	minor := []string{"feat"}
	patch := []string{"fix", "perf"}
	return AngularParserOptions{
		MinorTags: minor,
		PatchTags: patch,
		AllowedTags: append(append(append([]string{}, minor...), patch...),
			"build", "chore", "ci", "docs", "style", "refactor", "test",
		),
		DefaultBump: NoRelease,
	}
}

type textFilter struct {
	pattern     *regexp.Regexp
	replacement string
}

// AngularCommitParser parses commits written in the angular style of
// conventional commits: "type(scope)!: subject" followed by body paragraphs.
type AngularCommitParser struct {
	opts          AngularParserOptions
	tagToLevel    map[string]LevelBump
	scopesByType  map[string][]*regexp.Regexp
	messageRE     *regexp.Regexp
	subjectStart  *regexp.Regexp
	squashFilters []textFilter
	log           *slog.Logger
}

// NewAngularCommitParser validates the options and compiles the grammar.
// Nil options use DefaultAngularParserOptions.
func NewAngularCommitParser(opts *AngularParserOptions) (*AngularCommitParser, error) {
	resolved := DefaultAngularParserOptions()
	if opts != nil {
		resolved = *opts
	}
	if len(resolved.AllowedTags) == 0 {
		resolved.AllowedTags = append(
			append([]string{}, resolved.MinorTags...), resolved.PatchTags...)
	}

	tagToLevel := make(map[string]LevelBump, len(resolved.AllowedTags))
	for _, tag := range resolved.AllowedTags {
		if strings.TrimSpace(tag) == "" {
			return nil, fmt.Errorf("commit type tags must be non-empty strings")
		}
		tagToLevel[tag] = resolved.DefaultBump
	}
	for _, tag := range resolved.PatchTags {
		tagToLevel[tag] = Patch
	}
	for _, tag := range resolved.MinorTags {
		tagToLevel[tag] = Minor
	}

	scopesByType := make(map[string][]*regexp.Regexp, len(resolved.AllowedScopes))
	for tag, scopes := range resolved.AllowedScopes {
		for _, scope := range scopes {
			if strings.HasPrefix(scope, "^") || strings.HasSuffix(scope, "$") {
				return nil, fmt.Errorf(
					"invalid scope %q for type %q: anchors are added automatically", scope, tag)
			}
			compiled, err := regexp.Compile("^(?:" + scope + ")$")
			if err != nil {
				return nil, fmt.Errorf("invalid scope pattern %q for type %q: %w", scope, tag, err)
			}
			scopesByType[tag] = append(scopesByType[tag], compiled)
		}
	}

	quoted := make([]string, len(resolved.AllowedTags))
	for i, tag := range resolved.AllowedTags {
		quoted[i] = regexp.QuoteMeta(tag)
	}
	allTypes := strings.Join(quoted, "|")

	messageRE, err := regexp.Compile(
		`(?s)^(?P<type>` + allTypes + `)` +
			`(?:\((?P<scope>[^\n]+)\))?` +
			`(?P<break>!)?:\s+` +
			`(?P<subject>[^\n]+)` +
			`(?:\n\n(?P<text>.+))?`,
	)
	if err != nil {
		return nil, fmt.Errorf("compiling commit grammar: %w", err)
	}

	subjectStart := regexp.MustCompile(`^(?:` + allTypes + `)(?:\([^)]+\))?!?:\s+`)

	squashFilters := []textFilter{
		{regexp.MustCompile(`(\S)  +(\S)`), "$1 $2"},
		{regexp.MustCompile(`(?m)^[\t ]*commit [0-9a-f]+$\n?`), ""},
		{regexp.MustCompile(`(?m)^[\t ]*Author: .+$\n?`), ""},
		{regexp.MustCompile(`(?m)^[\t ]*Date: .+$\n?`), ""},
		{regexp.MustCompile(`(?m)^[\t ]*Squashed commit of the following:.*$\n?`), ""},
		// Strip bullet points and indentation in front of an embedded
		// commit subject so it is recognisable at the start of the line.
		{regexp.MustCompile(`(?m)^(?:[\t ]*[*-][\t ]+|[\t ]+)?(` + allTypes + `)\b`), "$1"},
	}

	return &AngularCommitParser{
		opts:          resolved,
		tagToLevel:    tagToLevel,
		scopesByType:  scopesByType,
		messageRE:     messageRE,
		subjectStart:  subjectStart,
		squashFilters: squashFilters,
		log:           slog.Default().With("parser", "angular"),
	}, nil
}

// Options returns the resolved parser options.
func (p *AngularCommitParser) Options() AngularParserOptions {
	return p.opts
}

// Parse classifies one commit. A squashed commit may yield several results;
// when the first result carries a merge request reference, it is assumed the
// whole squash came from that one merge request and the reference is copied
// onto the rest.
func (p *AngularCommitParser) Parse(commit Commit) []ParseResult {
	if p.opts.IgnoreMergeCommits && len(commit.Parents) > 1 {
		p.log.Debug("ignoring merge commit", "commit", commit.ShortHash())
		return []ParseResult{ParseError{Commit: commit, Reason: "ignoring merge commit"}}
	}

	commits := []Commit{commit}
	if p.opts.ParseSquashCommits {
		commits = p.unsquash(commit)
	}

	results := make([]ParseResult, 0, len(commits))
	for _, c := range commits {
		results = append(results, p.parseOne(c))
	}

	lead, ok := results[0].(ParsedCommit)
	if !ok || lead.LinkedMergeRequest == "" {
		return results
	}
	for i, result := range results[1:] {
		if parsed, ok := result.(ParsedCommit); ok {
			parsed.LinkedMergeRequest = lead.LinkedMergeRequest
			results[i+1] = parsed
		}
	}
	return results
}

func (p *AngularCommitParser) parseOne(commit Commit) ParseResult {
	match := p.messageRE.FindStringSubmatch(commit.Message)
	if match == nil {
		p.log.Debug("unparsable commit message", "commit", commit.ShortHash())
		return ParseError{
			Commit: commit,
			Reason: fmt.Sprintf("unable to parse commit message: %s", commit.Subject()),
		}
	}

	commitType := match[p.messageRE.SubexpIndex("type")]
	scope := match[p.messageRE.SubexpIndex("scope")]
	breaking := match[p.messageRE.SubexpIndex("break")] != ""
	subject := match[p.messageRE.SubexpIndex("subject")]
	body := match[p.messageRE.SubexpIndex("text")]

	if err := p.checkScope(commitType, scope); err != "" {
		return ParseError{Commit: commit, Reason: err}
	}

	linkedMR := ""
	if mr := mergeRequestRE.FindStringSubmatch(subject); mr != nil {
		linkedMR = mr[mergeRequestRE.SubexpIndex("mr")]
	}

	var descriptions, breakingDescriptions, linkedIssues []string
	for _, paragraph := range append([]string{subject}, parseParagraphs(body)...) {
		if m := breakingRE.FindStringSubmatch(paragraph); m != nil {
			breakingDescriptions = append(breakingDescriptions, m[1])
			continue
		}
		if m := issueFooterRE.FindStringSubmatch(paragraph); m != nil {
			predicate := issueSeparatorRE.ReplaceAllString(
				m[issueFooterRE.SubexpIndex("predicate")], ",")
			for _, issue := range strings.Split(predicate, ",") {
				if issue != "" {
					linkedIssues = append(linkedIssues, issue)
				}
			}
			continue
		}
		descriptions = append(descriptions, paragraph)
	}

	bump := p.tagToLevel[commitType]
	if breaking || len(breakingDescriptions) > 0 {
		bump = Major
	}
	p.log.Debug("classified commit", "commit", commit.ShortHash(), "bump", bump)

	displayType := commitType
	if long, ok := longTypeNames[commitType]; ok {
		displayType = long
	}

	return ParsedCommit{
		Bump:                 bump,
		Type:                 displayType,
		Scope:                scope,
		Descriptions:         descriptions,
		BreakingDescriptions: breakingDescriptions,
		LinkedIssues:         linkedIssues,
		LinkedMergeRequest:   linkedMR,
		Commit:               commit,
	}
}

// checkScope returns a non-empty reason when strict scope validation rejects
// the type/scope combination.
func (p *AngularCommitParser) checkScope(commitType, scope string) string {
	if !p.opts.StrictScope {
		return ""
	}
	patterns, restricted := p.scopesByType[commitType]
	if !restricted {
		return ""
	}
	for _, pattern := range patterns {
		if pattern.MatchString(scope) {
			return ""
		}
	}
	return fmt.Sprintf("scope %q is not valid for commit type %q", scope, commitType)
}

// unsquash splits a squashed merge commit into artificial commits, one per
// embedded conventional subject. VCS-generated boilerplate (squash banners,
// "commit <sha>" headers, Author/Date lines) is filtered out first.
// Paragraphs preceding the first recognisable subject are dropped; trailing
// paragraphs attach to the subject above them.
func (p *AngularCommitParser) unsquash(commit Commit) []Commit {
	var messages []string
	current := ""

	raw := strings.TrimSpace(strings.ReplaceAll(commit.Message, "\r", ""))
	for _, paragraph := range strings.Split(raw, "\n\n") {
		clean := paragraph
		for _, filter := range p.squashFilters {
			if clean == "" {
				break
			}
			clean = filter.pattern.ReplaceAllString(clean, filter.replacement)
		}
		if strings.TrimSpace(clean) == "" {
			continue
		}

		if !p.subjectStart.MatchString(clean) {
			if current != "" {
				current += "\n\n" + dedent(clean)
			}
			continue
		}

		if current != "" {
			messages = append(messages, current)
		}
		current = clean
	}
	if current != "" {
		messages = append(messages, current)
	}

	if len(messages) == 0 {
		return []Commit{commit}
	}

	commits := make([]Commit, len(messages))
	for i, message := range messages {
		artificial := commit
		artificial.Message = message
		commits[i] = artificial
	}
	return commits
}

// dedent strips the common leading whitespace from every non-blank line.
func dedent(text string) string {
	lines := strings.Split(text, "\n")
	margin := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first || len(indent) < len(margin) {
			margin = indent
			first = false
		}
	}
	if margin == "" {
		return text
	}
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, margin)
	}
	return strings.Join(lines, "\n")
}
