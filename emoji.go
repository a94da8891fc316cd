package semrel

import (
	"log/slog"
	"strings"
)

// EmojiParserOptions configures the gitmoji commit parser. The tag lists are
// scanned in priority order: major first, then minor, then patch.
type EmojiParserOptions struct {
	MajorTags   []string  `toml:"major_tags"`
	MinorTags   []string  `toml:"minor_tags"`
	PatchTags   []string  `toml:"patch_tags"`
	DefaultBump LevelBump `toml:"default_bump_level"`
}

// DefaultEmojiParserOptions returns the standard gitmoji tier tables.
func DefaultEmojiParserOptions() EmojiParserOptions {
	return EmojiParserOptions{
		MajorTags: []string{":boom:"},
		MinorTags: []string{
			":sparkles:", ":children_crossing:", ":lipstick:",
			":iphone:", ":egg:", ":chart_with_upwards_trend:",
		},
		PatchTags: []string{
			":ambulance:", ":lock:", ":bug:", ":zap:", ":goal_net:",
			":alien:", ":wheelchair:", ":speech_balloon:", ":mag:",
			":apple:", ":penguin:", ":checkered_flag:", ":robot:",
			":green_apple:",
		},
		DefaultBump: NoRelease,
	}
}

// EmojiCommitParser determines a commit's bump level from the first
// recognised emoji in its subject line. It has no failure mode: a message
// without any known emoji is classified as type "Other" with the configured
// default bump. Emojis stay part of the descriptions.
type EmojiCommitParser struct {
	opts EmojiParserOptions
	log  *slog.Logger
}

// NewEmojiCommitParser builds the parser. Nil options use the defaults.
func NewEmojiCommitParser(opts *EmojiParserOptions) *EmojiCommitParser {
	resolved := DefaultEmojiParserOptions()
	if opts != nil {
		resolved = *opts
	}
	return &EmojiCommitParser{
		opts: resolved,
		log:  slog.Default().With("parser", "emoji"),
	}
}

// Options returns the resolved parser options.
func (p *EmojiCommitParser) Options() EmojiParserOptions {
	return p.opts
}

// Parse classifies one commit. Always returns exactly one ParsedCommit.
func (p *EmojiCommitParser) Parse(commit Commit) []ParseResult {
	subject := commit.Subject()

	linkedMR := ""
	if mr := mergeRequestRE.FindStringSubmatch(subject); mr != nil {
		linkedMR = mr[mergeRequestRE.SubexpIndex("mr")]
	}

	// Scan tiers from most to least significant so the highest-level emoji
	// present decides the bump.
	primary := "Other"
	bump := p.opts.DefaultBump
	tiers := []struct {
		tags []string
		bump LevelBump
	}{
		{p.opts.MajorTags, Major},
		{p.opts.MinorTags, Minor},
		{p.opts.PatchTags, Patch},
	}
scan:
	for _, tier := range tiers {
		for _, tag := range tier.tags {
			if strings.Contains(subject, tag) {
				primary = tag
				bump = tier.bump
				break scan
			}
		}
	}
	p.log.Debug("classified commit", "commit", commit.ShortHash(), "emoji", primary, "bump", bump)

	descriptions := parseParagraphs(commit.Message)

	// Emoji commits do not separate breaking text into its own paragraph,
	// so on a major bump everything after the subject is treated as the
	// breaking description.
	var breakingDescriptions []string
	if bump == Major && len(descriptions) > 1 {
		breakingDescriptions = descriptions[1:]
	}

	return []ParseResult{ParsedCommit{
		Bump:                 bump,
		Type:                 primary,
		Descriptions:         descriptions,
		BreakingDescriptions: breakingDescriptions,
		LinkedMergeRequest:   linkedMR,
		Commit:               commit,
	}}
}
