package semrel

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/BurntSushi/toml"
)

// BranchConfig scopes release behaviour to branches matching a pattern.
type BranchConfig struct {
	// Match is a regular expression tested against the branch name.
	Match string `toml:"match"`

	// Prerelease marks releases from matching branches as prereleases
	// using PrereleaseToken.
	Prerelease      bool   `toml:"prerelease"`
	PrereleaseToken string `toml:"prerelease_token"`
}

// ParserSettings holds the per-grammar parser options.
type ParserSettings struct {
	Angular AngularParserOptions `toml:"angular"`
	Emoji   EmojiParserOptions   `toml:"emoji"`
}

// Config is the project configuration consumed by the version engine.
type Config struct {
	TagFormat        string                  `toml:"tag_format"`
	InitialVersion   string                  `toml:"initial_version"`
	AllowZeroVersion bool                    `toml:"allow_zero_version"`
	MajorOnZero      bool                    `toml:"major_on_zero"`
	CommitParser     string                  `toml:"commit_parser"`
	Parser           ParserSettings          `toml:"parser"`
	Branches         map[string]BranchConfig `toml:"branches"`
}

// DefaultConfig mirrors the conventional setup: v-prefixed tags, 0.0.0
// starting point, angular parsing, and a single release group covering
// main/master.
func DefaultConfig() Config {
	return Config{
		TagFormat:        DefaultTagFormat,
		InitialVersion:   "0.0.0",
		AllowZeroVersion: true,
		MajorOnZero:      true,
		CommitParser:     "angular",
		Parser: ParserSettings{
			Angular: DefaultAngularParserOptions(),
			Emoji:   DefaultEmojiParserOptions(),
		},
		Branches: map[string]BranchConfig{
			"main": {Match: "(main|master)", PrereleaseToken: DefaultPrereleaseToken},
		},
	}
}

// LoadConfig reads a TOML configuration file over the defaults and
// validates the result eagerly, so invalid tag or scope combinations are
// rejected before any parsing begins.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(raw, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks the cross-field consistency of the configuration.
func (c Config) Validate() error {
	if _, err := NewTagTranslator(c.TagFormat); err != nil {
		return err
	}
	if _, err := Parse(c.InitialVersion); err != nil {
		return fmt.Errorf("initial_version: %w", err)
	}
	if _, err := c.NewCommitParser(); err != nil {
		return err
	}
	for name, branch := range c.Branches {
		if _, err := regexp.Compile(branch.Match); err != nil {
			return fmt.Errorf("branches.%s.match: %w", name, err)
		}
		if branch.PrereleaseToken != "" && !prereleaseTokenRE.MatchString(branch.PrereleaseToken) {
			return fmt.Errorf("branches.%s.prerelease_token %q must match %s",
				name, branch.PrereleaseToken, prereleaseTokenRE.String())
		}
	}
	return nil
}

// NewCommitParser constructs the configured parser.
func (c Config) NewCommitParser() (CommitParser, error) {
	switch c.CommitParser {
	case "angular", "conventional":
		opts := c.Parser.Angular
		return NewAngularCommitParser(&opts)
	case "emoji":
		opts := c.Parser.Emoji
		return NewEmojiCommitParser(&opts), nil
	default:
		return nil, fmt.Errorf("unknown commit_parser %q", c.CommitParser)
	}
}

// NewTagTranslator constructs the translator for the configured tag format.
func (c Config) NewTagTranslator() (*TagTranslator, error) {
	return NewTagTranslator(c.TagFormat)
}

// ReleaseGroup returns the first branch configuration whose pattern matches
// the branch name. Groups are tried in lexical order of their names so the
// lookup is deterministic. Fails with ErrNotAReleaseBranch when nothing
// matches.
func (c Config) ReleaseGroup(branch string) (BranchConfig, error) {
	names := make([]string, 0, len(c.Branches))
	for name := range c.Branches {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		group := c.Branches[name]
		matched, err := regexp.MatchString(group.Match, branch)
		if err != nil {
			return BranchConfig{}, fmt.Errorf("branches.%s.match: %w", name, err)
		}
		if matched {
			return group, nil
		}
	}
	return BranchConfig{}, fmt.Errorf("%w: %q", ErrNotAReleaseBranch, branch)
}

// PrereleaseTokenFor resolves the prerelease token for a branch, falling
// back to DefaultPrereleaseToken when the matching group does not set one.
func (c Config) PrereleaseTokenFor(branch string) (string, error) {
	group, err := c.ReleaseGroup(branch)
	if err != nil {
		return "", err
	}
	if group.PrereleaseToken == "" {
		return DefaultPrereleaseToken, nil
	}
	return group.PrereleaseToken, nil
}

// DefaultInitialVersion round-trips the configured initial version through
// the tag translator. The translator is user-configured, so there is no
// guarantee it can reproduce the default version; when it cannot, the
// configuration is unusable and this fails with ErrInternal.
func (c Config) DefaultInitialVersion(translator *TagTranslator) (Version, error) {
	version, err := Parse(c.InitialVersion)
	if err != nil {
		return Version{}, fmt.Errorf("initial_version: %w", err)
	}
	if _, ok := translator.VersionFromTag(translator.TagFor(version)); !ok {
		return Version{}, fmt.Errorf(
			"%w: tag format %q cannot reproduce initial version %q",
			ErrInternal, translator.Format(), c.InitialVersion)
	}
	return version, nil
}
