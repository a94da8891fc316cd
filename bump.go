// Package semrel computes the next semantic version of a project from its
// Git commit history. Commit messages are classified by a pluggable parser
// (angular/conventional or gitmoji style), the resulting bump levels are
// aggregated, and a deterministic algorithm combines them with the release
// history and branch configuration into a single next version.
package semrel

import (
	"fmt"
	"strings"
)

// LevelBump is the ordinal severity of a change. Higher values take
// precedence when aggregating the bumps of multiple commits.
type LevelBump int

const (
	NoRelease LevelBump = iota
	PrereleaseRevision
	Patch
	Minor
	Major
)

var bumpNames = map[LevelBump]string{
	NoRelease:          "no_release",
	PrereleaseRevision: "prerelease_revision",
	Patch:              "patch",
	Minor:              "minor",
	Major:              "major",
}

func (l LevelBump) String() string {
	if name, ok := bumpNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LevelBump(%d)", int(l))
}

// ParseLevelBump converts a configuration string such as "minor" into a
// LevelBump.
func ParseLevelBump(s string) (LevelBump, error) {
	normalised := strings.ToLower(strings.TrimSpace(s))
	for level, name := range bumpNames {
		if name == normalised {
			return level, nil
		}
	}
	return NoRelease, fmt.Errorf("unknown bump level %q", s)
}

// MarshalText implements encoding.TextMarshaler so LevelBump values can be
// written back out to configuration files.
func (l LevelBump) MarshalText() ([]byte, error) {
	name, ok := bumpNames[l]
	if !ok {
		return nil, fmt.Errorf("unknown bump level %d", int(l))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so LevelBump values can
// be read directly from TOML configuration.
func (l *LevelBump) UnmarshalText(text []byte) error {
	level, err := ParseLevelBump(string(text))
	if err != nil {
		return err
	}
	*l = level
	return nil
}

func maxBump(a, b LevelBump) LevelBump {
	if a > b {
		return a
	}
	return b
}

func minBump(a, b LevelBump) LevelBump {
	if a < b {
		return a
	}
	return b
}
