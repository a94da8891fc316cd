package semrel

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blang/semver"
)

// DefaultPrereleaseToken is used when a prerelease conversion is requested
// without an explicit token.
const DefaultPrereleaseToken = "rc"

// prereleaseTokenRE is the accepted grammar for a prerelease token. The
// leading character must be alphabetic or a hyphen, which also rules out
// digits-only tokens.
var prereleaseTokenRE = regexp.MustCompile(`^[A-Za-z-][A-Za-z0-9-]*$`)

// Version is an immutable semantic version. Every transformation returns a
// new value; the zero value is 0.0.0.
//
// A Version is a prerelease iff PrereleaseToken is non-empty. A
// PrereleaseRevision of zero means the version carries no revision number
// (for example "1.2.3-beta"); parsed revisions always start at 1.
//
// Version is a comparable struct and may be used as a map key. Note that Go's
// == operator includes BuildMetadata; use Equal for semantic equality, which
// ignores build metadata per the semver specification.
type Version struct {
	Major              uint64
	Minor              uint64
	Patch              uint64
	PrereleaseToken    string
	PrereleaseRevision uint64
	BuildMetadata      string
}

// Parse converts a version string of the form
// MAJOR.MINOR.PATCH[-TOKEN.REVISION][+BUILD] into a Version. The numeric
// components must not carry leading zeros and the prerelease portion must be
// a single alphabetic token optionally followed by a numeric revision.
// Returns an error wrapping ErrInvalidVersion on any grammar violation.
func Parse(text string) (Version, error) {
	parsed, err := semver.Parse(text)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, text, err)
	}

	version := Version{
		Major:         parsed.Major,
		Minor:         parsed.Minor,
		Patch:         parsed.Patch,
		BuildMetadata: strings.Join(parsed.Build, "."),
	}

	switch len(parsed.Pre) {
	case 0:
	case 1:
		token := parsed.Pre[0]
		if token.IsNum || !prereleaseTokenRE.MatchString(token.VersionStr) {
			return Version{}, fmt.Errorf(
				"%w: %q: prerelease token %q must match %s",
				ErrInvalidVersion, text, token.String(), prereleaseTokenRE.String(),
			)
		}
		version.PrereleaseToken = token.VersionStr
	case 2:
		token, revision := parsed.Pre[0], parsed.Pre[1]
		if token.IsNum || !prereleaseTokenRE.MatchString(token.VersionStr) {
			return Version{}, fmt.Errorf(
				"%w: %q: prerelease token %q must match %s",
				ErrInvalidVersion, text, token.String(), prereleaseTokenRE.String(),
			)
		}
		if !revision.IsNum || revision.VersionNum < 1 {
			return Version{}, fmt.Errorf(
				"%w: %q: prerelease revision %q must be a positive integer",
				ErrInvalidVersion, text, revision.String(),
			)
		}
		version.PrereleaseToken = token.VersionStr
		version.PrereleaseRevision = revision.VersionNum
	default:
		return Version{}, fmt.Errorf(
			"%w: %q: prerelease may only be TOKEN or TOKEN.REVISION",
			ErrInvalidVersion, text,
		)
	}

	return version, nil
}

// MustParse is like Parse but panics on error. Intended for constants and
// tests.
func MustParse(text string) Version {
	version, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return version
}

// IsPrerelease reports whether the version carries a prerelease token.
func (v Version) IsPrerelease() bool {
	return v.PrereleaseToken != ""
}

func (v Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.PrereleaseToken != "" {
		b.WriteByte('-')
		b.WriteString(v.PrereleaseToken)
		if v.PrereleaseRevision > 0 {
			fmt.Fprintf(&b, ".%d", v.PrereleaseRevision)
		}
	}
	if v.BuildMetadata != "" {
		b.WriteByte('+')
		b.WriteString(v.BuildMetadata)
	}
	return b.String()
}

// AsTag renders the version as a Git tag name using the default tag format.
// Use a TagTranslator for custom formats.
func (v Version) AsTag() string {
	return strings.Replace(DefaultTagFormat, versionPlaceholder, v.String(), 1)
}

// Bump returns a new Version raised by the given level.
//
// NoRelease returns the version unchanged. PrereleaseRevision increments the
// revision of an existing prerelease, or starts one at revision 1 with the
// default token. Patch, Minor and Major increment the respective digit, zero
// all lower digits and clear any prerelease state. Build metadata never
// survives a bump.
func (v Version) Bump(level LevelBump) Version {
	switch level {
	case NoRelease:
		return v
	case PrereleaseRevision:
		if v.IsPrerelease() {
			return Version{
				Major:              v.Major,
				Minor:              v.Minor,
				Patch:              v.Patch,
				PrereleaseToken:    v.PrereleaseToken,
				PrereleaseRevision: v.PrereleaseRevision + 1,
			}
		}
		return Version{
			Major:              v.Major,
			Minor:              v.Minor,
			Patch:              v.Patch,
			PrereleaseToken:    DefaultPrereleaseToken,
			PrereleaseRevision: 1,
		}
	case Patch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	case Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case Major:
		return Version{Major: v.Major + 1}
	}
	return v
}

// ToPrerelease converts the version to a prerelease with the given token,
// choosing the revision automatically: 1 when converting from a full release
// or when the token changes, otherwise the existing revision plus one. An
// empty token keeps the current token, falling back to
// DefaultPrereleaseToken.
func (v Version) ToPrerelease(token string) Version {
	if token == "" {
		token = v.PrereleaseToken
		if token == "" {
			token = DefaultPrereleaseToken
		}
	}
	revision := uint64(1)
	if v.IsPrerelease() && v.PrereleaseToken == token {
		revision = v.PrereleaseRevision + 1
	}
	return v.WithPrerelease(token, revision)
}

// WithPrerelease returns a prerelease version with an explicit token and
// revision.
func (v Version) WithPrerelease(token string, revision uint64) Version {
	return Version{
		Major:              v.Major,
		Minor:              v.Minor,
		Patch:              v.Patch,
		PrereleaseToken:    token,
		PrereleaseRevision: revision,
	}
}

// Finalize strips any prerelease state, keeping the numeric triple.
func (v Version) Finalize() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

// WithBuildMetadata returns a copy of the version carrying the given build
// metadata. Build metadata is preserved in the string form only; it plays no
// part in equality or ordering.
func (v Version) WithBuildMetadata(metadata string) Version {
	v.BuildMetadata = metadata
	return v
}

// Compare returns -1, 0 or +1 depending on whether v orders before, equal to
// or after other. The numeric triple is compared first; a prerelease orders
// strictly below the corresponding full release; among prereleases with the
// same triple the token is compared lexically and then the revision
// numerically, which keeps the ordering total. Build metadata is ignored.
func (v Version) Compare(other Version) int {
	if c := compareUint64(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareUint64(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareUint64(v.Patch, other.Patch); c != 0 {
		return c
	}
	switch {
	case v.IsPrerelease() && !other.IsPrerelease():
		return -1
	case !v.IsPrerelease() && other.IsPrerelease():
		return 1
	case !v.IsPrerelease():
		return 0
	}
	if v.PrereleaseToken != other.PrereleaseToken {
		if v.PrereleaseToken < other.PrereleaseToken {
			return -1
		}
		return 1
	}
	return compareUint64(v.PrereleaseRevision, other.PrereleaseRevision)
}

// CompareAny compares against another Version or a parsable version string.
// Any other operand type is an error, as is an unparsable string.
func (v Version) CompareAny(other any) (int, error) {
	switch operand := other.(type) {
	case Version:
		return v.Compare(operand), nil
	case *Version:
		return v.Compare(*operand), nil
	case string:
		parsed, err := Parse(operand)
		if err != nil {
			return 0, err
		}
		return v.Compare(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported operand type %T for version comparison", other)
	}
}

// Equal reports semantic equality, ignoring build metadata.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// LessThan reports whether v orders strictly before other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// GreaterThan reports whether v orders strictly after other.
func (v Version) GreaterThan(other Version) bool {
	return v.Compare(other) > 0
}

// Diff returns the minimal LevelBump separating the two versions. The
// operation is symmetric: it measures how much has changed between the two
// points, not the direction of the change.
func (v Version) Diff(other Version) LevelBump {
	switch {
	case v.Major != other.Major:
		return Major
	case v.Minor != other.Minor:
		return Minor
	case v.Patch != other.Patch:
		return Patch
	case v.PrereleaseToken != other.PrereleaseToken,
		v.PrereleaseRevision != other.PrereleaseRevision:
		return PrereleaseRevision
	}
	return NoRelease
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
