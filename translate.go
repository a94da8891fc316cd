package semrel

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultTagFormat is the tag template used when no custom format is
// configured.
const DefaultTagFormat = "v" + versionPlaceholder

const versionPlaceholder = "{version}"

// semverInTagPattern is a permissive match for the version portion embedded
// in a tag name. Candidates extracted with it are still run through Parse,
// which enforces the strict grammar.
const semverInTagPattern = `\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?`

// TagTranslator converts between Version values and Git tag names according
// to a tag format template containing exactly one {version} placeholder.
type TagTranslator struct {
	format string
	fromRE *regexp.Regexp
}

// NewTagTranslator validates the template and builds the inverted pattern
// used to recognise release tags. A template without exactly one {version}
// placeholder fails with an error wrapping ErrInvalidTagFormat.
func NewTagTranslator(format string) (*TagTranslator, error) {
	if strings.Count(format, versionPlaceholder) != 1 {
		return nil, fmt.Errorf(
			"%w: %q must contain exactly one %s placeholder",
			ErrInvalidTagFormat, format, versionPlaceholder,
		)
	}

	prefix, suffix, _ := strings.Cut(format, versionPlaceholder)
	fromRE, err := regexp.Compile(
		"^" + regexp.QuoteMeta(prefix) +
			"(?P<version>" + semverInTagPattern + ")" +
			regexp.QuoteMeta(suffix) + "$",
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTagFormat, format, err)
	}

	return &TagTranslator{format: format, fromRE: fromRE}, nil
}

// Format returns the configured tag format template.
func (t *TagTranslator) Format() string {
	return t.format
}

// TagFor renders a version into a tag name.
func (t *TagTranslator) TagFor(v Version) string {
	return strings.Replace(t.format, versionPlaceholder, v.String(), 1)
}

// VersionFromTag extracts the Version embedded in a tag name. The second
// return value is false when the tag does not match the format or the
// embedded text is not a valid version; not every tag is a release tag, so
// this is not an error.
func (t *TagTranslator) VersionFromTag(tag string) (Version, bool) {
	match := t.fromRE.FindStringSubmatch(tag)
	if match == nil {
		return Version{}, false
	}
	version, err := Parse(match[t.fromRE.SubexpIndex("version")])
	if err != nil {
		return Version{}, false
	}
	return version, true
}
