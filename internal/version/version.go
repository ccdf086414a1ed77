// Package version models PostgreSQL version numbers.
//
// PostgreSQL changed its numbering scheme at major version 10: before that,
// a version is a (major, point, minor) triplet such as 9.6.17; from 10
// onward it is a (major, minor) pair such as 14.2. The two shapes are never
// mixed, and the storage format a cluster is initialized with is fixed to
// whichever major version created it, so this package treats the two shapes
// as distinct variants of a single sum type rather than as a generic
// major/minor/patch triplet.
package version

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version is a parsed, validated PostgreSQL version. Use NewPre10 or
// NewPost10 to construct one, or Parse to extract one from a string such as
// the output of "pg_ctl --version".
type Version struct {
	pre10 bool
	major int
	b     int // point (pre10) or minor (post10)
	c     int // minor (pre10 only)
}

// NewPre10 builds a pre-10 version. major must be less than 10.
func NewPre10(major, point, minor int) (Version, error) {
	if major >= 10 {
		return Version{}, fmt.Errorf("%w: pre-10 version has major %d", ErrBadlyFormed, major)
	}
	if major < 0 || point < 0 || minor < 0 {
		return Version{}, fmt.Errorf("%w: negative version component", ErrBadlyFormed)
	}
	return Version{pre10: true, major: major, b: point, c: minor}, nil
}

// NewPost10 builds a post-10 version. major must be at least 10.
func NewPost10(major, minor int) (Version, error) {
	if major < 10 {
		return Version{}, fmt.Errorf("%w: post-10 version has major %d", ErrBadlyFormed, major)
	}
	if minor < 0 {
		return Version{}, fmt.Errorf("%w: negative version component", ErrBadlyFormed)
	}
	return Version{pre10: false, major: major, b: minor}, nil
}

// IsPre10 reports whether v is a pre-10 (major.point.minor) version.
func (v Version) IsPre10() bool { return v.pre10 }

// Major returns the major version component.
func (v Version) Major() int { return v.major }

// Pre10Parts returns the (point, minor) components of a pre-10 version.
// ok is false if v is not pre-10.
func (v Version) Pre10Parts() (point, minor int, ok bool) {
	if !v.pre10 {
		return 0, 0, false
	}
	return v.b, v.c, true
}

// Post10Minor returns the minor component of a post-10 version. ok is false
// if v is not post-10.
func (v Version) Post10Minor() (minor int, ok bool) {
	if v.pre10 {
		return 0, false
	}
	return v.b, true
}

// String renders v the way PostgreSQL itself does: "major.point.minor" for
// pre-10, "major.minor" for post-10.
func (v Version) String() string {
	if v.pre10 {
		return fmt.Sprintf("%d.%d.%d", v.major, v.b, v.c)
	}
	return fmt.Sprintf("%d.%d", v.major, v.b)
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// other. Every pre-10 version sorts below every post-10 version; within a
// variant, ordering is lexicographic over the components.
func (v Version) Compare(other Version) int {
	if v.pre10 != other.pre10 {
		if v.pre10 {
			return -1
		}
		return 1
	}
	if d := cmp(v.major, other.major); d != 0 {
		return d
	}
	if d := cmp(v.b, other.b); d != 0 {
		return d
	}
	return cmp(v.c, other.c)
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }

// Equal reports structural equality.
func (v Version) Equal(other Version) bool { return v == other }

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// versionPattern matches the first embedded "d+.d+(.d+)?" in a larger
// string, e.g. the "14.2" in "pg_ctl (PostgreSQL) 14.2".
var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// Parse extracts and validates the first embedded version number in s. It
// rejects any numeric form that doesn't match one of the two valid shapes:
// a 2-component major>=10 pair, or a 3-component major<10 triplet.
func Parse(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: no version number found in %q", ErrBadlyFormed, s)
	}

	major, err := parseComponent(m[1])
	if err != nil {
		return Version{}, err
	}
	minorOrPoint, err := parseComponent(m[2])
	if err != nil {
		return Version{}, err
	}

	if m[3] == "" {
		// Two components: only valid as a post-10 pair.
		if major < 10 {
			return Version{}, fmt.Errorf("%w: %q looks like a pre-10 version missing its minor component", ErrBadlyFormed, s)
		}
		return NewPost10(major, minorOrPoint)
	}

	// Three components: only valid as a pre-10 triplet.
	if major >= 10 {
		return Version{}, fmt.Errorf("%w: %q looks like a post-10 version with an extra component", ErrBadlyFormed, s)
	}
	minor, err := parseComponent(m[3])
	if err != nil {
		return Version{}, err
	}
	return NewPre10(major, minorOrPoint, minor)
}

func parseComponent(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrBadlyFormed, s, err)
	}
	return n, nil
}
