package version

import (
	"fmt"
	"strconv"
	"strings"
)

// PartialVersion is a version with some trailing components left
// unspecified. It is used both to build version Constraints (internal/runtime)
// and to read a cluster's on-disk PG_VERSION file, which records only a
// short form ("9.6" or "14") rather than the full triplet/pair pg_ctl
// reports.
type PartialVersion struct {
	pre10 bool
	major int
	point *int // pre10 only
	minor *int // pre10 (third component) or post10 (second component)
}

// PartialPre10 builds a partial pre-10 version. point and/or minor may be
// nil to leave that component unspecified.
func PartialPre10(major int, point, minor *int) PartialVersion {
	return PartialVersion{pre10: true, major: major, point: point, minor: minor}
}

// PartialPost10 builds a partial post-10 version. minor may be nil.
func PartialPost10(major int, minor *int) PartialVersion {
	return PartialVersion{pre10: false, major: major, minor: minor}
}

// ParsePartial parses a short version string such as those found in a
// PG_VERSION file: "9.6" (pre-10, minor unspecified) or "14" (post-10,
// minor unspecified), as well as fully-specified strings.
func ParsePartial(s string) (PartialVersion, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return PartialVersion{}, fmt.Errorf("%w: %q", ErrBadlyFormed, s)
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return PartialVersion{}, fmt.Errorf("%w: %q: %v", ErrBadlyFormed, s, err)
		}
		nums[i] = n
	}

	major := nums[0]
	if major >= 10 {
		if len(nums) > 2 {
			return PartialVersion{}, fmt.Errorf("%w: post-10 version %q has too many components", ErrBadlyFormed, s)
		}
		var minor *int
		if len(nums) == 2 {
			minor = &nums[1]
		}
		return PartialPost10(major, minor), nil
	}

	var point, minor *int
	if len(nums) >= 2 {
		point = &nums[1]
	}
	if len(nums) == 3 {
		minor = &nums[2]
	}
	return PartialPre10(major, point, minor), nil
}

// Full reports whether every component is specified, and if so the
// corresponding Version.
func (p PartialVersion) Full() (Version, bool) {
	if p.pre10 {
		if p.point == nil || p.minor == nil {
			return Version{}, false
		}
		v, err := NewPre10(p.major, *p.point, *p.minor)
		return v, err == nil
	}
	if p.minor == nil {
		return Version{}, false
	}
	v, err := NewPost10(p.major, *p.minor)
	return v, err == nil
}

// Compatible reports whether v agrees with every component p specifies.
// Components p leaves unspecified are considered compatible with anything.
func (p PartialVersion) Compatible(v Version) bool {
	if p.pre10 != v.pre10 {
		return false
	}
	if p.major != v.major {
		return false
	}
	if p.pre10 {
		if p.point != nil && *p.point != v.b {
			return false
		}
		if p.minor != nil && *p.minor != v.c {
			return false
		}
		return true
	}
	if p.minor != nil && *p.minor != v.b {
		return false
	}
	return true
}

func (p PartialVersion) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", p.major)
	if p.pre10 {
		if p.point != nil {
			fmt.Fprintf(&sb, ".%d", *p.point)
		}
		if p.minor != nil {
			fmt.Fprintf(&sb, ".%d", *p.minor)
		}
	} else if p.minor != nil {
		fmt.Fprintf(&sb, ".%d", *p.minor)
	}
	return sb.String()
}
