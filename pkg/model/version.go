package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CurrentVersion is the manifest schema version written by this build of the tool.
//
// Compatibility is a plain ordered comparison on the (major, minor) pair:
// a manifest recording a version newer than CurrentVersion is rejected at load.
// If a breaking schema change ever lands, replace the comparison with a
// migration table keyed by version pairs.
var CurrentVersion = Version{Major: 1, Minor: 0}

// Version is a manifest schema version pair
type Version struct {
	Major uint
	Minor uint
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Newer indicates whether v is strictly newer than o
func (v Version) Newer(o Version) bool {
	if v.Major != o.Major {
		return v.Major > o.Major
	}
	return v.Minor > o.Minor
}

// ParseVersion parses a "major.minor" version string
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return Version{}, errors.Errorf("invalid version %q: expected major.minor", s)
	}
	major, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Version{}, errors.Wrapf(err, "invalid major version in %q", s)
	}
	minor, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Version{}, errors.Wrapf(err, "invalid minor version in %q", s)
	}
	return Version{Major: uint(major), Minor: uint(minor)}, nil
}

// MarshalJSON serializes the version as a "major.minor" string
func (v Version) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(v.String())), nil
}

// UnmarshalJSON parses the version from its string form
func (v *Version) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.Wrap(err, "version is not a string")
	}
	parsed, err := ParseVersion(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
