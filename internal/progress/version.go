package progress

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// CurrentVersion is the data version written by this build.
const CurrentVersion = "5.0.0"

// ErrIncompatibleVersion indicates stored or imported data was written by
// a release with a different major version.
type ErrIncompatibleVersion struct {
	Stored  string
	Current string
}

func (e *ErrIncompatibleVersion) Error() string {
	if e.Stored == "" {
		return fmt.Sprintf("incompatible data version: missing (running %s)", e.Current)
	}
	return fmt.Sprintf("incompatible data version %s (running %s)", e.Stored, e.Current)
}

// CompatibleVersion reports whether data written by version stored can be
// read by version current. Only the major components are compared;
// malformed versions are never compatible.
func CompatibleVersion(stored, current string) bool {
	s, c := canonical(stored), canonical(current)
	if !semver.IsValid(s) || !semver.IsValid(c) {
		return false
	}
	return semver.Major(s) == semver.Major(c)
}

// canonical adds the "v" prefix semver expects.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

func checkVersion(stored, current string) error {
	if !CompatibleVersion(stored, current) {
		return &ErrIncompatibleVersion{Stored: stored, Current: current}
	}
	return nil
}
