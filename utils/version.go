package utils

import (
	"strconv"
	"strings"
)

// BumpPatch increments the patch component of a semantic version
// string, so "1.0.3" becomes "1.0.4". Shorter or malformed versions are
// normalized to three components first; an empty version starts the
// counter at "0.0.1".
func BumpPatch(version string) string {
	major, minor, patch := splitVersion(version)
	return strconv.Itoa(major) + "." + strconv.Itoa(minor) + "." + strconv.Itoa(patch+1)
}

// CompareVersions returns -1, 0 or 1 ordering two semantic version
// strings numerically per component.
func CompareVersions(a, b string) int {
	aMajor, aMinor, aPatch := splitVersion(a)
	bMajor, bMinor, bPatch := splitVersion(b)
	for _, pair := range [][2]int{{aMajor, bMajor}, {aMinor, bMinor}, {aPatch, bPatch}} {
		if pair[0] < pair[1] {
			return -1
		}
		if pair[0] > pair[1] {
			return 1
		}
	}
	return 0
}

func splitVersion(version string) (major, minor, patch int) {
	parts := strings.Split(strings.TrimSpace(version), ".")
	read := func(idx int) int {
		if idx >= len(parts) {
			return 0
		}
		n, err := strconv.Atoi(strings.TrimSpace(parts[idx]))
		if err != nil || n < 0 {
			return 0
		}
		return n
	}
	return read(0), read(1), read(2)
}
