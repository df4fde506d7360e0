package netmon

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver"
)

// IFF_LOWER_UP has been reported in link notifications since 2.6.17.
var minLowerUpKernel = semver.MustParse("2.6.17")

// kernelSupportsLowerUp parses a kernel release string such as
// "6.8.0-45-generic" and reports whether it is new enough to report carrier
// state.
func kernelSupportsLowerUp(release string) (bool, error) {
	// Distribution suffixes are not semver pre-releases.
	base, _, _ := strings.Cut(strings.TrimSpace(release), "-")
	base, _, _ = strings.Cut(base, "+")

	v, err := semver.NewVersion(base)
	if err != nil {
		return false, fmt.Errorf("error parsing kernel release %q: %w", release, err)
	}
	return !v.LessThan(minLowerUpKernel), nil
}
