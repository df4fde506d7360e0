//go:build linux

package netmon

import (
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// CheckKernel warns when the running kernel cannot report carrier state.
func CheckKernel() {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		log.WithError(err).Warn("Unable to read kernel release")
		return
	}
	release := unix.ByteSliceToString(uts.Release[:])

	ok, err := kernelSupportsLowerUp(release)
	if err != nil {
		log.WithError(err).Warn("Unable to check kernel release")
		return
	}
	if !ok {
		log.WithField("release", release).Warn("Kernel does not report IFF_LOWER_UP; every link will appear down")
		return
	}
	log.WithField("release", release).Debug("Kernel release supports carrier reporting")
}
