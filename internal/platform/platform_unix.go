//go:build unix

package platform

import "golang.org/x/sys/unix"

// kernelRelease returns the uname(2) release string, used to spot the
// "microsoft" marker WSL kernels carry.
func kernelRelease() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Release[:])
}
