//go:build !unix

package platform

// kernelRelease is unavailable off unix; WSL detection falls back to
// environment variables and /proc/version.
func kernelRelease() string {
	return ""
}
