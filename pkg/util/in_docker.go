package util

import "os"

// IsRunningInDocker reports whether the process runs inside a docker or
// podman container
func IsRunningInDocker() bool {
	for _, marker := range []string{"/.dockerenv", "/run/.containerenv"} {
		if _, err := os.Stat(marker); err == nil {
			return true
		}
	}

	return os.Getenv("container") != ""
}
