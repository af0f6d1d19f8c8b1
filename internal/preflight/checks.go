package preflight

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and grants the
// access bits in mode (unix.R_OK, unix.W_OK, unix.X_OK).
func CheckDirectoryAccess(name, path string, mode uint32) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s ok)", path, accessLabel(mode))}
}

// CheckReadableDirectory verifies a directory can be listed and read.
func CheckReadableDirectory(name, path string) Result {
	return CheckDirectoryAccess(name, path, unix.R_OK|unix.X_OK)
}

// EnsureWritableDirectory creates path if needed and verifies it is writable.
func EnsureWritableDirectory(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: create: %v)", path, err)}
	}
	return CheckDirectoryAccess(name, path, unix.R_OK|unix.W_OK|unix.X_OK)
}

// CheckFreeSpace reports the free space on the filesystem holding path. It
// only fails when the filesystem cannot be queried.
func CheckFreeSpace(name, path string) Result {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := st.Bavail * uint64(st.Bsize)
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free", humanize.Bytes(free))}
}

func accessLabel(mode uint32) string {
	switch {
	case mode&unix.W_OK != 0:
		return "read/write"
	case mode&unix.R_OK != 0:
		return "read"
	default:
		return "access"
	}
}
