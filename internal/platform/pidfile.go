package platform

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadPIDFile reads a pid from path. The file holds the pid on the first
// line; anything after it is ignored.
func ReadPIDFile(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pidLine, _, _ := strings.Cut(string(b), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(pidLine))
	if err != nil {
		return 0, err
	}
	return pid, nil
}

// WritePIDFile writes pid to path, creating parent directories as needed.
func WritePIDFile(path string, pid int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o600)
}

// RemovePIDFile removes path, best-effort.
func RemovePIDFile(path string) {
	_ = os.Remove(path)
}

func isNotExist(err error) bool {
	return os.IsNotExist(err)
}
