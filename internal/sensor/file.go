package sensor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// File reads the foreground identifier from a file that some platform agent
// keeps up to date. Permission is granted when GrantPath exists.
type File struct {
	Path      string
	GrantPath string
}

func NewFile(path, grantPath string) *File {
	return &File{Path: path, GrantPath: grantPath}
}

func (f *File) HasPermission(context.Context) (bool, error) {
	_, err := os.Stat(f.GrantPath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check usage access: %w", err)
	}
	return true, nil
}

// RequestPermission leaves a request marker next to the grant file for the
// platform agent to act on.
func (f *File) RequestPermission(context.Context) error {
	marker := f.GrantPath + ".requested"
	if err := os.WriteFile(marker, []byte(time.Now().UTC().Format(time.RFC3339)), 0o644); err != nil {
		return fmt.Errorf("failed to request usage access: %w", err)
	}
	return nil
}

func (f *File) ForegroundApp(context.Context) (string, bool, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read foreground app: %w", err)
	}

	app := strings.TrimSpace(string(data))
	return app, app != "", nil
}
