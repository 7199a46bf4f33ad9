package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store reads secrets from plain files. Relative paths resolve against root.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// Get returns the file content without its trailing newline.
func (s *Store) Get(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resolved, err := s.resolve(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("file secret %q not found: %w", resolved, err)
		}
		return "", fmt.Errorf("read file secret %q: %w", resolved, err)
	}

	return strings.TrimRight(string(data), "\r\n"), nil
}

func (s *Store) resolve(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("secret file path is empty")
	}

	cleaned := filepath.Clean(trimmed)
	if filepath.IsAbs(cleaned) {
		return cleaned, nil
	}

	return filepath.Join(s.root, cleaned), nil
}
