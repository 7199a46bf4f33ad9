package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/bnema/portainer-notifier/internal/ports"
)

const (
	StateFileName   = "stackMessages.json"
	stateFileMode   = 0o600
	stateDirMode    = 0o700
	tempFilePattern = ".stackMessages-*.json.tmp"
)

// Repository persists the message index as a pretty-printed JSON object
// mapping stack id to message id.
type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.StateRepository = (*Repository)(nil)

// NewRepository stores its file under dataDir, which is created on the first Save.
func NewRepository(dataDir string) (*Repository, error) {
	if dataDir == "" {
		return nil, errors.New("state data directory is empty")
	}

	path, err := normalizePath(filepath.Join(dataDir, StateFileName))
	if err != nil {
		return nil, err
	}

	return &Repository{path: path, mu: lockForPath(path)}, nil
}

func (r *Repository) Location() string {
	return r.path
}

func (r *Repository) Load(ctx context.Context) (domain.MessageIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.MessageIndex{}, nil
		}
		return nil, &domain.PersistenceError{Op: "read state file", Path: r.path, Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return domain.MessageIndex{}, nil
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &domain.PersistenceError{Op: "decode state file", Path: r.path, Err: err}
	}

	index := make(domain.MessageIndex, len(raw))
	for stackID, messageID := range raw {
		if stackID == "" || messageID == "" {
			continue
		}
		index[domain.StackID(stackID)] = domain.MessageID(messageID)
	}

	return index, nil
}

func (r *Repository) Save(ctx context.Context, index domain.MessageIndex) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw := make(map[string]string, len(index))
	for stackID, messageID := range index {
		raw[string(stackID)] = string(messageID)
	}

	// encoding/json sorts map keys, so identical indexes produce identical files.
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return &domain.PersistenceError{Op: "encode state file", Path: r.path, Err: err}
	}
	data = append(data, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writeAtomic(data); err != nil {
		return &domain.PersistenceError{Op: "write state file", Path: r.path, Err: err}
	}

	return nil
}

func (r *Repository) writeAtomic(data []byte) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, stateDirMode); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("sync temp state file: %w", err)
	}

	if err := tempFile.Chmod(stateFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp state file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	cleanup = false
	return nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve state path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
