package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"

	"github.com/goliatone/go-notes/internal/posts"
	"github.com/goliatone/go-notes/pkg/interfaces"
)

// OperationsFileName is the operation log snapshot inside the admin data root.
const OperationsFileName = "operations.json"

// FileOperationStore keeps the log as a JSON array, newest first.
type FileOperationStore struct {
	path string

	mu      sync.Mutex
	entries []interfaces.Operation
}

var _ OperationStore = (*FileOperationStore)(nil)

// NewFileOperationStore stores the log at path.
func NewFileOperationStore(path string) *FileOperationStore {
	return &FileOperationStore{path: path}
}

// Load reads and sanitizes the file, then rewrites it.
func (s *FileOperationStore) Load(_ context.Context, limit int) ([]interfaces.Operation, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, storageError(err, "read operations")
	}

	entries := decodeOperations(raw, limit)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	if err := s.write(); err != nil {
		return nil, err
	}
	return append([]interfaces.Operation{}, entries...), nil
}

func decodeOperations(raw []byte, limit int) []interfaces.Operation {
	entries := []interfaces.Operation{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return entries
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return entries
	}
	for _, item := range items {
		var op interfaces.Operation
		if json.Unmarshal(item, &op) != nil {
			continue
		}
		if clean, ok := sanitizeOperation(op); ok {
			entries = append(entries, clean)
		}
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries
}

// Append prepends op and rewrites the file.
func (s *FileOperationStore) Append(_ context.Context, op interfaces.Operation, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]interfaces.Operation{op}, s.entries...)
	if limit > 0 && len(s.entries) > limit {
		s.entries = s.entries[:limit]
	}
	return s.write()
}

func (s *FileOperationStore) write() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return storageError(err, "encode operations")
	}
	if err := posts.WriteFileAtomic(s.path, append(data, '\n')); err != nil {
		return storageError(err, "persist operations")
	}
	return nil
}
