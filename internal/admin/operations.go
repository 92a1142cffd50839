package admin

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

const (
	// DefaultOperationLogLimit is the configured log size when unset.
	DefaultOperationLogLimit = 200
	// MinOperationLogLimit is the floor applied to any configured limit.
	MinOperationLogLimit = 10
	// OperationsPageSize is how many entries the admin API shows.
	OperationsPageSize = 100
)

// Operation types recorded by the admin backend.
const (
	OperationLogin   = "login"
	OperationLogout  = "logout"
	OperationSave    = "save"
	OperationDelete  = "delete"
	OperationGeneric = "operation"
)

// OperationStore persists the operation log. Load returns entries newest
// first; Append stores op and trims the log to limit entries.
type OperationStore interface {
	Load(ctx context.Context, limit int) ([]interfaces.Operation, error)
	Append(ctx context.Context, op interfaces.Operation, limit int) error
}

// EffectiveLimit applies the floor to a configured limit.
func EffectiveLimit(limit int) int {
	if limit <= 0 {
		limit = DefaultOperationLogLimit
	}
	if limit < MinOperationLogLimit {
		return MinOperationLogLimit
	}
	return limit
}

// OperationLog is the in-memory, newest-first audit log backed by a store.
type OperationLog struct {
	store OperationStore
	limit int
	now   func() time.Time

	mu      sync.RWMutex
	entries []interfaces.Operation
}

// NewOperationLog wraps store. A nil store keeps the log in memory.
func NewOperationLog(store OperationStore, limit int) *OperationLog {
	return &OperationLog{
		store: store,
		limit: EffectiveLimit(limit),
		now:   time.Now,
	}
}

// Limit returns the effective capacity.
func (l *OperationLog) Limit() int { return l.limit }

// Load reads persisted entries.
func (l *OperationLog) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	entries, err := l.store.Load(ctx, l.limit)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
	return nil
}

// Append records an operation at the head of the log.
func (l *OperationLog) Append(ctx context.Context, kind, slug, detail, username string) (interfaces.Operation, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		kind = OperationGeneric
	}
	op := interfaces.Operation{
		ID:       uuid.NewString(),
		Type:     kind,
		Slug:     strings.TrimSpace(slug),
		Detail:   strings.TrimSpace(detail),
		At:       l.now().UTC().Format(time.RFC3339),
		Username: strings.TrimSpace(username),
	}

	l.mu.Lock()
	l.entries = append([]interfaces.Operation{op}, l.entries...)
	if len(l.entries) > l.limit {
		l.entries = l.entries[:l.limit]
	}
	l.mu.Unlock()

	if l.store != nil {
		if err := l.store.Append(ctx, op, l.limit); err != nil {
			return op, err
		}
	}
	return op, nil
}

// Recent returns up to n entries, newest first. n <= 0 returns all.
func (l *OperationLog) Recent(n int) []interfaces.Operation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	return append([]interfaces.Operation{}, l.entries[:n]...)
}

// sanitizeOperation trims fields and rejects entries without id, type or at.
func sanitizeOperation(op interfaces.Operation) (interfaces.Operation, bool) {
	op.ID = strings.TrimSpace(op.ID)
	op.Type = strings.TrimSpace(op.Type)
	op.Slug = strings.TrimSpace(op.Slug)
	op.Detail = strings.TrimSpace(op.Detail)
	op.At = strings.TrimSpace(op.At)
	op.Username = strings.TrimSpace(op.Username)
	if op.ID == "" || op.Type == "" || op.At == "" {
		return interfaces.Operation{}, false
	}
	return op, true
}
