package admin

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-notes/pkg/interfaces"
)

// BunOperationStore persists the operation log in a SQL table.
type BunOperationStore struct {
	db *bun.DB
}

var _ OperationStore = (*BunOperationStore)(nil)

type operationModel struct {
	bun.BaseModel `bun:"table:admin_operations"`

	Seq      int64  `bun:"seq,pk,autoincrement"`
	ID       string `bun:"id,notnull,unique"`
	Type     string `bun:"type,notnull"`
	Slug     string `bun:"slug"`
	Detail   string `bun:"detail"`
	At       string `bun:"at,notnull"`
	Username string `bun:"username"`
}

// NewBunOperationStore wraps db. Call EnsureSchema before first use.
func NewBunOperationStore(db *bun.DB) *BunOperationStore {
	return &BunOperationStore{db: db}
}

// OpenOperationsDB opens a database for the operation store. driver is
// "sqlite" or "postgres".
func OpenOperationsDB(driver, dsn string) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, storageError(err, "open sqlite")
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case "postgres", "postgresql":
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, storageError(err, "open postgres")
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, goerrors.New("unknown operations store driver: "+driver, goerrors.CategoryBadInput).
			WithTextCode(TextCodeUnknownStore)
	}
}

// EnsureSchema creates the operations table when missing.
func (s *BunOperationStore) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return errors.New("admin: bun operation store requires a database")
	}
	if _, err := s.db.NewCreateTable().Model((*operationModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return storageError(err, "create operations table")
	}
	return nil
}

// Load returns the newest limit entries.
func (s *BunOperationStore) Load(ctx context.Context, limit int) ([]interfaces.Operation, error) {
	if s.db == nil {
		return nil, errors.New("admin: bun operation store requires a database")
	}
	var models []operationModel
	query := s.db.NewSelect().Model(&models).Order("seq DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storageError(err, "load operations")
	}

	out := make([]interfaces.Operation, 0, len(models))
	for _, model := range models {
		if op, ok := sanitizeOperation(model.toOperation()); ok {
			out = append(out, op)
		}
	}
	return out, nil
}

// Append inserts op and deletes rows beyond limit.
func (s *BunOperationStore) Append(ctx context.Context, op interfaces.Operation, limit int) error {
	if s.db == nil {
		return errors.New("admin: bun operation store requires a database")
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		model := operationFromDomain(op)
		if _, err := tx.NewInsert().Model(&model).Exec(ctx); err != nil {
			return storageError(err, "insert operation")
		}
		if limit <= 0 {
			return nil
		}
		keep := tx.NewSelect().TableExpr("admin_operations").Column("seq").Order("seq DESC").Limit(limit)
		if _, err := tx.NewDelete().TableExpr("admin_operations").Where("seq NOT IN (?)", keep).Exec(ctx); err != nil {
			return storageError(err, "trim operations")
		}
		return nil
	})
}

func operationFromDomain(op interfaces.Operation) operationModel {
	return operationModel{
		ID:       op.ID,
		Type:     op.Type,
		Slug:     op.Slug,
		Detail:   op.Detail,
		At:       op.At,
		Username: op.Username,
	}
}

func (m operationModel) toOperation() interfaces.Operation {
	return interfaces.Operation{
		ID:       m.ID,
		Type:     m.Type,
		Slug:     m.Slug,
		Detail:   m.Detail,
		At:       m.At,
		Username: m.Username,
	}
}
