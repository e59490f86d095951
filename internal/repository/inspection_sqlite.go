package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"

	"modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteInspectionRepository implements InspectionRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteInspectionRepository struct {
	db      *sql.DB
	mu      sync.RWMutex
	timeout time.Duration
}

// NewSQLiteInspectionRepository creates a new SQLite inspection repository.
// dbPath is the path to the SQLite database file (e.g., "./data/inspections.db")
// or ":memory:".
func NewSQLiteInspectionRepository(dbPath string, timeout time.Duration) (*SQLiteInspectionRepository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_time_format=sqlite", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite connection pool settings
	db.SetMaxOpenConns(1) // SQLite only supports 1 writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Keep connection alive

	if err := createSQLiteTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("sqlite inspection repository initialized", "path", dbPath)
	return &SQLiteInspectionRepository{db: db, timeout: timeout}, nil
}

// createSQLiteTables creates the inspection table.
func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS irisk_inspecoes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uploaded_by TEXT NOT NULL,
		nr_inspecao TEXT NOT NULL,
		nr_sinistro TEXT,
		data_inclusao DATETIME,
		prioridade TEXT,
		empresa_inspecao TEXT,
		base_empresa TEXT,
		inspetor TEXT,
		operador TEXT,
		agendamento DATETIME,
		dias_cia_previa INTEGER,
		data_proposta DATETIME,
		dias_inspecao INTEGER,
		dias_inspetor INTEGER,
		data_atribuicao_empresa DATETIME,
		data_atribuicao_inspetor DATETIME,
		enquadramento TEXT,
		categoria TEXT,
		lmg REAL,
		segurado TEXT,
		tipo_seguro TEXT,
		endereco TEXT,
		data_ultima_atividade DATETIME,
		atividade_atual TEXT,
		ultima_tarefa DATETIME,
		created_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
		UNIQUE (uploaded_by, nr_inspecao)
	);
	CREATE INDEX IF NOT EXISTS idx_inspecoes_owner_created ON irisk_inspecoes(uploaded_by, created_at);
	`
	_, err := db.Exec(query)
	return err
}

// FindExisting returns the ids of keys already stored for owner.
func (r *SQLiteInspectionRepository) FindExisting(ctx context.Context, owner model.OwnerIdentity, keys []string) (map[string]int64, error) {
	existing := make(map[string]int64)
	if len(keys) == 0 {
		return existing, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	for _, batch := range keyBatches(keys, maxKeysPerQuery) {
		query, args, err := squirrel.
			Select("nr_inspecao", "id").
			From(InspectionTable).
			Where(squirrel.Eq{"uploaded_by": string(owner), "nr_inspecao": batch}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build find existing query: %w", err)
		}

		if err := collectExisting(ctx, r.db, query, args, existing); err != nil {
			return nil, err
		}
	}

	return existing, nil
}

// InsertMany writes all records in one transaction.
func (r *SQLiteInspectionRepository) InsertMany(ctx context.Context, owner model.OwnerIdentity, records []model.InspectionRecord) ([]model.PersistedInspection, error) {
	if len(records) == 0 {
		return []model.PersistedInspection{}, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return insertAndReadBack(ctx, r.db, squirrel.StatementBuilder, owner, records, mapSQLiteError)
}

// ListByOwner returns the owner's inspections, newest first.
func (r *SQLiteInspectionRepository) ListByOwner(ctx context.Context, owner model.OwnerIdentity, limit int) ([]model.PersistedInspection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query, args, err := squirrel.
		Select(selectColumns...).
		From(InspectionTable).
		Where(squirrel.Eq{"uploaded_by": string(owner)}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	return queryInspections(ctx, r.db, query, args)
}

// Ping checks database connectivity.
func (r *SQLiteInspectionRepository) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

// GetStats returns statistics about the inspection database.
func (r *SQLiteInspectionRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	stats := make(map[string]interface{})

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+InspectionTable).Scan(&count); err != nil {
		return nil, err
	}
	stats["total_inspections"] = count

	var owners int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT uploaded_by) FROM "+InspectionTable).Scan(&owners); err == nil {
		stats["owners"] = owners
	}

	// Database file size (approximate from page count)
	var pageCount, pageSize int64
	r.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	r.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize

	return stats, nil
}

// Close closes the database connection.
func (r *SQLiteInspectionRepository) Close() error {
	return r.db.Close()
}

// mapSQLiteError converts UNIQUE constraint failures into ErrConflict.
func mapSQLiteError(err error, msg string) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w", msg, ErrConflict)
		case sqlite3.SQLITE_CONSTRAINT:
			if strings.Contains(sqliteErr.Error(), "UNIQUE") {
				return fmt.Errorf("%s: %w", msg, ErrConflict)
			}
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// insertAndReadBack inserts records in one transaction and reads the new
// rows back by key before committing. It serves database/sql backends.
func insertAndReadBack(
	ctx context.Context,
	db *sql.DB,
	sb squirrel.StatementBuilderType,
	owner model.OwnerIdentity,
	records []model.InspectionRecord,
	mapErr func(error, string) error,
) ([]model.PersistedInspection, error) {
	insert := sb.Insert(InspectionTable).Columns(insertColumns...)
	keys := make([]string, 0, len(records))
	for _, rec := range records {
		insert = insert.Values(plainValues(recordValues(owner, rec))...)
		keys = append(keys, rec.InspectionNumber)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert query: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, mapErr(err, "failed to insert inspections")
	}

	inserted := make([]model.PersistedInspection, 0, len(records))
	for _, batch := range keyBatches(keys, maxKeysPerQuery) {
		selectQuery, selectArgs, err := sb.
			Select(selectColumns...).
			From(InspectionTable).
			Where(squirrel.Eq{"uploaded_by": string(owner), "nr_inspecao": batch}).
			OrderBy("id").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build read back query: %w", err)
		}

		rows, err := queryInspections(ctx, tx, selectQuery, selectArgs)
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, rows...)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapErr(err, "failed to commit transaction")
	}

	sortByID(inserted)
	return inserted, nil
}

// collectExisting runs a (nr_inspecao, id) query and adds rows to existing.
func collectExisting(ctx context.Context, q queryer, query string, args []interface{}, existing map[string]int64) error {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to find existing inspections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key string
			id  int64
		)
		if err := rows.Scan(&key, &id); err != nil {
			return fmt.Errorf("failed to scan existing inspection: %w", err)
		}
		existing[key] = id
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to find existing inspections: %w", err)
	}
	return nil
}

// queryInspections runs a select laid out as selectColumns.
func queryInspections(ctx context.Context, q queryer, query string, args []interface{}) ([]model.PersistedInspection, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspections: %w", err)
	}
	defer rows.Close()

	result := make([]model.PersistedInspection, 0)
	for rows.Next() {
		p, err := scanInspection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inspection: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list inspections: %w", err)
	}
	return result, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Ensure SQLiteInspectionRepository implements InspectionRepository
var _ InspectionRepository = (*SQLiteInspectionRepository)(nil)
