package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/model"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// MySQLInspectionRepository implements InspectionRepository using MySQL.
type MySQLInspectionRepository struct {
	db      *sql.DB
	timeout time.Duration
}

// NewMySQLInspectionRepository creates a new MySQL inspection repository on an
// open connection pool and bootstraps the table. The DSN must use parseTime=true.
func NewMySQLInspectionRepository(ctx context.Context, db *sql.DB, timeout time.Duration) (*MySQLInspectionRepository, error) {
	r := &MySQLInspectionRepository{db: db, timeout: timeout}

	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	if err := r.createTables(ctx); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("mysql inspection repository initialized")
	return r, nil
}

// OpenMySQL opens and pings a MySQL pool.
func OpenMySQL(ctx context.Context, dsn string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	if maxConns <= 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns / 2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}
	return db, nil
}

func (r *MySQLInspectionRepository) createTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS irisk_inspecoes (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		uploaded_by VARCHAR(255) NOT NULL,
		nr_inspecao VARCHAR(50) NOT NULL,
		nr_sinistro VARCHAR(50) NULL,
		data_inclusao DATETIME(3) NULL,
		prioridade VARCHAR(50) NULL,
		empresa_inspecao VARCHAR(10) NULL,
		base_empresa VARCHAR(255) NULL,
		inspetor VARCHAR(255) NULL,
		operador VARCHAR(255) NULL,
		agendamento DATETIME(3) NULL,
		dias_cia_previa INT NULL,
		data_proposta DATETIME(3) NULL,
		dias_inspecao INT NULL,
		dias_inspetor INT NULL,
		data_atribuicao_empresa DATETIME(3) NULL,
		data_atribuicao_inspetor DATETIME(3) NULL,
		enquadramento VARCHAR(50) NULL,
		categoria VARCHAR(50) NULL,
		lmg DECIMAL(11,2) NULL,
		segurado VARCHAR(255) NULL,
		tipo_seguro VARCHAR(50) NULL,
		endereco VARCHAR(1000) NULL,
		data_ultima_atividade DATETIME(3) NULL,
		atividade_atual VARCHAR(255) NULL,
		ultima_tarefa DATETIME(3) NULL,
		created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		UNIQUE KEY uq_irisk_inspecoes_owner_nr (uploaded_by, nr_inspecao),
		KEY idx_irisk_inspecoes_owner_created (uploaded_by, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

	_, err := r.db.ExecContext(ctx, query)
	return err
}

// FindExisting returns the ids of keys already stored for owner.
func (r *MySQLInspectionRepository) FindExisting(ctx context.Context, owner model.OwnerIdentity, keys []string) (map[string]int64, error) {
	existing := make(map[string]int64)
	if len(keys) == 0 {
		return existing, nil
	}

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

// InsertMany writes all records in one transaction. MySQL has no RETURNING,
// so the new rows are read back by key inside the same transaction.
func (r *MySQLInspectionRepository) InsertMany(ctx context.Context, owner model.OwnerIdentity, records []model.InspectionRecord) ([]model.PersistedInspection, error) {
	if len(records) == 0 {
		return []model.PersistedInspection{}, nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return insertAndReadBack(ctx, r.db, squirrel.StatementBuilder, owner, records, mapMySQLError)
}

// ListByOwner returns the owner's inspections, newest first.
func (r *MySQLInspectionRepository) ListByOwner(ctx context.Context, owner model.OwnerIdentity, limit int) ([]model.PersistedInspection, error) {
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
func (r *MySQLInspectionRepository) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

// GetStats returns statistics about the inspection table.
func (r *MySQLInspectionRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
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

	var lastInsert sql.NullTime
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(created_at) FROM "+InspectionTable).Scan(&lastInsert); err == nil && lastInsert.Valid {
		stats["last_insert"] = lastInsert.Time
	}

	dbStats := r.db.Stats()
	stats["connections"] = map[string]interface{}{
		"open":     dbStats.OpenConnections,
		"in_use":   dbStats.InUse,
		"idle":     dbStats.Idle,
		"max_open": dbStats.MaxOpenConnections,
	}

	return stats, nil
}

// Close closes the database connection.
func (r *MySQLInspectionRepository) Close() error {
	return r.db.Close()
}

// mapMySQLError converts duplicate-key failures into ErrConflict.
func mapMySQLError(err error, msg string) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%s: %w", msg, ErrConflict)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Ensure MySQLInspectionRepository implements InspectionRepository
var _ InspectionRepository = (*MySQLInspectionRepository)(nil)
