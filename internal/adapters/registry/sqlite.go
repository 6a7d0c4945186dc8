package registry

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteRegistry stores deployment records in a SQLite database
type SQLiteRegistry struct {
	db *sqlx.DB
	mu sync.Mutex
}

// NewSQLiteRegistry opens the database at path and runs migrations
func NewSQLiteRegistry(path string) (*SQLiteRegistry, error) {
	db, err := sqlx.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open registry database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping registry database: %w", err)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRegistry{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func (r *SQLiteRegistry) Close() error {
	return r.db.Close()
}

type recordRow struct {
	Network      uint64         `db:"network"`
	Name         string         `db:"name"`
	Address      string         `db:"address"`
	Method       string         `db:"method"`
	Factory      string         `db:"factory"`
	Salt         string         `db:"salt"`
	InitCodeHash string         `db:"init_code_hash"`
	Artifact     string         `db:"artifact"`
	Args         string         `db:"args"`
	ArgsDigest   string         `db:"args_digest"`
	TxHash       sql.NullString `db:"tx_hash"`
	BlockNumber  sql.NullInt64  `db:"block_number"`
	Existing     bool           `db:"existing"`
	RecordedAt   string         `db:"recorded_at"`
}

func toRow(record *models.DeploymentRecord) (*recordRow, error) {
	args, err := json.Marshal(record.Args)
	if err != nil {
		return nil, err
	}

	row := &recordRow{
		Network:      uint64(record.Network),
		Name:         record.Name,
		Address:      record.Address.Hex(),
		Method:       string(record.Method),
		Factory:      record.Factory.Hex(),
		Salt:         record.Salt.Hex(),
		InitCodeHash: record.InitCodeHash.Hex(),
		Artifact:     record.Artifact,
		Args:         string(args),
		ArgsDigest:   record.ArgsDigest.Hex(),
		Existing:     record.Marker.Existing,
		RecordedAt:   record.RecordedAt.UTC().Format(time.RFC3339Nano),
	}
	if record.Marker.TxHash != (common.Hash{}) {
		row.TxHash = sql.NullString{String: record.Marker.TxHash.Hex(), Valid: true}
		row.BlockNumber = sql.NullInt64{Int64: int64(record.Marker.BlockNumber), Valid: true}
	}
	return row, nil
}

func (row *recordRow) toRecord() (*models.DeploymentRecord, error) {
	var args []string
	if err := json.Unmarshal([]byte(row.Args), &args); err != nil {
		return nil, fmt.Errorf("decode args of %s: %w", row.Name, err)
	}

	recordedAt, err := time.Parse(time.RFC3339Nano, row.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("decode recorded_at of %s: %w", row.Name, err)
	}

	record := &models.DeploymentRecord{
		Network:      domain.NetworkID(row.Network),
		Name:         row.Name,
		Address:      common.HexToAddress(row.Address),
		Method:       domain.DeploymentMethod(row.Method),
		Factory:      common.HexToAddress(row.Factory),
		Salt:         common.HexToHash(row.Salt),
		InitCodeHash: common.HexToHash(row.InitCodeHash),
		Artifact:     row.Artifact,
		Args:         args,
		ArgsDigest:   common.HexToHash(row.ArgsDigest),
		Marker:       models.DeploymentMarker{Existing: row.Existing},
		RecordedAt:   recordedAt,
	}
	if row.TxHash.Valid {
		record.Marker.TxHash = common.HexToHash(row.TxHash.String)
		record.Marker.BlockNumber = uint64(row.BlockNumber.Int64)
	}
	return record, nil
}

const selectRecords = `SELECT network, name, address, method, factory, salt, init_code_hash,
	artifact, args, args_digest, tx_hash, block_number, existing, recorded_at FROM deployments`

// Get returns the record of name on network
func (r *SQLiteRegistry) Get(ctx context.Context, network domain.NetworkID, name string) (*models.DeploymentRecord, error) {
	var row recordRow
	err := r.db.GetContext(ctx, &row, selectRecords+` WHERE network = ? AND name = ?`, uint64(network), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("deployment %s on network %s: %w", name, network, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query deployment %s: %w", name, err)
	}
	return row.toRecord()
}

// Put inserts a record inside a transaction. An identical address is a no-op,
// a different one is a conflict.
func (r *SQLiteRegistry) Put(ctx context.Context, record *models.DeploymentRecord) error {
	row, err := toRow(record)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.GetContext(ctx, &existing,
		`SELECT address FROM deployments WHERE network = ? AND name = ?`, row.Network, row.Name)
	switch {
	case err == nil:
		if common.HexToAddress(existing) == record.Address {
			return nil
		}
		return &domain.RecordConflictError{
			Network:  record.Network,
			Name:     record.Name,
			Existing: common.HexToAddress(existing),
			Proposed: record.Address,
		}
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("query deployment %s: %w", record.Name, err)
	}

	_, err = tx.NamedExecContext(ctx, `INSERT INTO deployments (
		network, name, address, method, factory, salt, init_code_hash,
		artifact, args, args_digest, tx_hash, block_number, existing, recorded_at
	) VALUES (
		:network, :name, :address, :method, :factory, :salt, :init_code_hash,
		:artifact, :args, :args_digest, :tx_hash, :block_number, :existing, :recorded_at
	)`, row)
	if err != nil {
		return fmt.Errorf("insert deployment %s: %w", record.Name, err)
	}

	return tx.Commit()
}

// List returns the records of network, or of every network when network is 0
func (r *SQLiteRegistry) List(ctx context.Context, network domain.NetworkID) ([]*models.DeploymentRecord, error) {
	var rows []recordRow
	var err error
	if network == 0 {
		err = r.db.SelectContext(ctx, &rows, selectRecords+` ORDER BY network, name`)
	} else {
		err = r.db.SelectContext(ctx, &rows, selectRecords+` WHERE network = ? ORDER BY network, name`, uint64(network))
	}
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}

	records := make([]*models.DeploymentRecord, 0, len(rows))
	for i := range rows {
		record, err := rows[i].toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
