package library

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

const queryTimeout = 5 * time.Second

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Database owns the single connection pool shared by login, the dashboard and
// every entity manager. Statements outside IssueLoan/ReturnLoan autocommit.
type Database struct {
	db     *sql.DB
	driver string
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to the database named by driver and dsn and verifies the
// connection. It does not create any tables; see Bootstrap.
func Open(ctx context.Context, driver, dsn string, maxOpenConns int) (*Database, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return &Database{db: db, driver: driver}, nil
}

// NewDatabase opens (or creates) the SQLite database at dbPath and bootstraps it
// with the given administrator. Mostly useful for tools and tests.
func NewDatabase(ctx context.Context, dbPath string, admin AdminAccount) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	d, err := Open(ctx, DriverSQLite, SQLiteDSN(dbPath), 1)
	if err != nil {
		return nil, err
	}
	if err := d.Bootstrap(ctx, admin); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// SQLiteDSN enables busy_timeout and foreign keys, which the set-null and
// cascade rules depend on.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", path)
}

// Close releases the pool.
func (d *Database) Close() error { return d.db.Close() }

// Driver reports the database/sql driver in use.
func (d *Database) Driver() string { return d.driver }

// ---------------------------------------------------------------------------
// Bootstrap
// ---------------------------------------------------------------------------

// AdminAccount is the administrator seeded on first run.
type AdminAccount struct {
	Username string
	Password string
	FullName string
}

// Bootstrap creates any missing tables and then inserts the administrator,
// leaving an existing account with the same username untouched. It must run
// before the first login attempt.
func (d *Database) Bootstrap(ctx context.Context, admin AdminAccount) error {
	if err := d.migrate(); err != nil {
		return err
	}
	inserted, err := d.seedAdmin(ctx, admin)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if inserted {
		slog.Info("created administrator account", "username", admin.Username)
	}
	return nil
}

func (d *Database) migrate() error {
	dialect, dir := "postgres", "migrations/postgres"
	if d.driver == DriverSQLite {
		dialect, dir = "sqlite3", "migrations/sqlite"
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	if err := goose.Up(d.db, dir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (d *Database) seedAdmin(ctx context.Context, admin AdminAccount) (bool, error) {
	hash, err := HashPassword(admin.Password)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := d.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, full_name, role) VALUES ($1, $2, $3, 'admin')
		ON CONFLICT (username) DO NOTHING`,
		admin.Username, hash, admin.FullName)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (d *Database) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *Database) count(ctx context.Context, query string, args ...any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var n int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (d *Database) exec(ctx context.Context, query string, args ...any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *Database) insert(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var id int64
	if err := q.QueryRowContext(ctx, query+` RETURNING id`, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// civilDate drops the clock part so DATE columns round-trip identically on
// both drivers.
func civilDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func nullString(s string) sql.NullString { return sql.NullString{String: s, Valid: s != ""} }

func nullInt(n int) sql.NullInt64 { return sql.NullInt64{Int64: int64(n), Valid: n != 0} }

func nullID(id int64) sql.NullInt64 { return sql.NullInt64{Int64: id, Valid: id != 0} }

func nullDate(t time.Time) sql.NullTime {
	return sql.NullTime{Time: civilDate(t), Valid: !t.IsZero()}
}

func dateOf(nt sql.NullTime) time.Time {
	if !nt.Valid {
		return time.Time{}
	}
	return civilDate(nt.Time)
}
