package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	_ "github.com/lib/pq"           // Driver do Postgres
	_ "github.com/mattn/go-sqlite3" // Driver do SQLite
	"github.com/pressly/goose/v3"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrations embed.FS

// goose guarda dialeto e FS em estado global
var migrateMu sync.Mutex

// NewDBConnection abre a conexão, configura o pool e testa o Ping.
func NewDBConnection(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	switch driver {
	case DialectSQLite:
		db.SetMaxOpenConns(1) // SQLite só tem um writer
		db.SetMaxIdleConns(1)
	default:
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate aplica as migrations embutidas do dialeto.
func Migrate(db *sql.DB, dialect string) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations/"+dialect); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrationVersion devolve a versão atual do schema.
func MigrationVersion(db *sql.DB, dialect string) (int64, error) {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("failed to set dialect: %w", err)
	}
	return goose.GetDBVersion(db)
}

// Open = NewDBConnection + Migrate.
func Open(driver, dsn string) (*sql.DB, error) {
	db, err := NewDBConnection(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, driver); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
