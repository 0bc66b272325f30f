package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// MenuQR is the shared connection pool, initialized once at startup.
var MenuQR *sql.DB

const (
	maxOpenConns    = 20
	maxIdleConns    = 10
	connMaxLifetime = 30 * time.Minute

	connectAttempts = 10
	connectDelay    = 2 * time.Second
)

func ConnectAndMigrate(databaseURL, migrationsDir string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	for i := 1; i <= connectAttempts; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		logrus.Printf("database not reachable (attempt %d/%d): %v", i, connectAttempts, err)
		time.Sleep(connectDelay)
	}
	if err != nil {
		return fmt.Errorf("database unreachable after %d attempts: %w", connectAttempts, err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	MenuQR = db
	return migrateUp(db, migrationsDir)
}

func migrateUp(db *sql.DB, migrationsDir string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Tx runs fn inside a transaction, committing only if fn returns nil.
func Tx(fn func(tx *sql.Tx) error) error {
	tx, err := MenuQR.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logrus.Printf("failed to rollback transaction, error: %v", rbErr)
		}
		return err
	}

	return tx.Commit()
}

func ShutdownDatabase() error {
	if MenuQR == nil {
		return nil
	}
	return MenuQR.Close()
}
