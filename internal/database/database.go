package database

import (
	"fmt"
	"log"
	"mobiblog/internal/config"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type DB struct {
	*sqlx.DB

	// DSN is kept for connections opened outside the pool, such as the
	// LISTEN connection of the change feed.
	DSN string
}

// DSN builds the connection string. origin becomes the application_name of
// every session, which the storage trigger reports as the change origin.
func DSN(cfg *config.Config, origin string) string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.DbHOST,
		cfg.DB.DbPORT,
		cfg.DB.DbUSER,
		cfg.DB.DbPASSWORD,
		cfg.DB.DbNAME,
		cfg.DB.DbSSLMODE,
	)
	if origin != "" {
		connStr += " application_name=" + origin
	}
	return connStr
}

// ConnectDB opens the Postgres pool used by the postgres storage driver and
// applies the storage migration.
func ConnectDB(cfg *config.Config, origin string) (*DB, error) {
	connStr := DSN(cfg, origin)

	log.Printf("Connecting to database: host=%s, dbname=%s", cfg.DB.DbHOST, cfg.DB.DbNAME)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	dbStruct := &DB{DB: db, DSN: connStr}

	if err := dbStruct.RunMigrations(cfg.Storage.MigrationsPath); err != nil {
		dbStruct.Close()
		return nil, err
	}

	if err := dbStruct.HealthCheck(); err != nil {
		dbStruct.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	log.Println("Connected to PostgreSQL")
	return dbStruct, nil
}

func (db *DB) CloseDB() error {
	return db.DB.Close()
}

func (db *DB) RunMigrations(migrationFilePath string) error {
	migrationSQL, err := os.ReadFile(migrationFilePath)
	if err != nil {
		return fmt.Errorf("reading migration file %s: %w", migrationFilePath, err)
	}

	log.Printf("Applying migrations from %s", migrationFilePath)

	if _, err := db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}

func (db *DB) HealthCheck() error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	return db.Ping()
}
