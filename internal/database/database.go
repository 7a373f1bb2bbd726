package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"botpedidos/internal/models"
)

type DB struct {
	conn   *sql.DB
	driver string // "postgres" or "sqlite3"
	logger *zap.Logger
}

// Open connects to the catalog store. A postgres:// (or postgresql://) DSN
// selects lib/pq; anything else is treated as a SQLite file path, which is
// the local-dev and test default. SQLite opens also create the catalog
// tables if absent — Postgres schema provisioning stays external.
func Open(dsn string, logger *zap.Logger) (*DB, error) {
	driver := "sqlite3"
	connStr := dsn + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "postgres"
		connStr = dsn
	} else if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("database: create data dir: %w", err)
		}
	}

	conn, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	if driver == "sqlite3" {
		// Single writer avoids SQLITE_BUSY beyond the busy_timeout.
		conn.SetMaxOpenConns(1)
	}

	db := &DB{conn: conn, driver: driver, logger: logger}
	if driver == "sqlite3" {
		if err := db.createTables(); err != nil {
			conn.Close()
			return nil, err
		}
	}
	logger.Info("database ready", zap.String("driver", driver))
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS categories (
id          TEXT PRIMARY KEY,
nombre      TEXT NOT NULL,
descripcion TEXT,
estado      INTEGER NOT NULL DEFAULT 1
)`,
		`CREATE TABLE IF NOT EXISTS products (
id            TEXT PRIMARY KEY,
nombre        TEXT NOT NULL,
descripcion   TEXT,
precio        NUMERIC NOT NULL,
codigo_barras TEXT UNIQUE,
stock_actual  INTEGER NOT NULL DEFAULT 0,
categoria_id  TEXT NOT NULL,
imagen_url    TEXT,
estado        INTEGER NOT NULL DEFAULT 1,
FOREIGN KEY(categoria_id) REFERENCES categories(id)
)`,
	}

	for _, stmt := range stmts {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("database: create tables: %w", err)
		}
	}
	return nil
}

// rebind converts ?-style placeholders to $n for Postgres.
func (db *DB) rebind(query string) string {
	if db.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ─── Catalog read contract ────────────────────────────────────────────────────

// SearchProducts returns active products whose nombre contains the query,
// case-insensitively, ordered by nombre then id. Callers that only want the
// top matches truncate the slice themselves.
func (db *DB) SearchProducts(ctx context.Context, query string) ([]models.SearchResult, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := db.conn.QueryContext(ctx, db.rebind(
		`SELECT nombre, precio, stock_actual
		 FROM products
		 WHERE estado AND LOWER(nombre) LIKE ?
		 ORDER BY nombre, id`),
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("database: search products: %w", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.Nombre, &r.Precio, &r.StockActual); err != nil {
			return nil, fmt.Errorf("database: scan product: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ─── Seed helpers (local dev and tests) ──────────────────────────────────────

// InsertCategory creates a category row, assigning an ID when unset.
func (db *DB) InsertCategory(ctx context.Context, id uuid.UUID, nombre string) (uuid.UUID, error) {
	if id == uuid.Nil {
		id = uuid.New()
	}
	_, err := db.conn.ExecContext(ctx, db.rebind(
		`INSERT INTO categories(id, nombre, estado) VALUES(?, ?, ?)`),
		id.String(), nombre, true,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("database: insert category: %w", err)
	}
	return id, nil
}

// InsertProduct creates a product row, assigning an ID when unset.
func (db *DB) InsertProduct(ctx context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := db.conn.ExecContext(ctx, db.rebind(
		`INSERT INTO products(id, nombre, descripcion, precio, codigo_barras, stock_actual, categoria_id, imagen_url, estado)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID.String(), p.Nombre, p.Descripcion, p.Precio, nullable(p.CodigoBarras),
		p.StockActual, p.CategoriaID.String(), nullable(p.ImagenURL), p.Estado,
	)
	if err != nil {
		return fmt.Errorf("database: insert product: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
