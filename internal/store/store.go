package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists failed orders, non-existing product codes and daily task
// stats between process restarts. SQLite with WAL; a single connection keeps
// writes serialized (and makes :memory: DSNs usable in tests).
type Store struct {
	db *sql.DB
}

type FailedOrder struct {
	OrderID        string  `json:"order_id"`
	CustomerName   string  `json:"customer_name"`
	PhoneNumber    string  `json:"phone_number"`
	DocumentType   string  `json:"document_type"`
	DocumentNumber string  `json:"document_number"`
	DepartmentCode string  `json:"department_code"`
	OrderDate      string  `json:"order_date"`
	Province       string  `json:"province"`
	District       string  `json:"district"`
	Ward           string  `json:"ward"`
	Address        string  `json:"address"`
	ProductCode    string  `json:"product_code"`
	ProductName    string  `json:"product_name"`
	IMEI           string  `json:"imei"`
	Quantity       float64 `json:"quantity"`
	Revenue        float64 `json:"revenue"`
	SourceType     string  `json:"source_type"`
	Status         string  `json:"status"`
	ErrorCode      string  `json:"error_code"`
	UpdatedAt      string  `json:"updated_at"`
}

type DailyStats struct {
	StatDate       string `json:"stat_date"`
	CompletedTasks int    `json:"completed_tasks"`
	FailedTasks    int    `json:"failed_tasks"`
	LastUpdated    string `json:"last_updated"`
}

func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT NOT NULL,
			customer_name TEXT,
			phone_number TEXT,
			document_type TEXT,
			document_number TEXT,
			department_code TEXT,
			order_date TEXT,
			province TEXT,
			district TEXT,
			ward TEXT,
			address TEXT,
			product_code TEXT,
			product_name TEXT,
			imei TEXT,
			quantity REAL,
			revenue REAL,
			source_type TEXT,
			status TEXT,
			error_code TEXT,
			updated_at TEXT,
			PRIMARY KEY (order_id, product_code, imei)
		)`,
		`CREATE TABLE IF NOT EXISTS non_existing_codes (
			product_code TEXT NOT NULL UNIQUE,
			order_id TEXT,
			detected_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS daily_task_stats (
			stat_date TEXT PRIMARY KEY,
			completed_tasks INTEGER DEFAULT 0,
			failed_tasks INTEGER DEFAULT 0,
			last_updated TEXT
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// UpsertOrder inserts the failed order or replaces the record keyed by
// order_id + product_code + imei.
func (s *Store) UpsertOrder(o FailedOrder) error {
	o.Status = "needs_retry"
	o.UpdatedAt = time.Now().Format(time.RFC3339)
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO orders (
			order_id, customer_name, phone_number, document_type, document_number,
			department_code, order_date, province, district, ward, address,
			product_code, product_name, imei, quantity, revenue, source_type,
			status, error_code, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderID, o.CustomerName, o.PhoneNumber, o.DocumentType, o.DocumentNumber,
		o.DepartmentCode, o.OrderDate, o.Province, o.District, o.Ward, o.Address,
		o.ProductCode, o.ProductName, o.IMEI, o.Quantity, o.Revenue, o.SourceType,
		o.Status, o.ErrorCode, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert order %s: %w", o.OrderID, err)
	}
	return nil
}

// DeleteOrder removes a successfully imported order; its product code also
// leaves the non-existing list since the CRM clearly knows it now.
func (s *Store) DeleteOrder(orderID, productCode string) error {
	if _, err := s.db.Exec(`DELETE FROM orders WHERE order_id = ?`, orderID); err != nil {
		return fmt.Errorf("delete order %s: %w", orderID, err)
	}
	if productCode != "" {
		if _, err := s.db.Exec(`DELETE FROM non_existing_codes WHERE product_code = ?`, productCode); err != nil {
			return fmt.Errorf("delete non-existing code %s: %w", productCode, err)
		}
	}
	return nil
}

func (s *Store) InsertNonExistingCode(code, orderID string) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO non_existing_codes (product_code, order_id, detected_at)
		VALUES (?, ?, ?)`, code, orderID, time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert non-existing code %s: %w", code, err)
	}
	return nil
}

// BumpDailyStats upserts today's counters.
func (s *Store) BumpDailyStats(completed bool) error {
	today := time.Now().Format("2006-01-02")
	now := time.Now().Format(time.RFC3339)
	var q string
	if completed {
		q = `INSERT INTO daily_task_stats (stat_date, completed_tasks, failed_tasks, last_updated)
			VALUES (?, 1, 0, ?)
			ON CONFLICT(stat_date) DO UPDATE SET
				completed_tasks = completed_tasks + 1,
				last_updated = excluded.last_updated`
	} else {
		q = `INSERT INTO daily_task_stats (stat_date, completed_tasks, failed_tasks, last_updated)
			VALUES (?, 0, 1, ?)
			ON CONFLICT(stat_date) DO UPDATE SET
				failed_tasks = failed_tasks + 1,
				last_updated = excluded.last_updated`
	}
	if _, err := s.db.Exec(q, today, now); err != nil {
		return fmt.Errorf("bump daily stats: %w", err)
	}
	return nil
}

func (s *Store) PendingOrders() ([]FailedOrder, error) {
	rows, err := s.db.Query(`
		SELECT order_id, customer_name, phone_number, document_type, document_number,
			department_code, order_date, province, district, ward, address,
			product_code, product_name, imei, quantity, revenue, source_type,
			status, error_code, updated_at
		FROM orders WHERE status = 'needs_retry' ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query pending orders: %w", err)
	}
	defer rows.Close()

	var out []FailedOrder
	for rows.Next() {
		var o FailedOrder
		if err := rows.Scan(
			&o.OrderID, &o.CustomerName, &o.PhoneNumber, &o.DocumentType, &o.DocumentNumber,
			&o.DepartmentCode, &o.OrderDate, &o.Province, &o.District, &o.Ward, &o.Address,
			&o.ProductCode, &o.ProductName, &o.IMEI, &o.Quantity, &o.Revenue, &o.SourceType,
			&o.Status, &o.ErrorCode, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) RecentDailyStats(days int) ([]DailyStats, error) {
	rows, err := s.db.Query(`
		SELECT stat_date, completed_tasks, failed_tasks, COALESCE(last_updated, '')
		FROM daily_task_stats ORDER BY stat_date DESC LIMIT ?`, days)
	if err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	defer rows.Close()

	var out []DailyStats
	for rows.Next() {
		var d DailyStats
		if err := rows.Scan(&d.StatDate, &d.CompletedTasks, &d.FailedTasks, &d.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan daily stats: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
