/*
Package sqlite provides the SQLite-backed record store.

PURPOSE:
  Persists employees and their leave records. This is the only stateful
  component - the leave and reconcile packages are pure and everything
  they compute is recomputed from what lives here.

KEY TABLES:
  employees:      One row per employee, plus one total_days_<year> REAL
                  column per tracked calendar year
  leave_records:  One row per leave event, AUTOINCREMENT ids (never reused)

GROWING SCHEMA:
  The set of total_days_<year> columns grows over calendar time. migrate()
  compares the injected year set against PRAGMA table_info and issues
  ALTER TABLE ADD COLUMN ... NOT NULL DEFAULT 0 for anything missing.
  Columns are only ever appended; existing rows are not touched, which is
  what lets records created before a bucket existed read back as zero.

CONCURRENCY:
  sync.RWMutex guards the connection the same way for all operations.
  On top of that, WithEmployeeLock serializes read-then-write sequences
  per employee id, so two concurrent edits of the same employee cannot
  interleave between the read and the write. Different employees proceed
  in parallel.

WAL MODE:
  SQLite is opened with WAL and foreign keys on:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./leave.db", years)
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - leave: Domain types this package loads and saves
  - reconcile/store.go: The interface the reconciler consumes
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-tracker/leave"
)

// Store implements persistence for employees and leave records.
type Store struct {
	db    *sql.DB
	mu    sync.RWMutex
	years leave.Years

	lockMu  sync.Mutex
	empLock map[int64]*sync.Mutex
}

// New opens (or creates) the database at dbPath and migrates the schema to
// the given year set. Use ":memory:" for an in-memory database.
func New(dbPath string, years leave.Years) (*Store, error) {
	if len(years) == 0 {
		return nil, fmt.Errorf("at least one tracked year is required")
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite allows a single writer, and a second pooled
	// connection to a ":memory:" path would see a different database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db, years: years, empLock: make(map[int64]*sync.Mutex)}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Years returns the bucket set this store was opened with.
func (s *Store) Years() leave.Years {
	return s.years
}

// =============================================================================
// MIGRATION
// =============================================================================

// migrate creates the base schema and appends any year columns the current
// bucket set has that the table does not.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL,
		leave_info TEXT,
		start_date TEXT,
		end_date TEXT,
		days REAL,
		application_time TEXT,
		leave_type TEXT,
		remark TEXT,
		FOREIGN KEY(employee_id) REFERENCES employees(id)
	);

	CREATE INDEX IF NOT EXISTS idx_leave_records_employee
		ON leave_records(employee_id, application_time);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	existing, err := s.tableColumns("employees")
	if err != nil {
		return err
	}
	for _, y := range s.years {
		col := yearCol(y)
		if existing[col] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE employees ADD COLUMN %s REAL NOT NULL DEFAULT 0", col)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("adding column %s: %w", col, err)
		}
	}
	return nil
}

func (s *Store) tableColumns(table string) (map[string]bool, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

func yearCol(year int) string {
	return fmt.Sprintf("total_days_%d", year)
}

func (s *Store) yearCols() []string {
	cols := make([]string, len(s.years))
	for i, y := range s.years {
		cols[i] = yearCol(y)
	}
	return cols
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// ListEmployees returns all employees in id order, buckets normalized.
func (s *Store) ListEmployees(ctx context.Context) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf("SELECT id, name, email, %s FROM employees ORDER BY id",
		strings.Join(s.yearCols(), ", "))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emps []leave.Employee
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		emps = append(emps, emp)
	}
	return emps, rows.Err()
}

// GetEmployee returns the employee or nil when the id is unknown.
func (s *Store) GetEmployee(ctx context.Context, id int64) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf("SELECT id, name, email, %s FROM employees WHERE id = ?",
		strings.Join(s.yearCols(), ", "))
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	emp, err := s.scanEmployee(rows)
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (s *Store) scanEmployee(rows *sql.Rows) (leave.Employee, error) {
	var emp leave.Employee
	buckets := make([]float64, len(s.years))

	dest := []any{&emp.ID, &emp.Name, &emp.Email}
	for i := range buckets {
		dest = append(dest, &buckets[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return leave.Employee{}, err
	}

	emp.Entitlements = make([]decimal.Decimal, len(buckets))
	for i, v := range buckets {
		emp.Entitlements[i] = decimal.NewFromFloat(v)
	}
	return emp, nil
}

// CreateEmployee inserts one employee with its caller-assigned id.
// Returns leave.ErrDuplicateEmployee when the id exists.
func (s *Store) CreateEmployee(ctx context.Context, emp leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.insertEmployeeSQL(), s.employeeArgs(emp)...)
	return mapConstraint(err)
}

// UpdateEmployee replaces name, email, and every entitlement bucket.
func (s *Store) UpdateEmployee(ctx context.Context, emp leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sets := []string{"name = ?", "email = ?"}
	for _, col := range s.yearCols() {
		sets = append(sets, col+" = ?")
	}
	query := fmt.Sprintf("UPDATE employees SET %s WHERE id = ?", strings.Join(sets, ", "))

	args := []any{emp.Name, emp.Email}
	for _, v := range bucketValues(emp, len(s.years)) {
		args = append(args, v)
	}
	args = append(args, emp.ID)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return leave.ErrEmployeeNotFound
	}
	return nil
}

// DeleteEmployee removes the employee and, in the same transaction, every
// leave record it owns.
func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM leave_records WHERE employee_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return leave.ErrEmployeeNotFound
	}
	return tx.Commit()
}

// InsertEmployees appends a batch atomically: any duplicate id rolls the
// whole batch back and nothing is inserted.
func (s *Store) InsertEmployees(ctx context.Context, emps []leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.insertEmployeeSQL())
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, emp := range emps {
		if _, err := stmt.ExecContext(ctx, s.employeeArgs(emp)...); err != nil {
			return mapConstraint(err)
		}
	}
	return tx.Commit()
}

func (s *Store) insertEmployeeSQL() string {
	cols := append([]string{"id", "name", "email"}, s.yearCols()...)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO employees (%s) VALUES (%s)", strings.Join(cols, ", "), marks)
}

func (s *Store) employeeArgs(emp leave.Employee) []any {
	args := []any{emp.ID, emp.Name, emp.Email}
	for _, v := range bucketValues(emp, len(s.years)) {
		args = append(args, v)
	}
	return args
}

// bucketValues renders exactly n bucket values, zero-filling short records.
func bucketValues(emp leave.Employee, n int) []float64 {
	vals := make([]float64, n)
	for i := 0; i < n && i < len(emp.Entitlements); i++ {
		vals[i], _ = emp.Entitlements[i].Float64()
	}
	return vals
}

// mapConstraint translates a SQLite primary-key violation into the domain
// conflict error; everything else passes through.
func mapConstraint(err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return leave.ErrDuplicateEmployee
	}
	return err
}

// =============================================================================
// LEAVE RECORDS
// =============================================================================

const eventColumns = "id, employee_id, leave_info, start_date, end_date, days, application_time, leave_type, remark"

// InsertEvent appends one leave record and returns its assigned id.
func (s *Store) InsertEvent(ctx context.Context, ev leave.Event) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_records
			(employee_id, leave_info, start_date, end_date, days, application_time, leave_type, remark)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.EmployeeID, ev.Summary, nullStr(ev.StartDate), nullStr(ev.EndDate),
		nullDays(ev.Days), nullStr(ev.AppliedAt), ev.Kind, nullStr(ev.Remark))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetEvent returns one leave record scoped to its owner, or nil when no
// such record exists for that employee.
func (s *Store) GetEvent(ctx context.Context, employeeID, eventID int64) (*leave.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM leave_records WHERE id = ? AND employee_id = ?",
		eventID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	ev, err := scanEvent(rows)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// UpdateEvent replaces every mutable field of one leave record.
func (s *Store) UpdateEvent(ctx context.Context, ev leave.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE leave_records SET
			leave_info = ?, start_date = ?, end_date = ?, days = ?,
			application_time = ?, leave_type = ?, remark = ?
		WHERE id = ? AND employee_id = ?`,
		ev.Summary, nullStr(ev.StartDate), nullStr(ev.EndDate), nullDays(ev.Days),
		nullStr(ev.AppliedAt), ev.Kind, nullStr(ev.Remark), ev.ID, ev.EmployeeID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return leave.ErrLeaveNotFound
	}
	return nil
}

// DeleteEvent removes one leave record scoped to its owner.
func (s *Store) DeleteEvent(ctx context.Context, employeeID, eventID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM leave_records WHERE id = ? AND employee_id = ?", eventID, employeeID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return leave.ErrLeaveNotFound
	}
	return nil
}

// EventsByEmployee returns one employee's records in replay order:
// application_time ascending as text, NULLs first (SQLite's ASC default).
func (s *Store) EventsByEmployee(ctx context.Context, employeeID int64) ([]leave.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM leave_records WHERE employee_id = ? ORDER BY application_time ASC",
		employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []leave.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// HasDuplicateEvent reports whether the employee already has a record with
// this exact application-time label and summary. IS comparison makes two
// NULL labels match, which the import dedup relies on.
func (s *Store) HasDuplicateEvent(ctx context.Context, employeeID int64, appliedAt *string, summary string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM leave_records
		WHERE employee_id = ? AND application_time IS ? AND leave_info IS ?`,
		employeeID, nullStr(appliedAt), summary).Scan(&n)
	return n > 0, err
}

func scanEvent(rows *sql.Rows) (leave.Event, error) {
	var (
		ev        leave.Event
		summary   sql.NullString
		start     sql.NullString
		end       sql.NullString
		days      sql.NullFloat64
		appliedAt sql.NullString
		kind      sql.NullString
		remark    sql.NullString
	)
	if err := rows.Scan(&ev.ID, &ev.EmployeeID, &summary, &start, &end, &days, &appliedAt, &kind, &remark); err != nil {
		return leave.Event{}, err
	}

	ev.Summary = summary.String
	ev.StartDate = fromNull(start)
	ev.EndDate = fromNull(end)
	ev.AppliedAt = fromNull(appliedAt)
	ev.Remark = fromNull(remark)
	ev.Kind = kind.String
	if ev.Kind == "" {
		ev.Kind = leave.KindAnnual
	}
	if days.Valid {
		d := decimal.NewFromFloat(days.Float64)
		ev.Days = &d
	}
	return ev, nil
}

func nullStr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullDays(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	v, _ := d.Float64()
	return v
}

func fromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// =============================================================================
// PER-EMPLOYEE SERIALIZATION
// =============================================================================

// WithEmployeeLock runs fn while holding a lock keyed by employee id.
// Read-then-write sequences (fetch record, recompute, write back) go
// through here so concurrent edits of the same employee cannot interleave
// between the read and the write. Locks are lazily created and retained;
// the set of employees is small and bounded.
func (s *Store) WithEmployeeLock(id int64, fn func() error) error {
	s.lockMu.Lock()
	l, ok := s.empLock[id]
	if !ok {
		l = &sync.Mutex{}
		s.empLock[id] = l
	}
	s.lockMu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn()
}
