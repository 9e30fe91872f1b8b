/*
Package sqlite provides the SQLite-backed persistence for the portal.

PURPOSE:
  Implements fees.Store plus the read models behind the dashboard pages
  (students, CBT tests and attempts, attendance, results, diary, news).
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

APPEND-ONLY ENFORCEMENT:
  payment_records is append-only from the portal's side:
  - No UPDATE or DELETE statements here except the verification status
    transition (UpdatePaymentStatus), which belongs to the external
    verification workflow
  - A UNIQUE index on reference backs the idempotency check

KEY TABLES:
  students:          Portal entities
  fee_line_items:    Fee structure per (class, year, term)
  payment_records:   Student payment history
  cbt_tests:         Test windows per class
  cbt_attempts:      One row per student attempt
  attendance_records, subject_results, diary_entries, news_posts:
                     Dashboard page data

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Submit-time balance re-checks in
  fees.Ledger rely on reads seeing every prior append, which the write
  lock guarantees.

WAL MODE:
  SQLite is opened with WAL for better concurrency and crash recovery.

USAGE:
  store, err := sqlite.New("./data/portal.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger := fees.NewLedger(store)

SEE ALSO:
  - fees/ledger.go: Interface definitions this store satisfies
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sankore/school-portal/academics"
	"github.com/sankore/school-portal/cbt"
	"github.com/sankore/school-portal/fees"
)

// Store implements fees.Store and the portal read models using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		class_id TEXT NOT NULL,
		admission_no TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_students_class ON students(class_id);

	CREATE TABLE IF NOT EXISTS fee_line_items (
		id TEXT PRIMARY KEY,
		class_id TEXT NOT NULL,
		year TEXT NOT NULL,
		term TEXT NOT NULL,
		fee_type TEXT NOT NULL,
		description TEXT,
		amount TEXT NOT NULL,
		allow_installments INTEGER NOT NULL DEFAULT 0,
		max_installments INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_fee_items_class_year_term
		ON fee_line_items(class_id, year, term);

	-- Append-only payment history (hot path: totals per student)
	CREATE TABLE IF NOT EXISTS payment_records (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		year TEXT NOT NULL,
		term TEXT NOT NULL,
		fee_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL,
		method TEXT,
		reference TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_student
		ON payment_records(student_id, year, term);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_reference
		ON payment_records(reference) WHERE reference IS NOT NULL AND reference != '';

	CREATE TABLE IF NOT EXISTS cbt_tests (
		id TEXT PRIMARY KEY,
		class_id TEXT NOT NULL,
		title TEXT NOT NULL,
		subject TEXT,
		opens_at TEXT NOT NULL,
		closes_at TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		question_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_cbt_tests_class ON cbt_tests(class_id);

	CREATE TABLE IF NOT EXISTS cbt_attempts (
		test_id TEXT NOT NULL,
		student_id TEXT NOT NULL,
		started_at TEXT NOT NULL,
		submitted_at TEXT,
		score REAL,
		PRIMARY KEY (test_id, student_id)
	);

	CREATE TABLE IF NOT EXISTS attendance_records (
		student_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		PRIMARY KEY (student_id, date)
	);

	CREATE TABLE IF NOT EXISTS subject_results (
		student_id TEXT NOT NULL,
		year TEXT NOT NULL,
		term TEXT NOT NULL,
		subject TEXT NOT NULL,
		score REAL NOT NULL,
		PRIMARY KEY (student_id, year, term, subject)
	);

	CREATE TABLE IF NOT EXISTS diary_entries (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT
	);

	CREATE TABLE IF NOT EXISTS news_posts (
		id TEXT PRIMARY KEY,
		published_at TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Reset drops all data. Used by demo scenario loading.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tables := []string{
		"students", "fee_line_items", "payment_records",
		"cbt_tests", "cbt_attempts", "attendance_records",
		"subject_results", "diary_entries", "news_posts",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// STUDENTS
// =============================================================================

// Student is a portal entity record.
type Student struct {
	ID          fees.StudentID
	Name        string
	ClassID     fees.ClassID
	AdmissionNo string
}

func (s *Store) SaveStudent(ctx context.Context, st Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO students (id, name, class_id, admission_no) VALUES (?, ?, ?, ?)`,
		string(st.ID), st.Name, string(st.ClassID), st.AdmissionNo)
	return err
}

func (s *Store) GetStudent(ctx context.Context, id fees.StudentID) (Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var st Student
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, class_id, admission_no FROM students WHERE id = ?`, string(id)).
		Scan(&st.ID, &st.Name, &st.ClassID, &st.AdmissionNo)
	if err == sql.ErrNoRows {
		return Student{}, fees.ErrStudentNotFound
	}
	return st, err
}

func (s *Store) ListStudents(ctx context.Context) ([]Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, class_id, admission_no FROM students ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Name, &st.ClassID, &st.AdmissionNo); err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// =============================================================================
// FEE LINE ITEMS
// =============================================================================

func (s *Store) SaveLineItems(ctx context.Context, items []fees.FeeLineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, it := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO fee_line_items
			 (id, class_id, year, term, fee_type, description, amount, allow_installments, max_installments)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(it.ID), string(it.ClassID), string(it.Year), string(it.Term),
			string(it.FeeType), it.Description, it.Amount.String(),
			boolToInt(it.AllowInstallments), it.MaxInstallments)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) LineItemsByClass(ctx context.Context, classID fees.ClassID) ([]fees.FeeLineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, class_id, year, term, fee_type, description, amount, allow_installments, max_installments
		 FROM fee_line_items WHERE class_id = ? ORDER BY year DESC, term, fee_type`,
		string(classID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []fees.FeeLineItem
	for rows.Next() {
		var (
			it                fees.FeeLineItem
			amount            string
			allowInstallments int
		)
		if err := rows.Scan(&it.ID, &it.ClassID, &it.Year, &it.Term, &it.FeeType,
			&it.Description, &amount, &allowInstallments, &it.MaxInstallments); err != nil {
			return nil, err
		}
		it.Amount = fees.MoneyFromString(amount)
		it.AllowInstallments = allowInstallments != 0
		items = append(items, it)
	}
	return items, rows.Err()
}

// =============================================================================
// PAYMENT RECORDS
// =============================================================================

func (s *Store) AppendPayment(ctx context.Context, rec fees.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment_records
		 (id, student_id, year, term, fee_type, amount, status, method, reference, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.StudentID), string(rec.Year), string(rec.Term),
		string(rec.FeeTypeOrAll()), rec.Amount.String(), string(rec.Status),
		rec.Method, rec.Reference, rec.Notes, rec.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) PaymentsByStudent(ctx context.Context, studentID fees.StudentID) ([]fees.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, year, term, fee_type, amount, status, method, reference, notes, created_at
		 FROM payment_records WHERE student_id = ? ORDER BY created_at`,
		string(studentID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []fees.PaymentRecord
	for rows.Next() {
		var (
			rec       fees.PaymentRecord
			amount    string
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.Year, &rec.Term, &rec.FeeType,
			&amount, &rec.Status, &rec.Method, &rec.Reference, &rec.Notes, &createdAt); err != nil {
			return nil, err
		}
		rec.Amount = fees.MoneyFromString(amount)
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) PaymentExists(ctx context.Context, reference string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM payment_records WHERE reference = ?`, reference).Scan(&count)
	return count > 0, err
}

// UpdatePaymentStatus is the verification workflow's entry point. The
// portal itself never calls this.
func (s *Store) UpdatePaymentStatus(ctx context.Context, paymentID string, status fees.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE payment_records SET status = ? WHERE id = ?`, string(status), paymentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("payment %s not found", paymentID)
	}
	return nil
}

// =============================================================================
// CBT TESTS AND ATTEMPTS
// =============================================================================

func (s *Store) SaveCBTTest(ctx context.Context, classID fees.ClassID, t cbt.Test) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cbt_tests
		 (id, class_id, title, subject, opens_at, closes_at, duration_minutes, question_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(classID), t.Title, t.Subject,
		t.OpensAt.UTC().Format(time.RFC3339), t.ClosesAt.UTC().Format(time.RFC3339),
		t.DurationMinutes, t.QuestionCount)
	return err
}

func (s *Store) CBTTestsByClass(ctx context.Context, classID fees.ClassID) ([]cbt.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, subject, opens_at, closes_at, duration_minutes, question_count
		 FROM cbt_tests WHERE class_id = ? ORDER BY opens_at`,
		string(classID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []cbt.Test
	for rows.Next() {
		var (
			t                 cbt.Test
			opensAt, closesAt string
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Subject, &opensAt, &closesAt,
			&t.DurationMinutes, &t.QuestionCount); err != nil {
			return nil, err
		}
		t.OpensAt, _ = time.Parse(time.RFC3339, opensAt)
		t.ClosesAt, _ = time.Parse(time.RFC3339, closesAt)
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

func (s *Store) SaveCBTAttempt(ctx context.Context, a cbt.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var submittedAt any
	if a.SubmittedAt != nil {
		submittedAt = a.SubmittedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cbt_attempts (test_id, student_id, started_at, submitted_at, score)
		 VALUES (?, ?, ?, ?, ?)`,
		a.TestID, a.StudentID, a.StartedAt.UTC().Format(time.RFC3339), submittedAt, a.Score)
	return err
}

// CBTAttemptsByStudent returns the student's attempts keyed by test id.
func (s *Store) CBTAttemptsByStudent(ctx context.Context, studentID fees.StudentID) (map[string]cbt.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT test_id, student_id, started_at, submitted_at, score
		 FROM cbt_attempts WHERE student_id = ?`,
		string(studentID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make(map[string]cbt.Attempt)
	for rows.Next() {
		var (
			a           cbt.Attempt
			startedAt   string
			submittedAt sql.NullString
		)
		if err := rows.Scan(&a.TestID, &a.StudentID, &startedAt, &submittedAt, &a.Score); err != nil {
			return nil, err
		}
		a.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if submittedAt.Valid {
			t, err := time.Parse(time.RFC3339, submittedAt.String)
			if err == nil {
				a.SubmittedAt = &t
			}
		}
		attempts[a.TestID] = a
	}
	return attempts, rows.Err()
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (s *Store) SaveAttendance(ctx context.Context, rec academics.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO attendance_records (student_id, date, status) VALUES (?, ?, ?)`,
		rec.StudentID, rec.Date.UTC().Format("2006-01-02"), string(rec.Status))
	return err
}

func (s *Store) AttendanceByStudent(ctx context.Context, studentID fees.StudentID) ([]academics.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT student_id, date, status FROM attendance_records WHERE student_id = ? ORDER BY date`,
		string(studentID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []academics.AttendanceRecord
	for rows.Next() {
		var (
			rec  academics.AttendanceRecord
			date string
		)
		if err := rows.Scan(&rec.StudentID, &date, &rec.Status); err != nil {
			return nil, err
		}
		rec.Date, _ = time.Parse("2006-01-02", date)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// SUBJECT RESULTS
// =============================================================================

func (s *Store) SaveResult(ctx context.Context, studentID fees.StudentID, year fees.AcademicYear, term fees.Term, r academics.SubjectResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO subject_results (student_id, year, term, subject, score)
		 VALUES (?, ?, ?, ?, ?)`,
		string(studentID), string(year), string(term), r.Subject, r.Score)
	return err
}

func (s *Store) ResultsByStudent(ctx context.Context, studentID fees.StudentID, year fees.AcademicYear, term fees.Term) ([]academics.SubjectResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT subject, score FROM subject_results
		 WHERE student_id = ? AND year = ? AND term = ? ORDER BY subject`,
		string(studentID), string(year), string(term))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []academics.SubjectResult
	for rows.Next() {
		var r academics.SubjectResult
		if err := rows.Scan(&r.Subject, &r.Score); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// =============================================================================
// DIARY AND NEWS
// =============================================================================

// Entry is a dated portal post, used for both the school diary and the
// news feed.
type Entry struct {
	ID    string
	Date  time.Time
	Title string
	Body  string
}

func (s *Store) SaveDiaryEntry(ctx context.Context, e Entry) error {
	return s.saveEntry(ctx, "diary_entries", "date", e)
}

func (s *Store) SaveNewsPost(ctx context.Context, e Entry) error {
	return s.saveEntry(ctx, "news_posts", "published_at", e)
}

func (s *Store) ListDiaryEntries(ctx context.Context) ([]Entry, error) {
	return s.listEntries(ctx, "diary_entries", "date", "ASC")
}

func (s *Store) ListNewsPosts(ctx context.Context) ([]Entry, error) {
	return s.listEntries(ctx, "news_posts", "published_at", "DESC")
}

func (s *Store) saveEntry(ctx context.Context, table, dateCol string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	query := fmt.Sprintf(
		`INSERT OR REPLACE INTO %s (id, %s, title, body) VALUES (?, ?, ?, ?)`, table, dateCol)
	_, err := s.db.ExecContext(ctx, query, e.ID, e.Date.UTC().Format(time.RFC3339), e.Title, e.Body)
	return err
}

func (s *Store) listEntries(ctx context.Context, table, dateCol, order string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(`SELECT id, %s, title, body FROM %s ORDER BY %s %s`, dateCol, table, dateCol, order)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			date string
		)
		if err := rows.Scan(&e.ID, &date, &e.Title, &e.Body); err != nil {
			return nil, err
		}
		e.Date, _ = time.Parse(time.RFC3339, date)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
