package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finagent/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func dateToSQL(d core.Date) any {
	if d.IsEmpty() {
		return nil
	}
	return d.Format(dateLayout)
}

func dateFromSQL(s sql.NullString) core.Date {
	if !s.Valid || s.String == "" {
		return core.Date{}
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return core.Date{}
	}
	return core.Date{Time: t}
}

// -- transactions --

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	return insertTransaction(ctx, r.db, t)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransaction(ctx context.Context, db execer, t core.Transaction) (core.Transaction, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO transactions
			(owner_id, kind, amount_cents, category, subcategory, description,
			 tx_date, payment_method, tags, notes, recurring_id, verified, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.OwnerID, string(t.Kind), t.Amount.Cents, t.Category, t.Subcategory,
		t.Description, t.Date.Format(dateLayout), t.PaymentMethod, t.Tags,
		t.Notes, t.RecurringID, t.Verified, t.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	t.ID = id
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, kind, amount_cents, category, subcategory, description,
		       tx_date, payment_method, tags, notes, recurring_id, verified, created_at
		FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	return scanTransaction(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var kind, txDate string
	err := row.Scan(&t.ID, &t.OwnerID, &kind, &t.Amount.Cents, &t.Category,
		&t.Subcategory, &t.Description, &txDate, &t.PaymentMethod, &t.Tags,
		&t.Notes, &t.RecurringID, &t.Verified, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Kind = core.TransactionKind(kind)
	t.Date = dateFromSQL(sql.NullString{String: txDate, Valid: true})
	return t, nil
}

func transactionWhere(ownerID int64, f core.TransactionFilter) (string, []any) {
	clauses := []string{"owner_id = ?"}
	args := []any{ownerID}
	if f.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.Category != "" {
		clauses = append(clauses, "category = ? COLLATE NOCASE")
		args = append(args, f.Category)
	}
	if !f.From.IsEmpty() {
		clauses = append(clauses, "tx_date >= ?")
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsEmpty() {
		clauses = append(clauses, "tx_date <= ?")
		args = append(args, f.To.Format(dateLayout))
	}
	return strings.Join(clauses, " AND "), args
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	where, args := transactionWhere(ownerID, f)
	q := `
		SELECT id, owner_id, kind, amount_cents, category, subcategory, description,
		       tx_date, payment_method, tags, notes, recurring_id, verified, created_at
		FROM transactions WHERE ` + where + ` ORDER BY tx_date DESC, id DESC`
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SumTransactions aggregates amount_cents in SQL, so the sum stays in
// integer arithmetic end to end.
func (r *SQLiteRepository) SumTransactions(ctx context.Context, ownerID int64, f core.TransactionFilter) (core.Money, error) {
	where, args := transactionWhere(ownerID, f)
	row := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE "+where, args...)

	var cents int64
	if err := row.Scan(&cents); err != nil {
		return core.Money{}, fmt.Errorf("sum transactions: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

func (r *SQLiteRepository) SumTransactionsByCategory(ctx context.Context, ownerID int64, f core.TransactionFilter) ([]core.CategoryAmount, error) {
	where, args := transactionWhere(ownerID, f)
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents) FROM transactions
		WHERE `+where+` GROUP BY category ORDER BY SUM(amount_cents) DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryAmount
	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Name, &ca.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		out = append(out, ca)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET kind = ?, amount_cents = ?, category = ?,
			subcategory = ?, description = ?, tx_date = ?, payment_method = ?,
			tags = ?, notes = ?, verified = ?
		WHERE id = ? AND owner_id = ?`,
		string(t.Kind), t.Amount.Cents, t.Category, t.Subcategory, t.Description,
		t.Date.Format(dateLayout), t.PaymentMethod, t.Tags, t.Notes, t.Verified,
		t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// -- budgets --

func (r *SQLiteRepository) InsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (owner_id, category, limit_cents, period)
		VALUES (?, ?, ?, ?)`,
		b.OwnerID, b.Category, b.Limit.Cents, string(b.Period))
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget id: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, ownerID, id int64) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, category, limit_cents, period
		FROM budgets WHERE id = ? AND owner_id = ?`, id, ownerID)

	var b core.Budget
	var period string
	err := row.Scan(&b.ID, &b.OwnerID, &b.Category, &b.Limit.Cents, &period)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	b.Period = core.BudgetPeriod(period)
	return b, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, ownerID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, category, limit_cents, period
		FROM budgets WHERE owner_id = ? ORDER BY category`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var period string
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Category, &b.Limit.Cents, &period); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Period = core.BudgetPeriod(period)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM budgets WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}

// -- savings goals --

func (r *SQLiteRepository) InsertGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	var lastApplied any
	if !g.AutoSave.LastApplied.IsZero() {
		lastApplied = g.AutoSave.LastApplied.UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (owner_id, name, target_cents, current_cents, target_date,
			priority, autosave_enabled, autosave_cents, autosave_frequency,
			autosave_last, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		g.OwnerID, g.Name, g.Target.Cents, g.Current.Cents, dateToSQL(g.TargetDate),
		g.Priority, g.AutoSave.Enabled, g.AutoSave.Amount.Cents,
		string(g.AutoSave.Frequency), lastApplied, g.CreatedAt)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("insert goal: %w", err)
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("goal id: %w", err)
	}
	return g, nil
}

func scanGoal(row rowScanner) (core.SavingsGoal, error) {
	var g core.SavingsGoal
	var targetDate sql.NullString
	var freq string
	var lastApplied sql.NullTime
	err := row.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Target.Cents, &g.Current.Cents,
		&targetDate, &g.Priority, &g.AutoSave.Enabled, &g.AutoSave.Amount.Cents,
		&freq, &lastApplied, &g.Version, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, core.ErrNotFound
	}
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("scan goal: %w", err)
	}
	g.TargetDate = dateFromSQL(targetDate)
	g.AutoSave.Frequency = core.Frequency(freq)
	if lastApplied.Valid {
		g.AutoSave.LastApplied = lastApplied.Time
	}
	return g, nil
}

const goalColumns = `id, owner_id, name, target_cents, current_cents, target_date,
	priority, autosave_enabled, autosave_cents, autosave_frequency,
	autosave_last, version, created_at`

func (r *SQLiteRepository) GetGoal(ctx context.Context, ownerID, id int64) (core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE id = ? AND owner_id = ?", id, ownerID)
	return scanGoal(row)
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, ownerID int64) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE owner_id = ? ORDER BY priority, id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ListAutoSaveGoals returns every goal with auto-save enabled, across all
// owners. Used by the tick worker.
func (r *SQLiteRepository) ListAutoSaveGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE autosave_enabled = 1 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list auto-save goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// SetGoalPriority assigns a priority to one goal of one owner. Unknown or
// foreign ids affect zero rows and report nothing, which is what reorder
// wants: silently skip.
func (r *SQLiteRepository) SetGoalPriority(ctx context.Context, ownerID, id int64, priority int) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE goals SET priority = ? WHERE id = ? AND owner_id = ?", priority, id, ownerID)
	if err != nil {
		return fmt.Errorf("set goal priority: %w", err)
	}
	return nil
}

// ApplyAutoSave atomically adds to a goal's current amount and stamps the
// last-applied time, guarded by the version read earlier. A lost race
// returns core.ErrConflict and changes nothing.
func (r *SQLiteRepository) ApplyAutoSave(ctx context.Context, ownerID, id, version, addCents int64, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals SET current_cents = current_cents + ?, autosave_last = ?,
			version = version + 1
		WHERE id = ? AND owner_id = ? AND version = ?`,
		addCents, now.UTC(), id, ownerID, version)
	if err != nil {
		return fmt.Errorf("apply auto-save: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrConflict
	}
	return nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.SavingsGoal) error {
	var lastApplied any
	if !g.AutoSave.LastApplied.IsZero() {
		lastApplied = g.AutoSave.LastApplied.UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals SET name = ?, target_cents = ?, current_cents = ?,
			target_date = ?, autosave_enabled = ?, autosave_cents = ?,
			autosave_frequency = ?, autosave_last = ?, version = version + 1
		WHERE id = ? AND owner_id = ?`,
		g.Name, g.Target.Cents, g.Current.Cents, dateToSQL(g.TargetDate),
		g.AutoSave.Enabled, g.AutoSave.Amount.Cents, string(g.AutoSave.Frequency),
		lastApplied, g.ID, g.OwnerID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM goals WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res)
}

// -- recurring definitions --

const recurringColumns = `id, owner_id, kind, amount_cents, category, description,
	payment_method, frequency, start_date, end_date, next_due, active`

func scanRecurring(row rowScanner) (core.RecurringDefinition, error) {
	var d core.RecurringDefinition
	var kind, freq, startDate, nextDue string
	var endDate sql.NullString
	err := row.Scan(&d.ID, &d.OwnerID, &kind, &d.Amount.Cents, &d.Category,
		&d.Description, &d.PaymentMethod, &freq, &startDate, &endDate, &nextDue, &d.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringDefinition{}, core.ErrNotFound
	}
	if err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("scan recurring definition: %w", err)
	}
	d.Kind = core.TransactionKind(kind)
	d.Frequency = core.Frequency(freq)
	d.StartDate = dateFromSQL(sql.NullString{String: startDate, Valid: true})
	d.EndDate = dateFromSQL(endDate)
	d.NextDue = dateFromSQL(sql.NullString{String: nextDue, Valid: true})
	return d, nil
}

func (r *SQLiteRepository) InsertRecurring(ctx context.Context, d core.RecurringDefinition) (core.RecurringDefinition, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_definitions (owner_id, kind, amount_cents, category,
			description, payment_method, frequency, start_date, end_date, next_due, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.OwnerID, string(d.Kind), d.Amount.Cents, d.Category, d.Description,
		d.PaymentMethod, string(d.Frequency), d.StartDate.Format(dateLayout),
		dateToSQL(d.EndDate), d.NextDue.Format(dateLayout), d.Active)
	if err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("insert recurring definition: %w", err)
	}
	d.ID, err = res.LastInsertId()
	if err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("recurring id: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) GetRecurring(ctx context.Context, ownerID, id int64) (core.RecurringDefinition, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+recurringColumns+" FROM recurring_definitions WHERE id = ? AND owner_id = ?",
		id, ownerID)
	return scanRecurring(row)
}

func (r *SQLiteRepository) ListRecurring(ctx context.Context, ownerID int64) ([]core.RecurringDefinition, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+recurringColumns+" FROM recurring_definitions WHERE owner_id = ? ORDER BY id",
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list recurring definitions: %w", err)
	}
	defer rows.Close()
	return collectRecurring(rows)
}

// ListDueRecurring returns active definitions with next_due on or before
// now, across all owners. Used by the tick worker.
func (r *SQLiteRepository) ListDueRecurring(ctx context.Context, now time.Time) ([]core.RecurringDefinition, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+recurringColumns+` FROM recurring_definitions
		 WHERE active = 1 AND next_due <= ? ORDER BY id`,
		core.DateOf(now).Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list due recurring definitions: %w", err)
	}
	defer rows.Close()
	return collectRecurring(rows)
}

func collectRecurring(rows *sql.Rows) ([]core.RecurringDefinition, error) {
	var out []core.RecurringDefinition
	for rows.Next() {
		d, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ApplyMaterialization commits a catch-up batch as one unit: every cloned
// transaction, the advanced due date, and the active flag. The WHERE guard
// on the previous next_due makes the write optimistic; a concurrent
// materialization of the same definition loses with core.ErrConflict and
// leaves nothing behind.
func (r *SQLiteRepository) ApplyMaterialization(ctx context.Context, def core.RecurringDefinition, txs []core.Transaction, newNextDue core.Date, active bool) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin materialization: %w", err)
	}
	defer sqlTx.Rollback()

	res, err := sqlTx.ExecContext(ctx, `
		UPDATE recurring_definitions SET next_due = ?, active = ?
		WHERE id = ? AND owner_id = ? AND next_due = ? AND active = 1`,
		newNextDue.Format(dateLayout), active, def.ID, def.OwnerID,
		def.NextDue.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("advance due date: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrConflict
	}

	for _, t := range txs {
		if _, err := insertTransaction(ctx, sqlTx, t); err != nil {
			return err
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit materialization: %w", err)
	}

	slog.InfoContext(ctx, "Materialized recurring definition",
		"recurring_id", def.ID,
		"owner_id", def.OwnerID,
		"transactions", len(txs),
		"next_due", newNextDue.Format(dateLayout),
		"active", active)
	return nil
}

// -- chat entries --

func (r *SQLiteRepository) InsertChatEntry(ctx context.Context, e core.ChatEntry) (core.ChatEntry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_entries (owner_id, message, response, category, sentiment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.OwnerID, e.Message, e.Response, e.Category, e.Sentiment, e.CreatedAt)
	if err != nil {
		return core.ChatEntry{}, fmt.Errorf("insert chat entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return core.ChatEntry{}, fmt.Errorf("chat entry id: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListChatEntries(ctx context.Context, ownerID int64, limit int) ([]core.ChatEntry, error) {
	q := `SELECT id, owner_id, message, response, category, sentiment, created_at
	      FROM chat_entries WHERE owner_id = ? ORDER BY id DESC`
	args := []any{ownerID}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list chat entries: %w", err)
	}
	defer rows.Close()

	var out []core.ChatEntry
	for rows.Next() {
		var e core.ChatEntry
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Message, &e.Response,
			&e.Category, &e.Sentiment, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ClearChatEntries(ctx context.Context, ownerID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM chat_entries WHERE owner_id = ?", ownerID)
	if err != nil {
		return fmt.Errorf("clear chat entries: %w", err)
	}
	return nil
}

// -- alerts --

func (r *SQLiteRepository) InsertAlert(ctx context.Context, a core.Alert) (core.Alert, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (owner_id, alert_type, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.OwnerID, a.Type, a.Message, a.Read, a.CreatedAt)
	if err != nil {
		return core.Alert{}, fmt.Errorf("insert alert: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return core.Alert{}, fmt.Errorf("alert id: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAlerts(ctx context.Context, ownerID int64, limit int) ([]core.Alert, error) {
	q := `SELECT id, owner_id, alert_type, message, is_read, created_at
	      FROM alerts WHERE owner_id = ? ORDER BY id DESC`
	args := []any{ownerID}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []core.Alert
	for rows.Next() {
		var a core.Alert
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Type, &a.Message, &a.Read, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkAlertRead(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE alerts SET is_read = 1 WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	return requireRow(res)
}

// PurgeOwner removes every entity belonging to one owner in a single
// transaction. This is the explicit owner-scoped cascade: no table keeps a
// dangling reference after it commits.
func (r *SQLiteRepository) PurgeOwner(ctx context.Context, ownerID int64) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin purge: %w", err)
	}
	defer sqlTx.Rollback()

	for _, table := range []string{
		"transactions", "budgets", "goals", "recurring_definitions",
		"chat_entries", "alerts",
	} {
		if _, err := sqlTx.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE owner_id = ?", ownerID); err != nil {
			return fmt.Errorf("purge %s: %w", table, err)
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit purge: %w", err)
	}

	slog.InfoContext(ctx, "Purged owner data", "owner_id", ownerID)
	return nil
}
