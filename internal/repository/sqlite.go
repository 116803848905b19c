package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"invoicechat/backend/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			client_id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			email TEXT,
			default_rate_cents INTEGER NOT NULL DEFAULT 0,
			template_type TEXT NOT NULL DEFAULT 'hourly',
			invoice_prefix TEXT NOT NULL DEFAULT 'INV',
			company_context TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			client_id TEXT,
			title TEXT NOT NULL DEFAULT 'New Chat',
			active_version INTEGER NOT NULL DEFAULT 0,
			pending_retry TEXT,
			archived INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (client_id) REFERENCES clients(client_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			image_urls TEXT,
			preview_version INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS previews (
			session_id TEXT NOT NULL,
			version INTEGER NOT NULL,
			draft TEXT NOT NULL,
			message_id TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (session_id, version),
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS invoices (
			invoice_id TEXT PRIMARY KEY,
			session_id TEXT,
			source_version INTEGER NOT NULL DEFAULT 0,
			client_id TEXT NOT NULL,
			invoice_number TEXT NOT NULL UNIQUE,
			date TEXT NOT NULL,
			total_cents INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'draft',
			artifact_url TEXT,
			notes TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (client_id) REFERENCES clients(client_id),
			UNIQUE (session_id, source_version)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_client ON invoices(client_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	pending, err := marshalPendingRetry(session.PendingRetry)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, client_id, title, active_version, pending_retry, archived, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.SessionID, nullString(session.ClientID), session.Title, session.ActiveVersion,
		pending, session.Archived, session.CreatedAt, session.UpdatedAt)
	return err
}

// GetSession retrieves a session by ID. Returns nil if not found.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var sess domain.Session
	var clientID, pending sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, client_id, title, active_version, pending_retry, archived, created_at, updated_at
		 FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&sess.SessionID, &clientID, &sess.Title, &sess.ActiveVersion,
		&pending, &sess.Archived, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if clientID.Valid {
		sess.ClientID = clientID.String
	}
	if pending.Valid && pending.String != "" {
		var pr domain.PendingRetry
		if err := json.Unmarshal([]byte(pending.String), &pr); err != nil {
			return nil, fmt.Errorf("failed to decode pending retry: %w", err)
		}
		sess.PendingRetry = &pr
	}
	return &sess, nil
}

// UpdateSession persists the mutable session fields.
func (s *SQLiteStore) UpdateSession(ctx context.Context, session *domain.Session) error {
	pending, err := marshalPendingRetry(session.PendingRetry)
	if err != nil {
		return err
	}
	session.UpdatedAt = time.Now()
	_, err = s.db.ExecContext(ctx,
		`UPDATE sessions SET client_id = ?, title = ?, active_version = ?, pending_retry = ?, archived = ?, updated_at = ?
		 WHERE session_id = ?`,
		nullString(session.ClientID), session.Title, session.ActiveVersion,
		pending, session.Archived, session.UpdatedAt, session.SessionID)
	return err
}

// DeleteSession removes a session and, via cascade, its messages and previews.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	return err
}

// ListSessions lists session summaries, newest first.
func (s *SQLiteStore) ListSessions(ctx context.Context, clientID string, includeArchived bool, limit int) ([]domain.SessionInfo, error) {
	query := `SELECT s.session_id, s.client_id, COALESCE(c.name, ''), s.title, s.archived, s.created_at, s.updated_at,
			(SELECT COUNT(*) FROM messages m WHERE m.session_id = s.session_id),
			(SELECT m.content FROM messages m WHERE m.session_id = s.session_id ORDER BY m.created_at DESC, m.message_id DESC LIMIT 1)
		 FROM sessions s LEFT JOIN clients c ON c.client_id = s.client_id`
	var conds []string
	var args []interface{}
	if clientID != "" {
		conds = append(conds, "s.client_id = ?")
		args = append(args, clientID)
	}
	if !includeArchived {
		conds = append(conds, "s.archived = 0")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY s.updated_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SessionInfo
	for rows.Next() {
		var info domain.SessionInfo
		var cid, last sql.NullString
		if err := rows.Scan(&info.SessionID, &cid, &info.ClientName, &info.Title, &info.Archived,
			&info.CreatedAt, &info.UpdatedAt, &info.MessageCount, &last); err != nil {
			return nil, err
		}
		if cid.Valid {
			info.ClientID = cid.String
		}
		if last.Valid {
			info.LastMessage = truncate(last.String, 100)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// CreateMessage appends a message to a session.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *domain.Message) error {
	var images sql.NullString
	if len(msg.ImageURLs) > 0 {
		b, err := json.Marshal(msg.ImageURLs)
		if err != nil {
			return err
		}
		images = sql.NullString{String: string(b), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, session_id, role, content, image_urls, preview_version, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.MessageID, msg.SessionID, msg.Role, msg.Content, images, msg.PreviewVersion, msg.CreatedAt)
	return err
}

// GetMessages retrieves a session's messages in append order.
func (s *SQLiteStore) GetMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	query := `SELECT message_id, session_id, role, content, image_urls, preview_version, created_at
		 FROM messages WHERE session_id = ? ORDER BY created_at ASC, message_id ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var images sql.NullString
		if err := rows.Scan(&msg.MessageID, &msg.SessionID, &msg.Role, &msg.Content,
			&images, &msg.PreviewVersion, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if images.Valid && images.String != "" {
			if err := json.Unmarshal([]byte(images.String), &msg.ImageURLs); err != nil {
				return nil, fmt.Errorf("failed to decode image urls: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CreatePreview records one ledger entry. The version is assigned by the
// ledger before the insert; the primary key rejects duplicates.
func (s *SQLiteStore) CreatePreview(ctx context.Context, p *domain.Preview) error {
	draft, err := json.Marshal(p.Draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO previews (session_id, version, draft, message_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.SessionID, p.Version, string(draft), nullString(p.MessageID), p.CreatedAt)
	return err
}

// GetPreviews retrieves a session's previews ordered by version.
func (s *SQLiteStore) GetPreviews(ctx context.Context, sessionID string) ([]domain.Preview, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, version, draft, message_id, created_at FROM previews
		 WHERE session_id = ? ORDER BY version ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Preview
	for rows.Next() {
		var p domain.Preview
		var draft string
		var msgID sql.NullString
		if err := rows.Scan(&p.SessionID, &p.Version, &draft, &msgID, &p.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(draft), &p.Draft); err != nil {
			return nil, fmt.Errorf("failed to decode draft v%d: %w", p.Version, err)
		}
		if msgID.Valid {
			p.MessageID = msgID.String
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateClient registers a new client.
func (s *SQLiteStore) CreateClient(ctx context.Context, c *domain.Client) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (client_id, name, email, default_rate_cents, template_type, invoice_prefix, company_context, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ClientID, c.Name, nullString(c.Email), c.DefaultRateCents, c.TemplateType,
		c.InvoicePrefix, nullString(c.CompanyContext), c.CreatedAt, c.UpdatedAt)
	return err
}

// GetClient retrieves a client by ID. Returns nil if not found.
func (s *SQLiteStore) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	return s.scanClient(s.db.QueryRowContext(ctx,
		`SELECT client_id, name, email, default_rate_cents, template_type, invoice_prefix, company_context, created_at, updated_at
		 FROM clients WHERE client_id = ?`, clientID))
}

// GetClientByName retrieves a client by exact name, case-insensitive.
func (s *SQLiteStore) GetClientByName(ctx context.Context, name string) (*domain.Client, error) {
	return s.scanClient(s.db.QueryRowContext(ctx,
		`SELECT client_id, name, email, default_rate_cents, template_type, invoice_prefix, company_context, created_at, updated_at
		 FROM clients WHERE name = ? COLLATE NOCASE`, name))
}

func (s *SQLiteStore) scanClient(row *sql.Row) (*domain.Client, error) {
	var c domain.Client
	var email, companyCtx sql.NullString
	err := row.Scan(&c.ClientID, &c.Name, &email, &c.DefaultRateCents, &c.TemplateType,
		&c.InvoicePrefix, &companyCtx, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if email.Valid {
		c.Email = email.String
	}
	if companyCtx.Valid {
		c.CompanyContext = companyCtx.String
	}
	return &c, nil
}

// ListClients lists all clients in name order.
func (s *SQLiteStore) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT client_id, name, email, default_rate_cents, template_type, invoice_prefix, company_context, created_at, updated_at
		 FROM clients ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		var c domain.Client
		var email, companyCtx sql.NullString
		if err := rows.Scan(&c.ClientID, &c.Name, &email, &c.DefaultRateCents, &c.TemplateType,
			&c.InvoicePrefix, &companyCtx, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if email.Valid {
			c.Email = email.String
		}
		if companyCtx.Valid {
			c.CompanyContext = companyCtx.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateInvoice records a committed document.
func (s *SQLiteStore) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invoices (invoice_id, session_id, source_version, client_id, invoice_number, date, total_cents, status, artifact_url, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.InvoiceID, nullString(inv.SessionID), inv.SourceVersion, inv.ClientID, inv.InvoiceNumber,
		inv.Date, inv.TotalCents, inv.Status, nullString(inv.ArtifactURL), nullString(inv.Notes),
		inv.CreatedAt, inv.UpdatedAt)
	return err
}

// GetInvoice retrieves an invoice by ID. Returns nil if not found.
func (s *SQLiteStore) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return s.scanInvoice(s.db.QueryRowContext(ctx,
		`SELECT invoice_id, session_id, source_version, client_id, invoice_number, date, total_cents, status, artifact_url, notes, created_at, updated_at
		 FROM invoices WHERE invoice_id = ?`, invoiceID))
}

// GetInvoiceBySourceVersion retrieves the invoice committed from a specific
// ledger version of a session, if any. This is the confirm idempotency lookup.
func (s *SQLiteStore) GetInvoiceBySourceVersion(ctx context.Context, sessionID string, version int) (*domain.Invoice, error) {
	return s.scanInvoice(s.db.QueryRowContext(ctx,
		`SELECT invoice_id, session_id, source_version, client_id, invoice_number, date, total_cents, status, artifact_url, notes, created_at, updated_at
		 FROM invoices WHERE session_id = ? AND source_version = ?`, sessionID, version))
}

// GetInvoiceByNumber retrieves an invoice by its human-facing number.
func (s *SQLiteStore) GetInvoiceByNumber(ctx context.Context, invoiceNumber string) (*domain.Invoice, error) {
	return s.scanInvoice(s.db.QueryRowContext(ctx,
		`SELECT invoice_id, session_id, source_version, client_id, invoice_number, date, total_cents, status, artifact_url, notes, created_at, updated_at
		 FROM invoices WHERE invoice_number = ?`, invoiceNumber))
}

func (s *SQLiteStore) scanInvoice(row *sql.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	var sessionID, artifactURL, notes sql.NullString
	err := row.Scan(&inv.InvoiceID, &sessionID, &inv.SourceVersion, &inv.ClientID, &inv.InvoiceNumber,
		&inv.Date, &inv.TotalCents, &inv.Status, &artifactURL, &notes, &inv.CreatedAt, &inv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sessionID.Valid {
		inv.SessionID = sessionID.String
	}
	if artifactURL.Valid {
		inv.ArtifactURL = artifactURL.String
	}
	if notes.Valid {
		inv.Notes = notes.String
	}
	return &inv, nil
}

// ListInvoices lists invoices, optionally filtered by client or session.
func (s *SQLiteStore) ListInvoices(ctx context.Context, clientID, sessionID string) ([]domain.Invoice, error) {
	query := `SELECT invoice_id, session_id, source_version, client_id, invoice_number, date, total_cents, status, artifact_url, notes, created_at, updated_at
		 FROM invoices`
	var conds []string
	var args []interface{}
	if clientID != "" {
		conds = append(conds, "client_id = ?")
		args = append(args, clientID)
	}
	if sessionID != "" {
		conds = append(conds, "session_id = ?")
		args = append(args, sessionID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invoice
	for rows.Next() {
		var inv domain.Invoice
		var sid, artifactURL, notes sql.NullString
		if err := rows.Scan(&inv.InvoiceID, &sid, &inv.SourceVersion, &inv.ClientID, &inv.InvoiceNumber,
			&inv.Date, &inv.TotalCents, &inv.Status, &artifactURL, &notes, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		if sid.Valid {
			inv.SessionID = sid.String
		}
		if artifactURL.Valid {
			inv.ArtifactURL = artifactURL.String
		}
		if notes.Valid {
			inv.Notes = notes.String
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// ListInvoiceNumbers returns invoice numbers for a client matching a LIKE
// pattern, used for sequence generation.
func (s *SQLiteStore) ListInvoiceNumbers(ctx context.Context, clientID, pattern string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT invoice_number FROM invoices WHERE client_id = ? AND invoice_number LIKE ?`,
		clientID, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// InvoiceNumberExists reports whether an invoice number is already taken.
func (s *SQLiteStore) InvoiceNumberExists(ctx context.Context, number string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM invoices WHERE invoice_number = ?`, number).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateInvoiceStatus updates the lifecycle status of an invoice.
func (s *SQLiteStore) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE invoices SET status = ?, updated_at = ? WHERE invoice_id = ?`,
		status, time.Now(), invoiceID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func marshalPendingRetry(pr *domain.PendingRetry) (sql.NullString, error) {
	if pr == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(pr)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal pending retry: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
