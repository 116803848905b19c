// Package store defines the storage interface and the SQLite implementation.
package store

import (
	"context"

	"invoicechat/backend/internal/domain"
)

// Store defines the interface for data persistence.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context, clientID string, includeArchived bool, limit int) ([]domain.SessionInfo, error)

	// Message operations
	CreateMessage(ctx context.Context, message *domain.Message) error
	GetMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)

	// Preview operations
	CreatePreview(ctx context.Context, preview *domain.Preview) error
	GetPreviews(ctx context.Context, sessionID string) ([]domain.Preview, error)

	// Client operations
	CreateClient(ctx context.Context, client *domain.Client) error
	GetClient(ctx context.Context, clientID string) (*domain.Client, error)
	GetClientByName(ctx context.Context, name string) (*domain.Client, error)
	ListClients(ctx context.Context) ([]domain.Client, error)

	// Invoice operations
	CreateInvoice(ctx context.Context, invoice *domain.Invoice) error
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	GetInvoiceBySourceVersion(ctx context.Context, sessionID string, version int) (*domain.Invoice, error)
	GetInvoiceByNumber(ctx context.Context, invoiceNumber string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, clientID, sessionID string) ([]domain.Invoice, error)
	ListInvoiceNumbers(ctx context.Context, clientID, pattern string) ([]string, error)
	InvoiceNumberExists(ctx context.Context, number string) (bool, error)
	UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus) (bool, error)

	Close() error
}

// Ensure SQLiteStore implements the interface.
var _ Store = (*SQLiteStore)(nil)
