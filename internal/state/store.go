// Package state holds the live per-tenant data session: collection caches
// kept in sync by re-fetch-on-notify, optimistic local mutations with
// rollback, and derived deadline notifications. The remote side is reached
// only through the Store interface; the session never applies change deltas.
package state

import (
	"context"
	"errors"

	"agency-hub/internal/domain/agencies"
	"agency-hub/internal/domain/content"
	"agency-hub/internal/domain/finance"
	"agency-hub/internal/domain/invitations"
	"agency-hub/internal/domain/notifications"
	"agency-hub/internal/domain/projects"
)

var (
	// ErrNotFound covers rows missing either locally or remotely.
	ErrNotFound = errors.New("row not found")

	// ErrWrongAgency rejects operations on rows outside the session tenant.
	ErrWrongAgency = errors.New("row belongs to another agency")
)

// PortalUpdate is the per-piece approval RPC issued from the client portal.
// Group actions send one call per piece, concurrently.
type PortalUpdate struct {
	AgencyID  uint
	ProjectID uint
	PieceID   string
	Status    content.Status // approved or adjust
	Feedback  string
}

// Store is the request/response side of the remote data store. Every fetch is
// a full tenant-filtered collection read; every write returns the
// authoritative row so server-assigned fields can be reconciled locally.
type Store interface {
	Agency(ctx context.Context, agencyID uint) (agencies.Agency, error)
	Projects(ctx context.Context, agencyID uint) ([]projects.Project, error)
	Invoices(ctx context.Context, agencyID uint) ([]finance.Invoice, error)
	Expenses(ctx context.Context, agencyID uint) ([]finance.Expense, error)
	Notifications(ctx context.Context, agencyID uint) ([]notifications.Notification, error)
	InvitationsForDesigner(ctx context.Context, email string) ([]invitations.Invitation, error)

	InsertProject(ctx context.Context, p projects.Project) (projects.Project, error)
	SaveProject(ctx context.Context, p projects.Project) (projects.Project, error)
	DeleteProject(ctx context.Context, agencyID, projectID uint) error

	InsertInvoice(ctx context.Context, inv finance.Invoice) (finance.Invoice, error)
	SaveInvoice(ctx context.Context, inv finance.Invoice) (finance.Invoice, error)
	DeleteInvoice(ctx context.Context, agencyID, invoiceID uint) error

	InsertExpense(ctx context.Context, exp finance.Expense) (finance.Expense, error)
	SaveExpense(ctx context.Context, exp finance.Expense) (finance.Expense, error)
	DeleteExpense(ctx context.Context, agencyID, expenseID uint) error

	InsertNotification(ctx context.Context, n notifications.Notification) (notifications.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, agencyID uint) error
	DeleteReadNotifications(ctx context.Context, agencyID uint) error

	UpdatePortalPiece(ctx context.Context, upd PortalUpdate) error
}
