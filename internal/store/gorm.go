// Package store persists the tenant collections through GORM and publishes a
// change signal after every committed write, which is what drives the live
// sessions to re-fetch.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agency-hub/internal/domain/agencies"
	"agency-hub/internal/domain/content"
	"agency-hub/internal/domain/finance"
	"agency-hub/internal/domain/invitations"
	"agency-hub/internal/domain/notifications"
	"agency-hub/internal/domain/projects"
	"agency-hub/internal/feed"
	"agency-hub/internal/state"
)

type Gorm struct {
	db   *gorm.DB
	feed feed.Feed
}

func New(db *gorm.DB, f feed.Feed) *Gorm {
	return &Gorm{db: db, feed: f}
}

func (g *Gorm) publish(agencyID uint, table string) {
	g.feed.Publish(feed.Change{AgencyID: agencyID, Table: table})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return state.ErrNotFound
	}
	return err
}

// affected maps a tenant-filtered write that touched no rows to ErrNotFound,
// so updates against foreign or deleted rows surface instead of answering
// success with nothing written.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return state.ErrNotFound
	}
	return nil
}

// lockedProject scopes a query to one tenant's project row and takes a row
// lock, so the concurrent per-piece portal writes serialize on the row
// instead of overwriting each other's piece lists.
func lockedProject(tx *gorm.DB, agencyID, projectID uint) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND agency_id = ?", projectID, agencyID)
}

/* ---------------- reads ---------------- */

func (g *Gorm) Agency(ctx context.Context, agencyID uint) (agencies.Agency, error) {
	var a agencies.Agency
	err := g.db.WithContext(ctx).First(&a, agencyID).Error
	return a, translate(err)
}

func (g *Gorm) Projects(ctx context.Context, agencyID uint) ([]projects.Project, error) {
	var rows []projects.Project
	err := g.db.WithContext(ctx).
		Where("agency_id = ?", agencyID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (g *Gorm) Invoices(ctx context.Context, agencyID uint) ([]finance.Invoice, error) {
	var rows []finance.Invoice
	err := g.db.WithContext(ctx).
		Where("agency_id = ?", agencyID).
		Order("data_vencimento ASC").
		Find(&rows).Error
	return rows, err
}

func (g *Gorm) Expenses(ctx context.Context, agencyID uint) ([]finance.Expense, error) {
	var rows []finance.Expense
	err := g.db.WithContext(ctx).
		Where("agency_id = ?", agencyID).
		Order("date DESC").
		Find(&rows).Error
	return rows, err
}

func (g *Gorm) Notifications(ctx context.Context, agencyID uint) ([]notifications.Notification, error) {
	var rows []notifications.Notification
	err := g.db.WithContext(ctx).
		Where("agency_id = ?", agencyID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (g *Gorm) InvitationsForDesigner(ctx context.Context, email string) ([]invitations.Invitation, error) {
	var rows []invitations.Invitation
	err := g.db.WithContext(ctx).
		Where("email_designer = ?", email).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

/* ---------------- projects ---------------- */

func (g *Gorm) InsertProject(ctx context.Context, p projects.Project) (projects.Project, error) {
	if err := g.db.WithContext(ctx).Create(&p).Error; err != nil {
		return projects.Project{}, err
	}
	g.publish(p.AgencyID, feed.TableProjects)
	return p, nil
}

func (g *Gorm) SaveProject(ctx context.Context, p projects.Project) (projects.Project, error) {
	res := g.db.WithContext(ctx).
		Where("id = ? AND agency_id = ?", p.ID, p.AgencyID).
		Save(&p)
	if err := affected(res); err != nil {
		return projects.Project{}, err
	}
	g.publish(p.AgencyID, feed.TableProjects)
	return p, nil
}

func (g *Gorm) DeleteProject(ctx context.Context, agencyID, projectID uint) error {
	res := g.db.WithContext(ctx).
		Where("id = ? AND agency_id = ?", projectID, agencyID).
		Delete(&projects.Project{})
	if err := affected(res); err != nil {
		return err
	}
	g.publish(agencyID, feed.TableProjects)
	return nil
}

/* ---------------- finance ---------------- */

func (g *Gorm) InsertInvoice(ctx context.Context, inv finance.Invoice) (finance.Invoice, error) {
	if err := g.db.WithContext(ctx).Create(&inv).Error; err != nil {
		return finance.Invoice{}, err
	}
	inv.Kind = finance.KindInvoice
	g.publish(inv.AgencyID, feed.TableInvoices)
	return inv, nil
}

func (g *Gorm) SaveInvoice(ctx context.Context, inv finance.Invoice) (finance.Invoice, error) {
	res := g.db.WithContext(ctx).
		Where("id = ? AND agency_id = ?", inv.ID, inv.AgencyID).
		Save(&inv)
	if err := affected(res); err != nil {
		return finance.Invoice{}, err
	}
	inv.Kind = finance.KindInvoice
	g.publish(inv.AgencyID, feed.TableInvoices)
	return inv, nil
}

func (g *Gorm) DeleteInvoice(ctx context.Context, agencyID, invoiceID uint) error {
	res := g.db.WithContext(ctx).
		Where("id = ? AND agency_id = ?", invoiceID, agencyID).
		Delete(&finance.Invoice{})
	if err := affected(res); err != nil {
		return err
	}
	g.publish(agencyID, feed.TableInvoices)
	return nil
}

func (g *Gorm) InsertExpense(ctx context.Context, exp finance.Expense) (finance.Expense, error) {
	if err := g.db.WithContext(ctx).Create(&exp).Error; err != nil {
		return finance.Expense{}, err
	}
	exp.Kind = finance.KindExpense
	g.publish(exp.AgencyID, feed.TableExpenses)
	return exp, nil
}

func (g *Gorm) SaveExpense(ctx context.Context, exp finance.Expense) (finance.Expense, error) {
	res := g.db.WithContext(ctx).
		Where("id = ? AND agency_id = ?", exp.ID, exp.AgencyID).
		Save(&exp)
	if err := affected(res); err != nil {
		return finance.Expense{}, err
	}
	exp.Kind = finance.KindExpense
	g.publish(exp.AgencyID, feed.TableExpenses)
	return exp, nil
}

func (g *Gorm) DeleteExpense(ctx context.Context, agencyID, expenseID uint) error {
	res := g.db.WithContext(ctx).
		Where("id = ? AND agency_id = ?", expenseID, agencyID).
		Delete(&finance.Expense{})
	if err := affected(res); err != nil {
		return err
	}
	g.publish(agencyID, feed.TableExpenses)
	return nil
}

/* ---------------- notifications ---------------- */

func (g *Gorm) InsertNotification(ctx context.Context, n notifications.Notification) (notifications.Notification, error) {
	if err := g.db.WithContext(ctx).Create(&n).Error; err != nil {
		return notifications.Notification{}, err
	}
	g.publish(n.AgencyID, feed.TableNotifications)
	return n, nil
}

func (g *Gorm) MarkAllNotificationsRead(ctx context.Context, agencyID uint) error {
	err := g.db.WithContext(ctx).
		Model(&notifications.Notification{}).
		Where("agency_id = ? AND lido = ?", agencyID, false).
		Update("lido", true).Error
	if err != nil {
		return err
	}
	g.publish(agencyID, feed.TableNotifications)
	return nil
}

func (g *Gorm) DeleteReadNotifications(ctx context.Context, agencyID uint) error {
	err := g.db.WithContext(ctx).
		Where("agency_id = ? AND lido = ?", agencyID, true).
		Delete(&notifications.Notification{}).Error
	if err != nil {
		return err
	}
	g.publish(agencyID, feed.TableNotifications)
	return nil
}

/* ---------------- client portal ---------------- */

// UpdatePortalPiece runs one piece transition inside a transaction against the
// current row. A rejected transition (posted piece, missing feedback) comes
// back as an error and nothing is written. Flagging a piece for adjustment
// also pushes the project to Ajustes.
func (g *Gorm) UpdatePortalPiece(ctx context.Context, upd state.PortalUpdate) error {
	action := content.ActionApprove
	if upd.Status == content.StatusAdjust {
		action = content.ActionRequestAdjust
	}

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Group actions dispatch one call per piece concurrently; without
		// the row lock two transactions read the same piece lists and the
		// second commit erases the first one's transition.
		var p projects.Project
		if err := lockedProject(tx, upd.AgencyID, upd.ProjectID).
			First(&p).Error; err != nil {
			return translate(err)
		}

		applied := false
		for _, list := range []content.PieceList{p.StaticPieces, p.CarouselPieces} {
			for i := range list {
				if list[i].ID != upd.PieceID {
					continue
				}
				next, err := content.ApplyStatus(list[i], action, upd.Feedback)
				if err != nil {
					return err
				}
				list[i] = next
				applied = true
			}
		}
		if !applied {
			return state.ErrNotFound
		}

		if action == content.ActionRequestAdjust {
			p.MoveTo(projects.StatusAdjustments, time.Now())
		}

		return tx.Save(&p).Error
	})
	if err != nil {
		return err
	}

	g.publish(upd.AgencyID, feed.TableProjects)
	return nil
}
