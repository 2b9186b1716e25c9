package state

import (
	"context"
	"slices"
	"sort"

	"go.uber.org/zap"

	"agency-hub/internal/domain/finance"
	"agency-hub/internal/domain/notifications"
	"agency-hub/internal/domain/projects"
	"agency-hub/internal/feed"
)

// Every mutation follows the same contract: snapshot the collection, replace
// it locally right away, persist remotely, then either reconcile the local
// row with the authoritative one or restore the snapshot and report. Between
// local apply and remote settle the view is ahead of the store; it is never
// left ahead permanently. Failed persists are not retried.

/* ---------------- invoices ---------------- */

func sortInvoices(rows []finance.Invoice) []finance.Invoice {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].DueDate.Before(rows[j].DueDate) })
	return rows
}

// AddInvoice appends optimistically (provisional id zero), then swaps in the
// stored row. The error is re-thrown for the dashboard's explicit-save form.
func (s *Session) AddInvoice(ctx context.Context, inv finance.Invoice) (finance.Invoice, error) {
	inv.AgencyID = s.agencyID
	inv.ID = 0
	inv.Kind = finance.KindInvoice

	s.mu.Lock()
	snapshot := slices.Clone(s.invoices)
	s.invoices = sortInvoices(append(slices.Clone(s.invoices), inv))
	s.mu.Unlock()
	s.emit(feed.TableInvoices)

	saved, err := s.store.InsertInvoice(ctx, inv)
	if err != nil {
		s.rollbackInvoices(snapshot)
		s.toast("Falha ao adicionar fatura.", notifications.TypeError)
		return finance.Invoice{}, err
	}

	s.mu.Lock()
	for i := range s.invoices {
		if s.invoices[i].ID == 0 {
			s.invoices[i] = saved
			break
		}
	}
	s.invoices = sortInvoices(s.invoices)
	s.mu.Unlock()
	s.emit(feed.TableInvoices)
	return saved, nil
}

func (s *Session) UpdateInvoice(ctx context.Context, inv finance.Invoice) error {
	if inv.AgencyID != 0 && inv.AgencyID != s.agencyID {
		return ErrWrongAgency
	}
	inv.AgencyID = s.agencyID

	s.mu.Lock()
	snapshot := slices.Clone(s.invoices)
	found := replaceInvoiceByID(s.invoices, inv.ID, inv)
	s.invoices = sortInvoices(s.invoices)
	s.mu.Unlock()
	if !found {
		return ErrNotFound
	}
	s.emit(feed.TableInvoices)

	saved, err := s.store.SaveInvoice(ctx, inv)
	if err != nil {
		s.rollbackInvoices(snapshot)
		s.toast("Falha ao atualizar fatura.", notifications.TypeError)
		return err
	}

	s.mu.Lock()
	replaceInvoiceByID(s.invoices, saved.ID, saved)
	s.invoices = sortInvoices(s.invoices)
	s.mu.Unlock()
	s.emit(feed.TableInvoices)
	return nil
}

func (s *Session) DeleteInvoice(ctx context.Context, invoiceID uint) error {
	s.mu.Lock()
	snapshot := slices.Clone(s.invoices)
	s.invoices = slices.DeleteFunc(slices.Clone(s.invoices), func(i finance.Invoice) bool { return i.ID == invoiceID })
	s.mu.Unlock()
	s.emit(feed.TableInvoices)

	if err := s.store.DeleteInvoice(ctx, s.agencyID, invoiceID); err != nil {
		s.rollbackInvoices(snapshot)
		s.toast("Falha ao deletar fatura.", notifications.TypeError)
		return err
	}
	return nil
}

func (s *Session) rollbackInvoices(snapshot []finance.Invoice) {
	s.mu.Lock()
	s.invoices = snapshot
	s.mu.Unlock()
	s.emit(feed.TableInvoices)
}

/* ---------------- expenses ---------------- */

func sortExpenses(rows []finance.Expense) []finance.Expense {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })
	return rows
}

func (s *Session) AddExpense(ctx context.Context, exp finance.Expense) (finance.Expense, error) {
	exp.AgencyID = s.agencyID
	exp.ID = 0
	exp.Kind = finance.KindExpense

	s.mu.Lock()
	snapshot := slices.Clone(s.expenses)
	s.expenses = sortExpenses(append(slices.Clone(s.expenses), exp))
	s.mu.Unlock()
	s.emit(feed.TableExpenses)

	saved, err := s.store.InsertExpense(ctx, exp)
	if err != nil {
		s.rollbackExpenses(snapshot)
		s.toast("Falha ao adicionar despesa.", notifications.TypeError)
		return finance.Expense{}, err
	}

	s.mu.Lock()
	for i := range s.expenses {
		if s.expenses[i].ID == 0 {
			s.expenses[i] = saved
			break
		}
	}
	s.expenses = sortExpenses(s.expenses)
	s.mu.Unlock()
	s.emit(feed.TableExpenses)
	return saved, nil
}

func (s *Session) UpdateExpense(ctx context.Context, exp finance.Expense) error {
	if exp.AgencyID != 0 && exp.AgencyID != s.agencyID {
		return ErrWrongAgency
	}
	exp.AgencyID = s.agencyID

	s.mu.Lock()
	snapshot := slices.Clone(s.expenses)
	found := replaceExpenseByID(s.expenses, exp.ID, exp)
	s.expenses = sortExpenses(s.expenses)
	s.mu.Unlock()
	if !found {
		return ErrNotFound
	}
	s.emit(feed.TableExpenses)

	saved, err := s.store.SaveExpense(ctx, exp)
	if err != nil {
		s.rollbackExpenses(snapshot)
		s.toast("Falha ao atualizar despesa.", notifications.TypeError)
		return err
	}

	s.mu.Lock()
	replaceExpenseByID(s.expenses, saved.ID, saved)
	s.expenses = sortExpenses(s.expenses)
	s.mu.Unlock()
	s.emit(feed.TableExpenses)
	return nil
}

func (s *Session) DeleteExpense(ctx context.Context, expenseID uint) error {
	s.mu.Lock()
	snapshot := slices.Clone(s.expenses)
	s.expenses = slices.DeleteFunc(slices.Clone(s.expenses), func(e finance.Expense) bool { return e.ID == expenseID })
	s.mu.Unlock()
	s.emit(feed.TableExpenses)

	if err := s.store.DeleteExpense(ctx, s.agencyID, expenseID); err != nil {
		s.rollbackExpenses(snapshot)
		s.toast("Falha ao deletar despesa.", notifications.TypeError)
		return err
	}
	return nil
}

func (s *Session) rollbackExpenses(snapshot []finance.Expense) {
	s.mu.Lock()
	s.expenses = snapshot
	s.mu.Unlock()
	s.emit(feed.TableExpenses)
}

/* ---------------- projects ---------------- */

// UpdateProject replaces the whole row; the project editor saves full state.
func (s *Session) UpdateProject(ctx context.Context, p projects.Project) error {
	if p.AgencyID != 0 && p.AgencyID != s.agencyID {
		return ErrWrongAgency
	}
	p.AgencyID = s.agencyID

	s.mu.Lock()
	snapshot := cloneProjects(s.projects)
	found := false
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p.Clone()
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return ErrNotFound
	}
	s.emit(feed.TableProjects)

	saved, err := s.store.SaveProject(ctx, p)
	if err != nil {
		s.rollbackProjects(snapshot)
		s.toast("Falha ao atualizar projeto.", notifications.TypeError)
		return err
	}

	s.mu.Lock()
	for i := range s.projects {
		if s.projects[i].ID == saved.ID {
			s.projects[i] = saved
			break
		}
	}
	s.mu.Unlock()
	s.emit(feed.TableProjects)
	return nil
}

func (s *Session) DeleteProject(ctx context.Context, projectID uint) error {
	s.mu.Lock()
	snapshot := cloneProjects(s.projects)
	s.projects = slices.DeleteFunc(cloneProjects(s.projects), func(p projects.Project) bool { return p.ID == projectID })
	s.mu.Unlock()
	s.emit(feed.TableProjects)

	if err := s.store.DeleteProject(ctx, s.agencyID, projectID); err != nil {
		s.rollbackProjects(snapshot)
		s.toast("Falha ao deletar projeto.", notifications.TypeError)
		return err
	}
	return nil
}

// MoveProject is the kanban drag-drop: change the pipeline status, keep the
// completion date in step, and announce a freshly finished project. Unlike
// the editor save there is no form to keep open, so failures end at the
// rollback and the toast.
func (s *Session) MoveProject(ctx context.Context, projectID uint, next projects.Status) error {
	if !next.Valid() {
		return ErrNotFound
	}

	s.mu.Lock()
	snapshot := cloneProjects(s.projects)
	var moved projects.Project
	completedNow := false
	found := false
	for i := range s.projects {
		if s.projects[i].ID == projectID {
			p := s.projects[i].Clone()
			completedNow = p.MoveTo(next, s.now())
			s.projects[i] = p
			moved = p
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		s.toast("Ocorreu um erro ao mover o projeto.", notifications.TypeError)
		return ErrNotFound
	}
	s.emit(feed.TableProjects)

	if _, err := s.store.SaveProject(ctx, moved); err != nil {
		s.rollbackProjects(snapshot)
		s.toast("Ocorreu um erro ao mover o projeto.", notifications.TypeError)
		return err
	}

	if completedNow {
		n := notifications.Notification{
			AgencyID: s.agencyID,
			Message:  notifications.CompletedMessage(moved.Name),
			Type:     notifications.TypeSuccess,
			Link:     notifications.ProjectLink(moved.ID),
		}
		if _, err := s.store.InsertNotification(ctx, n); err != nil {
			s.logger.Warn("completion notification failed", zap.Uint("project_id", moved.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *Session) rollbackProjects(snapshot []projects.Project) {
	s.mu.Lock()
	s.projects = snapshot
	s.mu.Unlock()
	s.emit(feed.TableProjects)
}

func cloneProjects(rows []projects.Project) []projects.Project {
	out := make([]projects.Project, len(rows))
	for i := range rows {
		out[i] = rows[i].Clone()
	}
	return out
}

/* ---------------- notifications ---------------- */

func (s *Session) MarkAllNotificationsRead(ctx context.Context) error {
	s.mu.Lock()
	unread := 0
	for _, n := range s.notifications {
		if !n.Read {
			unread++
		}
	}
	if unread == 0 {
		s.mu.Unlock()
		return nil
	}
	snapshot := slices.Clone(s.notifications)
	next := slices.Clone(s.notifications)
	for i := range next {
		next[i].Read = true
	}
	s.notifications = next
	s.mu.Unlock()
	s.emit(feed.TableNotifications)

	if err := s.store.MarkAllNotificationsRead(ctx, s.agencyID); err != nil {
		s.rollbackNotifications(snapshot)
		s.toast("Falha ao marcar notificações como lidas.", notifications.TypeError)
		return err
	}
	return nil
}

func (s *Session) ClearReadNotifications(ctx context.Context) error {
	s.mu.Lock()
	read := 0
	for _, n := range s.notifications {
		if n.Read {
			read++
		}
	}
	if read == 0 {
		s.mu.Unlock()
		s.toast("Não há notificações lidas para limpar.", notifications.TypeInfo)
		return nil
	}
	snapshot := slices.Clone(s.notifications)
	s.notifications = slices.DeleteFunc(slices.Clone(s.notifications), func(n notifications.Notification) bool { return n.Read })
	s.mu.Unlock()
	s.emit(feed.TableNotifications)

	if err := s.store.DeleteReadNotifications(ctx, s.agencyID); err != nil {
		s.rollbackNotifications(snapshot)
		s.toast("Falha ao limpar notificações.", notifications.TypeError)
		return err
	}
	s.toast("Notificações lidas foram removidas.", notifications.TypeSuccess)
	return nil
}

func (s *Session) rollbackNotifications(snapshot []notifications.Notification) {
	s.mu.Lock()
	s.notifications = snapshot
	s.mu.Unlock()
	s.emit(feed.TableNotifications)
}

/* ---------------- small helpers ---------------- */

func replaceInvoiceByID(rows []finance.Invoice, id uint, inv finance.Invoice) bool {
	for i := range rows {
		if rows[i].ID == id {
			rows[i] = inv
			return true
		}
	}
	return false
}

func replaceExpenseByID(rows []finance.Expense, id uint, exp finance.Expense) bool {
	for i := range rows {
		if rows[i].ID == id {
			rows[i] = exp
			return true
		}
	}
	return false
}
