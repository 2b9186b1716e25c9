package state

import (
	"context"
	"slices"
	"sync"

	"agency-hub/internal/domain/agencies"
	"agency-hub/internal/domain/content"
	"agency-hub/internal/domain/finance"
	"agency-hub/internal/domain/invitations"
	"agency-hub/internal/domain/notifications"
	"agency-hub/internal/domain/projects"
)

// fakeStore implements Store in memory with per-operation failure injection.
type fakeStore struct {
	mu sync.Mutex

	agencies      map[uint]agencies.Agency
	projects      []projects.Project
	invoices      []finance.Invoice
	expenses      []finance.Expense
	invitations   []invitations.Invitation
	notifications []notifications.Notification

	nextID uint

	// fail[op] makes that operation return the error once set
	fail map[string]error
	// failPiece rejects portal updates for specific piece ids
	failPiece map[string]error

	fetchCount  map[string]int
	portalCalls []PortalUpdate

	// when set, Projects signals entry and then blocks until released
	projectsEntered chan struct{}
	projectsGate    chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		agencies:   make(map[uint]agencies.Agency),
		fail:       make(map[string]error),
		failPiece:  make(map[string]error),
		fetchCount: make(map[string]int),
		nextID:     1000,
	}
}

func (f *fakeStore) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) failWith(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *fakeStore) errFor(op string) error {
	return f.fail[op]
}

func (f *fakeStore) counted(table string) {
	f.fetchCount[table]++
}

func (f *fakeStore) fetches(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCount[table]
}

func (f *fakeStore) Agency(ctx context.Context, agencyID uint) (agencies.Agency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counted("agencies")
	if err := f.errFor("Agency"); err != nil {
		return agencies.Agency{}, err
	}
	a, ok := f.agencies[agencyID]
	if !ok {
		return agencies.Agency{}, ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) gateProjects() (chan struct{}, chan struct{}) {
	entered := make(chan struct{}, 16)
	gate := make(chan struct{})
	f.mu.Lock()
	f.projectsEntered = entered
	f.projectsGate = gate
	f.mu.Unlock()
	return entered, gate
}

func (f *fakeStore) Projects(ctx context.Context, agencyID uint) ([]projects.Project, error) {
	f.mu.Lock()
	entered, gate := f.projectsEntered, f.projectsGate
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counted("projects")
	if err := f.errFor("Projects"); err != nil {
		return nil, err
	}
	var out []projects.Project
	for _, p := range f.projects {
		if p.AgencyID == agencyID {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (f *fakeStore) Invoices(ctx context.Context, agencyID uint) ([]finance.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counted("invoices")
	var out []finance.Invoice
	for _, r := range f.invoices {
		if r.AgencyID == agencyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Expenses(ctx context.Context, agencyID uint) ([]finance.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counted("expenses")
	var out []finance.Expense
	for _, r := range f.expenses {
		if r.AgencyID == agencyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Notifications(ctx context.Context, agencyID uint) ([]notifications.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counted("notifications")
	var out []notifications.Notification
	for _, r := range f.notifications {
		if r.AgencyID == agencyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) InvitationsForDesigner(ctx context.Context, email string) ([]invitations.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counted("invitations")
	var out []invitations.Invitation
	for _, r := range f.invitations {
		if r.DesignerEmail == email {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertProject(ctx context.Context, p projects.Project) (projects.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errFor("InsertProject"); err != nil {
		return projects.Project{}, err
	}
	p.ID = f.id()
	f.projects = append(f.projects, p.Clone())
	return p, nil
}

func (f *fakeStore) SaveProject(ctx context.Context, p projects.Project) (projects.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errFor("SaveProject"); err != nil {
		return projects.Project{}, err
	}
	for i := range f.projects {
		if f.projects[i].ID == p.ID && f.projects[i].AgencyID == p.AgencyID {
			f.projects[i] = p.Clone()
			return p, nil
		}
	}
	return projects.Project{}, ErrNotFound
}

func (f *fakeStore) DeleteProject(ctx context.Context, agencyID, projectID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errFor("DeleteProject"); err != nil {
		return err
	}
	f.projects = slices.DeleteFunc(f.projects, func(p projects.Project) bool {
		return p.ID == projectID && p.AgencyID == agencyID
	})
	return nil
}

func (f *fakeStore) InsertInvoice(ctx context.Context, inv finance.Invoice) (finance.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errFor("InsertInvoice"); err != nil {
		return finance.Invoice{}, err
	}
	inv.ID = f.id()
	f.invoices = append(f.invoices, inv)
	return inv, nil
}

func (f *fakeStore) SaveInvoice(ctx context.Context, inv finance.Invoice) (finance.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errFor("SaveInvoice"); err != nil {
		return finance.Invoice{}, err
	}
	for i := range f.invoices {
		if f.invoices[i].ID == inv.ID && f.invoices[i].AgencyID == inv.AgencyID {
			f.invoices[i] = inv
			return inv, nil
		}
	}
	return finance.Invoice{}, ErrNotFound
}

func (f *fakeStore) DeleteInvoice(ctx context.Context, agencyID, invoiceID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errFor("DeleteInvoice"); err != nil {
		return err
	}
	f.invoices = slices.DeleteFunc(f.invoices, func(i finance.Invoice) bool {
		return i.ID == invoiceID && i.AgencyID == agencyID
	})
	return nil
}

func (f *fakeStore) InsertExpense(ctx context.Context, exp finance.Expense) (finance.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errFor("InsertExpense"); err != nil {
		return finance.Expense{}, err
	}
	exp.ID = f.id()
	f.expenses = append(f.expenses, exp)
	return exp, nil
}

func (f *fakeStore) SaveExpense(ctx context.Context, exp finance.Expense) (finance.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errFor("SaveExpense"); err != nil {
		return finance.Expense{}, err
	}
	for i := range f.expenses {
		if f.expenses[i].ID == exp.ID && f.expenses[i].AgencyID == exp.AgencyID {
			f.expenses[i] = exp
			return exp, nil
		}
	}
	return finance.Expense{}, ErrNotFound
}

func (f *fakeStore) DeleteExpense(ctx context.Context, agencyID, expenseID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errFor("DeleteExpense"); err != nil {
		return err
	}
	f.expenses = slices.DeleteFunc(f.expenses, func(e finance.Expense) bool {
		return e.ID == expenseID && e.AgencyID == agencyID
	})
	return nil
}

func (f *fakeStore) InsertNotification(ctx context.Context, n notifications.Notification) (notifications.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errFor("InsertNotification"); err != nil {
		return notifications.Notification{}, err
	}
	n.ID = f.id()
	f.notifications = append(f.notifications, n)
	return n, nil
}

func (f *fakeStore) MarkAllNotificationsRead(ctx context.Context, agencyID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errFor("MarkAllNotificationsRead"); err != nil {
		return err
	}
	for i := range f.notifications {
		if f.notifications[i].AgencyID == agencyID {
			f.notifications[i].Read = true
		}
	}
	return nil
}

func (f *fakeStore) DeleteReadNotifications(ctx context.Context, agencyID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errFor("DeleteReadNotifications"); err != nil {
		return err
	}
	f.notifications = slices.DeleteFunc(f.notifications, func(n notifications.Notification) bool {
		return n.AgencyID == agencyID && n.Read
	})
	return nil
}

func (f *fakeStore) UpdatePortalPiece(ctx context.Context, upd PortalUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.portalCalls = append(f.portalCalls, upd)
	if err := f.failPiece[upd.PieceID]; err != nil {
		return err
	}
	for i := range f.projects {
		p := &f.projects[i]
		if p.ID != upd.ProjectID || p.AgencyID != upd.AgencyID {
			continue
		}
		applyPortalPiece(p, upd)
		return nil
	}
	return ErrNotFound
}

func applyPortalPiece(p *projects.Project, upd PortalUpdate) {
	action := content.ActionApprove
	if upd.Status == content.StatusAdjust {
		action = content.ActionRequestAdjust
	}
	for _, list := range []content.PieceList{p.StaticPieces, p.CarouselPieces} {
		for i := range list {
			if list[i].ID != upd.PieceID {
				continue
			}
			next, err := content.ApplyStatus(list[i], action, upd.Feedback)
			if err == nil {
				list[i] = next
			}
		}
	}
}

func (f *fakeStore) portalCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.portalCalls)
}

func (f *fakeStore) setNotificationRead(id uint, read bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == id {
			f.notifications[i].Read = read
		}
	}
}

func (f *fakeStore) notificationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notifications)
}
