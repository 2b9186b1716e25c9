package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-hub/internal/domain/finance"
	"agency-hub/internal/domain/notifications"
	"agency-hub/internal/domain/projects"
	"agency-hub/internal/feed"
)

func day(offset int) time.Time {
	return baseTime.AddDate(0, 0, offset)
}

func TestAddInvoiceReconcilesServerRow(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)
	store.invoices = []finance.Invoice{
		{ID: 101, AgencyID: 1, ClientName: "Padaria Pão Quente", Amount: 900, Status: finance.InvoiceStatusPending, DueDate: day(20)},
	}

	s, _ := startOwnerSession(t, store, broker, 1)

	saved, err := s.AddInvoice(context.Background(), finance.Invoice{
		ClientName: "Cliente Novo", Amount: 1500, Status: finance.InvoiceStatusPending, DueDate: day(5),
	})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, uint(1), saved.AgencyID)
	assert.Equal(t, finance.KindInvoice, saved.Kind)

	got := s.Invoices()
	require.Len(t, got, 2)
	// sorted by due date ascending, no provisional row left behind
	assert.Equal(t, saved.ID, got[0].ID)
	assert.Equal(t, uint(101), got[1].ID)
	for _, inv := range got {
		assert.NotZero(t, inv.ID)
	}
}

func TestUpdateInvoiceFailureRollsBackAndRethrows(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)
	store.invoices = []finance.Invoice{
		{ID: 101, AgencyID: 1, ClientName: "Padaria Pão Quente", Amount: 900, Status: finance.InvoiceStatusPending, DueDate: day(20)},
		{ID: 102, AgencyID: 1, ClientName: "Banca Central", Amount: 300, Status: finance.InvoiceStatusPaid, DueDate: day(30)},
	}

	s, rec := startOwnerSession(t, store, broker, 1)
	before := s.Invoices()
	require.Len(t, before, 2)

	boom := errors.New("constraint violated")
	store.failWith("SaveInvoice", boom)

	changed := before[0]
	changed.Status = finance.InvoiceStatusPaid
	err := s.UpdateInvoice(context.Background(), changed)
	require.ErrorIs(t, err, boom)

	// local view reverted to the exact pre-mutation collection
	assert.Equal(t, before, s.Invoices())

	msg, typ := rec.last()
	assert.Equal(t, "Falha ao atualizar fatura.", msg)
	assert.Equal(t, notifications.TypeError, typ)
}

func TestUpdateInvoiceRejectsForeignAgency(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)

	s, _ := startOwnerSession(t, store, broker, 1)

	err := s.UpdateInvoice(context.Background(), finance.Invoice{ID: 7, AgencyID: 2})
	assert.ErrorIs(t, err, ErrWrongAgency)
}

func TestDeleteExpenseFailureRollsBack(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)
	store.expenses = []finance.Expense{
		{ID: 201, AgencyID: 1, Description: "Assinatura de fontes", Amount: 120, Date: day(-3)},
	}

	s, rec := startOwnerSession(t, store, broker, 1)
	before := s.Expenses()
	require.Len(t, before, 1)

	store.failWith("DeleteExpense", errors.New("gone away"))
	err := s.DeleteExpense(context.Background(), 201)
	require.Error(t, err)

	assert.Equal(t, before, s.Expenses())
	msg, _ := rec.last()
	assert.Equal(t, "Falha ao deletar despesa.", msg)
}

func TestAddExpenseSortsMostRecentFirst(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)
	store.expenses = []finance.Expense{
		{ID: 201, AgencyID: 1, Description: "Hospedagem", Amount: 80, Date: day(-10)},
	}

	s, _ := startOwnerSession(t, store, broker, 1)

	saved, err := s.AddExpense(context.Background(), finance.Expense{
		Description: "Banco de imagens", Amount: 200, Date: day(-1),
	})
	require.NoError(t, err)
	assert.Equal(t, finance.KindExpense, saved.Kind)

	got := s.Expenses()
	require.Len(t, got, 2)
	assert.Equal(t, "Banco de imagens", got[0].Description)
	assert.Equal(t, "Hospedagem", got[1].Description)
}

func TestMoveProjectToPostedStampsCompletionAndNotifies(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)
	store.projects = []projects.Project{
		{ID: 10, AgencyID: 1, Name: "Campanha Julho", Status: projects.StatusApproval},
	}

	s, _ := startOwnerSession(t, store, broker, 1)

	require.NoError(t, s.MoveProject(context.Background(), 10, projects.StatusPosted))

	got := s.Projects()
	require.Len(t, got, 1)
	assert.Equal(t, projects.StatusPosted, got[0].Status)
	require.NotNil(t, got[0].CompletedAt)
	assert.True(t, got[0].CompletedAt.Equal(baseTime))

	// the persisted row carries the stamp too
	store.mu.Lock()
	persisted := store.projects[0].Clone()
	store.mu.Unlock()
	require.NotNil(t, persisted.CompletedAt)

	require.Equal(t, 1, store.notificationCount())
	store.mu.Lock()
	n := store.notifications[0]
	store.mu.Unlock()
	assert.Equal(t, notifications.TypeSuccess, n.Type)
	assert.Equal(t, notifications.CompletedMessage("Campanha Julho"), n.Message)
	assert.Equal(t, "/projects/10", n.Link)

	// leaving Postado clears the stamp and does not announce again
	require.NoError(t, s.MoveProject(context.Background(), 10, projects.StatusAdjustments))
	got = s.Projects()
	assert.Nil(t, got[0].CompletedAt)
	assert.Equal(t, 1, store.notificationCount())
}

func TestMoveProjectFailureRollsBackWithToast(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)
	store.projects = []projects.Project{
		{ID: 10, AgencyID: 1, Name: "Campanha Julho", Status: projects.StatusProducing},
	}

	s, rec := startOwnerSession(t, store, broker, 1)

	store.failWith("SaveProject", errors.New("connection reset"))
	err := s.MoveProject(context.Background(), 10, projects.StatusApproval)
	require.Error(t, err)

	got := s.Projects()
	require.Len(t, got, 1)
	assert.Equal(t, projects.StatusProducing, got[0].Status)

	msg, typ := rec.last()
	assert.Equal(t, "Ocorreu um erro ao mover o projeto.", msg)
	assert.Equal(t, notifications.TypeError, typ)
	assert.Zero(t, store.notificationCount())
}

func TestMoveProjectUnknownID(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)

	s, rec := startOwnerSession(t, store, broker, 1)

	err := s.MoveProject(context.Background(), 999, projects.StatusPosted)
	assert.ErrorIs(t, err, ErrNotFound)
	msg, _ := rec.last()
	assert.Equal(t, "Ocorreu um erro ao mover o projeto.", msg)
}

func TestUpdateProjectFailureRestoresSnapshot(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)
	store.projects = []projects.Project{
		{ID: 10, AgencyID: 1, Name: "Campanha Julho", Client: "Padaria Pão Quente", Status: projects.StatusBriefing},
	}

	s, rec := startOwnerSession(t, store, broker, 1)
	before := s.Projects()

	store.failWith("SaveProject", errors.New("timeout"))
	changed := before[0].Clone()
	changed.Name = "Campanha Agosto"
	err := s.UpdateProject(context.Background(), changed)
	require.Error(t, err)

	assert.Equal(t, before, s.Projects())
	msg, _ := rec.last()
	assert.Equal(t, "Falha ao atualizar projeto.", msg)
}

func TestClearReadNotificationsFlows(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)
	store.notifications = []notifications.Notification{
		{ID: 301, AgencyID: 1, Message: "antiga", Type: notifications.TypeInfo, Read: true, CreatedAt: day(-2)},
		{ID: 302, AgencyID: 1, Message: "nova", Type: notifications.TypeInfo, Read: false, CreatedAt: day(-1)},
	}

	s, rec := startOwnerSession(t, store, broker, 1)

	require.NoError(t, s.ClearReadNotifications(context.Background()))
	got := s.Notifications()
	require.Len(t, got, 1)
	assert.Equal(t, uint(302), got[0].ID)
	msg, typ := rec.last()
	assert.Equal(t, "Notificações lidas foram removidas.", msg)
	assert.Equal(t, notifications.TypeSuccess, typ)

	// nothing read left: informational toast, no store call side effects
	require.NoError(t, s.ClearReadNotifications(context.Background()))
	msg, typ = rec.last()
	assert.Equal(t, "Não há notificações lidas para limpar.", msg)
	assert.Equal(t, notifications.TypeInfo, typ)

	require.NoError(t, s.MarkAllNotificationsRead(context.Background()))
	for _, n := range s.Notifications() {
		assert.True(t, n.Read)
	}
	require.NoError(t, s.ClearReadNotifications(context.Background()))
	assert.Empty(t, s.Notifications())
}

func TestMarkAllNotificationsReadFailureRollsBack(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)
	store.notifications = []notifications.Notification{
		{ID: 301, AgencyID: 1, Message: "nova", Type: notifications.TypeInfo, Read: false, CreatedAt: day(-1)},
	}

	s, rec := startOwnerSession(t, store, broker, 1)

	store.failWith("MarkAllNotificationsRead", errors.New("deadlock"))
	err := s.MarkAllNotificationsRead(context.Background())
	require.Error(t, err)

	got := s.Notifications()
	require.Len(t, got, 1)
	assert.False(t, got[0].Read)
	msg, _ := rec.last()
	assert.Equal(t, "Falha ao marcar notificações como lidas.", msg)
}
