package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-hub/internal/domain/agencies"
	"agency-hub/internal/domain/invitations"
	"agency-hub/internal/domain/projects"
	"agency-hub/internal/domain/users"
	"agency-hub/internal/feed"
)

var baseTime = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

type toastRecorder struct {
	mu    sync.Mutex
	msgs  []string
	types []string
}

func (r *toastRecorder) record(msg, typ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	r.types = append(r.types, typ)
}

func (r *toastRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func (r *toastRecorder) last() (string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return "", ""
	}
	return r.msgs[len(r.msgs)-1], r.types[len(r.types)-1]
}

func startOwnerSession(t *testing.T, store *fakeStore, broker *feed.Broker, agencyID uint) (*Session, *toastRecorder) {
	t.Helper()
	rec := &toastRecorder{}
	s := New(Config{
		AgencyID: agencyID,
		Role:     users.RoleOwner,
		Store:    store,
		Feed:     broker,
		Toast:    rec.record,
		Now:      func() time.Time { return baseTime },
	})
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Close)
	return s, rec
}

func seedAgency(store *fakeStore, id uint) {
	store.agencies[id] = agencies.Agency{ID: id, OwnerID: 1, Name: "Studio Alfa"}
}

func TestStartLoadsTrackedCollections(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)
	store.projects = []projects.Project{
		{ID: 10, AgencyID: 1, Name: "Campanha Julho", Status: projects.StatusBriefing},
		{ID: 11, AgencyID: 2, Name: "Outro Tenant", Status: projects.StatusBriefing},
	}

	s, _ := startOwnerSession(t, store, broker, 1)

	require.NotNil(t, s.Agency())
	assert.Equal(t, "Studio Alfa", s.Agency().Name)

	got := s.Projects()
	require.Len(t, got, 1)
	assert.Equal(t, uint(10), got[0].ID)
}

func TestInvalidateTriggersRefetch(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)
	store.projects = []projects.Project{
		{ID: 10, AgencyID: 1, Name: "Campanha Julho", Status: projects.StatusBriefing},
	}

	s, _ := startOwnerSession(t, store, broker, 1)
	require.Len(t, s.Projects(), 1)

	store.mu.Lock()
	store.projects = append(store.projects, projects.Project{
		ID: 12, AgencyID: 1, Name: "Campanha Agosto", Status: projects.StatusBriefing,
	})
	store.mu.Unlock()

	broker.Publish(feed.Change{AgencyID: 1, Table: feed.TableProjects})

	require.Eventually(t, func() bool {
		return len(s.Projects()) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestInvalidationsCoalesceWhileFetchInFlight(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)

	s, _ := startOwnerSession(t, store, broker, 1)
	require.Equal(t, 1, store.fetches("projects"))

	entered, gate := store.gateProjects()

	broker.Publish(feed.Change{AgencyID: 1, Table: feed.TableProjects})
	<-entered // refetch is in flight and blocked

	// these land while the fetch is running and must collapse into one
	for i := 0; i < 4; i++ {
		broker.Publish(feed.Change{AgencyID: 1, Table: feed.TableProjects})
	}

	gate <- struct{}{} // release the in-flight fetch
	<-entered          // the single trailing refetch
	gate <- struct{}{}

	require.Eventually(t, func() bool {
		return store.fetches("projects") == 3
	}, time.Second, 5*time.Millisecond)

	select {
	case <-entered:
		t.Fatal("coalesced signals caused an extra fetch")
	case <-time.After(100 * time.Millisecond):
	}

	assert.Empty(t, s.Projects())
}

func TestCloseTearsDownSubscriptions(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)
	seedAgency(store, 2)
	store.projects = []projects.Project{
		{ID: 10, AgencyID: 1, Name: "Projeto A", Status: projects.StatusBriefing},
		{ID: 20, AgencyID: 2, Name: "Projeto B", Status: projects.StatusBriefing},
	}

	rec := &toastRecorder{}
	first := New(Config{
		AgencyID: 1,
		Role:     users.RoleOwner,
		Store:    store,
		Feed:     broker,
		Toast:    rec.record,
		Now:      func() time.Time { return baseTime },
	})
	require.NoError(t, first.Start(context.Background()))
	require.Greater(t, broker.SubscriberCount(1), 0)

	first.Close()
	assert.Equal(t, 0, broker.SubscriberCount(1))
	assert.Nil(t, first.Projects())

	// a fresh session for another tenant sees only that tenant's rows
	second, _ := startOwnerSession(t, store, broker, 2)
	got := second.Projects()
	require.Len(t, got, 1)
	assert.Equal(t, uint(20), got[0].ID)
	assert.Equal(t, 0, broker.SubscriberCount(1))
}

func TestDesignerWithoutAgencyTracksInvitationsOnly(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	store.invitations = []invitations.Invitation{
		{ID: 1, AgencyID: 5, AgencyName: "Studio Alfa", DesignerEmail: "dede@example.com"},
		{ID: 2, AgencyID: 6, AgencyName: "Studio Beta", DesignerEmail: "outra@example.com"},
	}

	s := New(Config{
		AgencyID: 0,
		Role:     users.RoleDesigner,
		Email:    "dede@example.com",
		Store:    store,
		Feed:     broker,
		Now:      func() time.Time { return baseTime },
	})
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Close)

	got := s.Invitations()
	require.Len(t, got, 1)
	assert.Equal(t, "Studio Alfa", got[0].AgencyName)
	assert.Equal(t, 0, store.fetches("projects"))

	store.mu.Lock()
	store.invitations = append(store.invitations, invitations.Invitation{
		ID: 3, AgencyID: 7, AgencyName: "Studio Gama", DesignerEmail: "dede@example.com",
	})
	store.mu.Unlock()
	broker.Publish(feed.Change{AgencyID: 0, Table: feed.TableInvitations})

	require.Eventually(t, func() bool {
		return len(s.Invitations()) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestWatchEmitsOnCollectionReplace(t *testing.T) {
	store := newFakeStore()
	broker := feed.NewBroker()
	seedAgency(store, 1)

	s, _ := startOwnerSession(t, store, broker, 1)

	var mu sync.Mutex
	seen := map[string]int{}
	unwatch := s.Watch(func(table string) {
		mu.Lock()
		seen[table]++
		mu.Unlock()
	})
	defer unwatch()

	broker.Publish(feed.Change{AgencyID: 1, Table: feed.TableInvoices})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen[feed.TableInvoices] >= 1
	}, time.Second, 5*time.Millisecond)
}
