package state

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"agency-hub/internal/domain/agencies"
	"agency-hub/internal/domain/finance"
	"agency-hub/internal/domain/invitations"
	"agency-hub/internal/domain/notifications"
	"agency-hub/internal/domain/projects"
	"agency-hub/internal/domain/users"
	"agency-hub/internal/feed"
)

// ToastFunc surfaces a transient user notice (message, type).
type ToastFunc func(message, typ string)

// Config describes one tenant context. A session never changes tenant; an
// identity or agency switch means Close and a fresh session, which is what
// guarantees no stale subscriptions survive the switch.
type Config struct {
	AgencyID uint
	Role     string // users.RoleOwner or users.RoleDesigner
	Email    string // used for invitation tracking when AgencyID is zero

	Store  Store
	Feed   feed.Feed
	Toast  ToastFunc
	Logger *zap.Logger

	// Now is the session clock; nil means time.Now.
	Now func() time.Time
}

// Session owns the in-memory collections for one tenant context. All reads
// come from local state; the realtime watchers replace whole collections on
// every change signal (last fetch wins).
type Session struct {
	agencyID uint
	role     string
	email    string

	store  Store
	feed   feed.Feed
	toast  ToastFunc
	logger *zap.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.Mutex
	agency        *agencies.Agency
	projects      []projects.Project
	invoices      []finance.Invoice
	expenses      []finance.Expense
	invitations   []invitations.Invitation
	notifications []notifications.Notification

	// session-scoped guard sets, dropped with the session itself
	toasted   map[uint]struct{} // notification ids already surfaced as toast
	notifying map[uint]struct{} // project ids with a deadline notification issued

	unsubs []func()

	watcherID int
	watchers  map[int]func(table string)
}

func New(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Toast == nil {
		cfg.Toast = func(string, string) {}
	}
	return &Session{
		agencyID:  cfg.AgencyID,
		role:      cfg.Role,
		email:     cfg.Email,
		store:     cfg.Store,
		feed:      cfg.Feed,
		toast:     cfg.Toast,
		logger:    cfg.Logger,
		now:       cfg.Now,
		toasted:   make(map[uint]struct{}),
		notifying: make(map[uint]struct{}),
		watchers:  make(map[int]func(string)),
	}
}

// Start opens the standing subscriptions and runs the initial full fetch of
// every tracked collection. Designers without an agency only track their
// pending invitations.
func (s *Session) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if s.agencyID == 0 {
		if s.role == users.RoleDesigner && s.email != "" {
			return s.track(0, feed.TableInvitations, s.refreshInvitations)
		}
		return nil
	}

	type tracker struct {
		table   string
		refresh func(context.Context)
	}
	// notifications load before projects so the deadline pass can see
	// unread rows that already exist
	tracked := []tracker{
		{feed.TableAgencies, s.refreshAgency},
		{feed.TableNotifications, s.refreshNotifications},
		{feed.TableProjects, s.refreshProjects},
	}
	if s.role == users.RoleOwner {
		tracked = append(tracked,
			tracker{feed.TableInvoices, s.refreshInvoices},
			tracker{feed.TableExpenses, s.refreshExpenses},
		)
	}

	for _, t := range tracked {
		if err := s.track(s.agencyID, t.table, t.refresh); err != nil {
			s.Close()
			return err
		}
	}
	return nil
}

// track subscribes first, then runs the initial fetch, so a change landing
// between the two still triggers a re-fetch. Signals arriving while a fetch
// is in flight coalesce into a single trailing re-fetch.
func (s *Session) track(agencyID uint, table string, refresh func(context.Context)) error {
	notify := make(chan struct{}, 1)
	unsub, err := s.feed.Subscribe(agencyID, table, func() {
		select {
		case notify <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	s.unsubs = append(s.unsubs, unsub)

	refresh(s.ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-notify:
				refresh(s.ctx)
			}
		}
	}()
	return nil
}

// Close tears down every subscription and drops the guard sets. The session
// must not be reused afterwards.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	s.wg.Wait()

	s.mu.Lock()
	s.agency = nil
	s.projects = nil
	s.invoices = nil
	s.expenses = nil
	s.invitations = nil
	s.notifications = nil
	s.toasted = make(map[uint]struct{})
	s.notifying = make(map[uint]struct{})
	s.mu.Unlock()
}

func (s *Session) AgencyID() uint { return s.agencyID }

// Watch registers a listener called whenever a collection is replaced.
func (s *Session) Watch(fn func(table string)) (unwatch func()) {
	s.mu.Lock()
	s.watcherID++
	id := s.watcherID
	s.watchers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *Session) emit(table string) {
	s.mu.Lock()
	fns := make([]func(string), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(table)
	}
}

/* ---------------- collection reads ---------------- */

func (s *Session) Agency() *agencies.Agency {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.agency == nil {
		return nil
	}
	a := *s.agency
	return &a
}

func (s *Session) Projects() []projects.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.projects)
}

func (s *Session) Invoices() []finance.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.invoices)
}

func (s *Session) Expenses() []finance.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.expenses)
}

func (s *Session) Invitations() []invitations.Invitation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.invitations)
}

func (s *Session) Notifications() []notifications.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notifications)
}

// Collection returns the named collection for streaming; nil for unknown
// tables.
func (s *Session) Collection(table string) interface{} {
	switch table {
	case feed.TableAgencies:
		return s.Agency()
	case feed.TableProjects:
		return s.Projects()
	case feed.TableInvoices:
		return s.Invoices()
	case feed.TableExpenses:
		return s.Expenses()
	case feed.TableInvitations:
		return s.Invitations()
	case feed.TableNotifications:
		return s.Notifications()
	}
	return nil
}

/* ---------------- realtime refresh ---------------- */

func (s *Session) refreshAgency(ctx context.Context) {
	a, err := s.store.Agency(ctx, s.agencyID)
	if err != nil {
		s.logger.Warn("agency refresh failed", zap.Uint("agency_id", s.agencyID), zap.Error(err))
		return
	}
	s.mu.Lock()
	s.agency = &a
	s.mu.Unlock()
	s.emit(feed.TableAgencies)
}

func (s *Session) refreshProjects(ctx context.Context) {
	rows, err := s.store.Projects(ctx, s.agencyID)
	if err != nil {
		s.logger.Warn("projects refresh failed", zap.Uint("agency_id", s.agencyID), zap.Error(err))
		return
	}
	s.mu.Lock()
	s.projects = rows
	s.mu.Unlock()
	s.emit(feed.TableProjects)
	s.generateDeadlineNotifications(ctx, rows)
}

func (s *Session) refreshInvoices(ctx context.Context) {
	rows, err := s.store.Invoices(ctx, s.agencyID)
	if err != nil {
		s.logger.Warn("invoices refresh failed", zap.Uint("agency_id", s.agencyID), zap.Error(err))
		return
	}
	s.mu.Lock()
	s.invoices = rows
	s.mu.Unlock()
	s.emit(feed.TableInvoices)
}

func (s *Session) refreshExpenses(ctx context.Context) {
	rows, err := s.store.Expenses(ctx, s.agencyID)
	if err != nil {
		s.logger.Warn("expenses refresh failed", zap.Uint("agency_id", s.agencyID), zap.Error(err))
		return
	}
	s.mu.Lock()
	s.expenses = rows
	s.mu.Unlock()
	s.emit(feed.TableExpenses)
}

func (s *Session) refreshInvitations(ctx context.Context) {
	rows, err := s.store.InvitationsForDesigner(ctx, s.email)
	if err != nil {
		s.logger.Warn("invitations refresh failed", zap.String("email", s.email), zap.Error(err))
		return
	}
	s.mu.Lock()
	s.invitations = rows
	s.mu.Unlock()
	s.emit(feed.TableInvitations)
}

// refreshNotifications replaces the collection and surfaces at most one new
// unread notification as a toast, remembering its id for the session's life.
func (s *Session) refreshNotifications(ctx context.Context) {
	rows, err := s.store.Notifications(ctx, s.agencyID)
	if err != nil {
		s.logger.Warn("notifications refresh failed", zap.Uint("agency_id", s.agencyID), zap.Error(err))
		return
	}

	s.mu.Lock()
	var latest *notifications.Notification
	for i := range rows {
		n := rows[i]
		if n.Read {
			continue
		}
		if _, seen := s.toasted[n.ID]; seen {
			continue
		}
		if latest == nil || n.CreatedAt.After(latest.CreatedAt) {
			latest = &rows[i]
		}
	}
	if latest != nil {
		s.toasted[latest.ID] = struct{}{}
	}
	s.notifications = rows
	s.mu.Unlock()

	if latest != nil {
		s.toast(latest.Message, latest.Type)
	}
	s.emit(feed.TableNotifications)
}
