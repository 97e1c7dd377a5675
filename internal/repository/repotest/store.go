// Package repotest provides an in-memory repository.Store for tests.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campus-helpdesk/internal/domain"
	"github.com/spec-kit/campus-helpdesk/internal/repository"
)

// memState mirrors the Postgres schema closely enough for lifecycle tests,
// including ON DELETE SET NULL on history and notifications.
type memState struct {
	tickets       map[int64]domain.Ticket
	history       []domain.TicketHistory
	notifications []domain.Notification
	users         map[string]domain.User
	offices       map[int64]domain.Office
	profiles      map[string]domain.StaffProfile

	nextTicket  int64
	nextHistory int64
	nextNotice  int64
	nextOffice  int64
	nextUser    int64
	tick        time.Time
}

func newMemState() *memState {
	return &memState{
		tickets:  map[int64]domain.Ticket{},
		users:    map[string]domain.User{},
		offices:  map[int64]domain.Office{},
		profiles: map[string]domain.StaffProfile{},
		tick:     time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC),
	}
}

func (s *memState) now() time.Time {
	s.tick = s.tick.Add(time.Second)
	return s.tick
}

func (s *memState) clone() *memState {
	c := *s
	c.tickets = make(map[int64]domain.Ticket, len(s.tickets))
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	c.history = append([]domain.TicketHistory(nil), s.history...)
	c.notifications = append([]domain.Notification(nil), s.notifications...)
	c.users = make(map[string]domain.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.offices = make(map[int64]domain.Office, len(s.offices))
	for k, v := range s.offices {
		c.offices[k] = v
	}
	c.profiles = make(map[string]domain.StaffProfile, len(s.profiles))
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	return &c
}

// Store is a repository.Store whose WithinTx restores a snapshot on error.
// HistoryErr and NoticeErr make the matching Create calls fail.
type Store struct {
	mu    *sync.Mutex
	state *memState

	HistoryErr error
	NoticeErr  error
	Commits    int
	Rollbacks  int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, state: newMemState()}
}

func (m *Store) Tickets() repository.TicketRepository { return memTickets{m} }
func (m *Store) History() repository.TicketHistoryRepository { return memHistory{m} }
func (m *Store) Notifications() repository.NotificationRepository { return memNotifications{m} }
func (m *Store) Directory() repository.DirectoryRepository { return memDirectory{m} }

func (m *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	m.mu.Lock()
	snapshot := m.state.clone()
	m.mu.Unlock()
	if err := fn(m); err != nil {
		m.mu.Lock()
		m.state = snapshot
		m.Rollbacks++
		m.mu.Unlock()
		return err
	}
	m.mu.Lock()
	m.Commits++
	m.mu.Unlock()
	return nil
}

// Clock advances the store's fake time by one second per call.
func (m *Store) Clock() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.now()
}

// fixtures

// AddOffice inserts an office.
func (m *Store) AddOffice(name, contact string) domain.Office {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.nextOffice++
	office := domain.Office{ID: m.state.nextOffice, Name: name, ContactEmail: contact, CreatedAt: m.state.now()}
	m.state.offices[office.ID] = office
	return office
}

// AddUser inserts a student, or a superuser when superuser is set.
func (m *Store) AddUser(name, email string, superuser bool) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.nextUser++
	user := domain.User{
		ID:          fmt.Sprintf("00000000-0000-0000-0000-%012d", m.state.nextUser),
		Name:        name,
		Email:       email,
		IsSuperuser: superuser,
		CreatedAt:   m.state.now(),
	}
	m.state.users[user.ID] = user
	return &user
}

// AddStaff inserts a user enrolled in office.
func (m *Store) AddStaff(name, email string, office domain.Office) *domain.User {
	user := m.AddUser(name, email, false)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.profiles[user.ID] = domain.StaffProfile{UserID: user.ID, OfficeID: office.ID, CreatedAt: m.state.now()}
	officeID := office.ID
	user.OfficeID = &officeID
	return user
}

// HistoryFor lists a ticket's ledger newest first.
func (m *Store) HistoryFor(ticketID int64) []domain.TicketHistory {
	entries, _ := memHistory{m}.ListByTicket(context.Background(), ticketID)
	return entries
}

// NoticesFor lists a recipient's notices in creation order.
func (m *Store) NoticesFor(recipientID string) []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.state.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out
}

// Ticket returns the stored copy of a ticket.
func (m *Store) Ticket(id int64) (domain.Ticket, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.state.tickets[id]
	return t, ok
}

// tickets

type memTickets struct{ m *Store }

func (r memTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s := r.m.state
	s.nextTicket++
	now := s.now()
	ticket.ID = s.nextTicket
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	s.tickets[ticket.ID] = *ticket
	return nil
}

func (r memTickets) Update(_ context.Context, ticket *domain.Ticket) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s := r.m.state
	if _, ok := s.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = s.now()
	s.tickets[ticket.ID] = *ticket
	return nil
}

func (r memTickets) MarkViewed(_ context.Context, ticketID int64, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.state.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	t.LastViewedByUser = &at
	r.m.state.tickets[ticketID] = t
	return nil
}

func (r memTickets) Delete(_ context.Context, ticketID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s := r.m.state
	if _, ok := s.tickets[ticketID]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.tickets, ticketID)
	for i := range s.history {
		if s.history[i].TicketID != nil && *s.history[i].TicketID == ticketID {
			s.history[i].TicketID = nil
		}
	}
	for i := range s.notifications {
		if s.notifications[i].TicketID != nil && *s.notifications[i].TicketID == ticketID {
			s.notifications[i].TicketID = nil
		}
	}
	return nil
}

func (r memTickets) GetByID(_ context.Context, ticketID int64) (*domain.Ticket, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.state.tickets[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r memTickets) ListByOwner(_ context.Context, ownerID string) ([]domain.Ticket, error) {
	return r.filter(func(t domain.Ticket) bool { return t.CreatedBy == ownerID }), nil
}

func (r memTickets) ListByOffice(_ context.Context, officeID int64) ([]domain.Ticket, error) {
	r.m.mu.Lock()
	profiles := r.m.state.profiles
	r.m.mu.Unlock()
	return r.filter(func(t domain.Ticket) bool {
		if t.AssignedTo == nil {
			return false
		}
		p, ok := profiles[*t.AssignedTo]
		return ok && p.OfficeID == officeID
	}), nil
}

func (r memTickets) ListAll(_ context.Context) ([]domain.Ticket, error) {
	return r.filter(func(domain.Ticket) bool { return true }), nil
}

func (r memTickets) filter(keep func(domain.Ticket) bool) []domain.Ticket {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.Ticket{}
	for _, t := range r.m.state.tickets {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// history

type memHistory struct{ m *Store }

func (r memHistory) Create(_ context.Context, entry *domain.TicketHistory) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.HistoryErr != nil {
		return r.m.HistoryErr
	}
	s := r.m.state
	s.nextHistory++
	entry.ID = s.nextHistory
	entry.Timestamp = s.now()
	s.history = append(s.history, *entry)
	return nil
}

func (r memHistory) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketHistory, error) {
	return r.filter(func(h domain.TicketHistory) bool { return h.TicketID != nil && *h.TicketID == ticketID }), nil
}

func (r memHistory) ListByOwner(_ context.Context, ownerID string) ([]domain.TicketHistory, error) {
	return r.filter(func(h domain.TicketHistory) bool { return h.OwnerID == ownerID }), nil
}

func (r memHistory) filter(keep func(domain.TicketHistory) bool) []domain.TicketHistory {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.TicketHistory{}
	for i := len(r.m.state.history) - 1; i >= 0; i-- {
		if keep(r.m.state.history[i]) {
			out = append(out, r.m.state.history[i])
		}
	}
	return out
}

// notifications

type memNotifications struct{ m *Store }

func (r memNotifications) Create(_ context.Context, n *domain.Notification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.NoticeErr != nil {
		return r.m.NoticeErr
	}
	s := r.m.state
	s.nextNotice++
	n.ID = s.nextNotice
	n.CreatedAt = s.now()
	s.notifications = append(s.notifications, *n)
	return nil
}

func (r memNotifications) ListRecent(_ context.Context, recipientID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.Notification{}
	for i := len(r.m.state.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		n := r.m.state.notifications[i]
		if n.RecipientID == recipientID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r memNotifications) CountUnread(_ context.Context, recipientID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var count int64
	for _, n := range r.m.state.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r memNotifications) MarkReadForTicket(_ context.Context, recipientID string, ticketID int64) (int64, error) {
	return r.mark(func(n domain.Notification) bool {
		return n.RecipientID == recipientID && n.TicketID != nil && *n.TicketID == ticketID
	}), nil
}

func (r memNotifications) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	return r.mark(func(n domain.Notification) bool { return n.RecipientID == recipientID }), nil
}

func (r memNotifications) mark(match func(domain.Notification) bool) int64 {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var changed int64
	for i := range r.m.state.notifications {
		n := &r.m.state.notifications[i]
		if !n.IsRead && match(*n) {
			n.IsRead = true
			changed++
		}
	}
	return changed
}

// directory

type memDirectory struct{ m *Store }

func (r memDirectory) withOffice(u domain.User) *domain.User {
	if p, ok := r.m.state.profiles[u.ID]; ok {
		officeID := p.OfficeID
		u.OfficeID = &officeID
	}
	return &u
}

func (r memDirectory) CreateUser(_ context.Context, user *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.state.users {
		if existing.Email == user.Email {
			return errors.New("duplicate email")
		}
	}
	r.m.state.nextUser++
	user.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", r.m.state.nextUser)
	user.CreatedAt = r.m.state.now()
	r.m.state.users[user.ID] = *user
	return nil
}

func (r memDirectory) GetUser(_ context.Context, id string) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.state.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.withOffice(u), nil
}

func (r memDirectory) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.state.users {
		if u.Email == email {
			return r.withOffice(u), nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memDirectory) CreateOffice(_ context.Context, office *domain.Office) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, existing := range r.m.state.offices {
		if existing.Name == office.Name {
			existing.ContactEmail = office.ContactEmail
			r.m.state.offices[id] = existing
			*office = existing
			return nil
		}
	}
	r.m.state.nextOffice++
	office.ID = r.m.state.nextOffice
	office.CreatedAt = r.m.state.now()
	r.m.state.offices[office.ID] = *office
	return nil
}

func (r memDirectory) GetOffice(_ context.Context, id int64) (*domain.Office, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.state.offices[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &o, nil
}

func (r memDirectory) GetOfficeByName(_ context.Context, name string) (*domain.Office, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, o := range r.m.state.offices {
		if o.Name == name {
			office := o
			return &office, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memDirectory) ListOffices(_ context.Context) ([]domain.Office, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.Office{}
	for _, o := range r.m.state.offices {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memDirectory) CreateStaffProfile(_ context.Context, profile *domain.StaffProfile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	profile.CreatedAt = r.m.state.now()
	r.m.state.profiles[profile.UserID] = *profile
	return nil
}

func (r memDirectory) OfficeOf(_ context.Context, userID string) (*int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.state.profiles[userID]
	if !ok {
		return nil, nil
	}
	officeID := p.OfficeID
	return &officeID, nil
}

func (r memDirectory) ListStaffByOffice(_ context.Context, officeID int64) ([]domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var profiles []domain.StaffProfile
	for _, p := range r.m.state.profiles {
		if p.OfficeID == officeID {
			profiles = append(profiles, p)
		}
	}
	sort.Slice(profiles, func(i, j int) bool {
		if !profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
		}
		return profiles[i].UserID < profiles[j].UserID
	})
	out := []domain.User{}
	for _, p := range profiles {
		out = append(out, *r.withOffice(r.m.state.users[p.UserID]))
	}
	return out, nil
}

func (r memDirectory) DeleteStaff(_ context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var removed int64
	for userID := range r.m.state.profiles {
		if u, ok := r.m.state.users[userID]; ok && !u.IsSuperuser {
			delete(r.m.state.users, userID)
			delete(r.m.state.profiles, userID)
			removed++
		}
	}
	return removed, nil
}
