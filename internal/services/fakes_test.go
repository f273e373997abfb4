package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"lumaevents/internal/domain"
)

// callLog records repository mutations in order across fakes.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.calls = append(l.calls, call)
	l.mu.Unlock()
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Event
	nextID int
	err    error // returned by every method when set
	log    *callLog
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
	for _, e := range events {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventListFilter) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*domain.Event{}
	for _, e := range f.byID {
		if filter.StartsAfter != nil && e.Date.Before(*filter.StartsAfter) {
			continue
		}
		if filter.OrganizerID != "" && e.OrganizerID != filter.OrganizerID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeEventRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*domain.Event{}
	for _, id := range ids {
		if e, ok := f.byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, eventID string, u domain.EventUpdate) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	updated := *e
	if u.Title != nil {
		updated.Title = *u.Title
	}
	if u.Description != nil {
		updated.Description = *u.Description
	}
	if u.Date != nil {
		updated.Date = *u.Date
	}
	if u.EndTime != nil {
		updated.EndTime = *u.EndTime
	}
	if u.Location != nil {
		updated.Location = *u.Location
	}
	if u.ImageURL != nil {
		updated.ImageURL = u.ImageURL
	}
	f.byID[eventID] = &updated
	return &updated, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	f.log.add("events")
	return nil
}

type fakeAgendaRepo struct {
	mu      sync.Mutex
	byEvent map[string][]*domain.AgendaItem
	nextID  int
	err     error
	log     *callLog
}

func newFakeAgendaRepo() *fakeAgendaRepo {
	return &fakeAgendaRepo{byEvent: make(map[string][]*domain.AgendaItem), nextID: 1}
}

func (f *fakeAgendaRepo) CreateItems(ctx context.Context, eventID string, items []domain.AgendaItemInput) ([]*domain.AgendaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.AgendaItem, 0, len(items))
	for _, in := range items {
		item := &domain.AgendaItem{
			ID:           fmt.Sprintf("ag-%d", f.nextID),
			EventID:      eventID,
			Time:         in.Time,
			Title:        in.Title,
			DisplayOrder: in.DisplayOrder,
		}
		f.nextID++
		f.byEvent[eventID] = append(f.byEvent[eventID], item)
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeAgendaRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.AgendaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]*domain.AgendaItem{}, f.byEvent[eventID]...), nil
}

func (f *fakeAgendaRepo) DeleteByEventID(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.byEvent, eventID)
	f.log.add("agenda_items")
	return nil
}

// fakeRegistrationRepo enforces the (event, user) uniqueness the store does.
type fakeRegistrationRepo struct {
	mu       sync.Mutex
	rows     []*domain.Registration
	nextID   int
	err      error
	countErr error
	log      *callLog
	events   *fakeEventRepo // when set, inserts for unknown events fail like a foreign key
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{nextID: 1}
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	if f.events != nil {
		if _, err := f.events.GetByID(ctx, reg.EventID); err != nil {
			return domain.ErrNotFound
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, r := range f.rows {
		if r.EventID == reg.EventID && r.UserID == reg.UserID {
			return domain.ErrDuplicateRegistration
		}
	}
	reg.ID = fmt.Sprintf("reg-%d", f.nextID)
	f.nextID++
	f.rows = append(f.rows, reg)
	return nil
}

func (f *fakeRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rows {
		if r.EventID == eventID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*domain.Registration{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) DeleteByEventAndUser(ctx context.Context, eventID, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.EventID == eventID && r.UserID == userID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return n, nil
}

func (f *fakeRegistrationRepo) DeleteByEventID(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.EventID != eventID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	f.log.add("registrations")
	return nil
}

func (f *fakeRegistrationRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, r := range f.rows {
		if r.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRegistrationRepo) CountByEventIDs(ctx context.Context, eventIDs []string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return nil, f.countErr
	}
	counts := make(map[string]int, len(eventIDs))
	wanted := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		wanted[id] = true
	}
	for _, r := range f.rows {
		if wanted[r.EventID] {
			counts[r.EventID]++
		}
	}
	return counts, nil
}

func (f *fakeRegistrationRepo) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeProfileRepo struct {
	byID map[string]*domain.Profile
	err  error
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

type sentMail struct {
	to, subject, html, text string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, html, text})
	return nil
}

type fakeRenderer struct {
	err      error
	lastName string
	lastData any
}

func (r *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	r.lastName = name
	r.lastData = data
	if r.err != nil {
		return "", "", "", r.err
	}
	return "subject", "<p>html</p>", "text", nil
}

// fakeConfirmations records every confirmation request.
type fakeConfirmations struct {
	mu    sync.Mutex
	ids   []string
	err   error
	delay time.Duration
}

func (f *fakeConfirmations) SendRegistrationConfirmation(ctx context.Context, registrationID string) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, registrationID)
	return f.err
}

func (f *fakeConfirmations) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ids...)
}

type fakeStorage struct {
	path        string
	contentType string
	size        int
	err         error
}

func (s *fakeStorage) Upload(ctx context.Context, path, contentType string, body []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.path = path
	s.contentType = contentType
	s.size = len(body)
	return "https://storage.example.com/" + path, nil
}
