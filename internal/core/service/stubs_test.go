package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/eventboard/eventboard/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stores. They mirror the Mongo adapters: unique email, unique
// (user, event) pair, conditional update, not-found on missing ids.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	seq       int
	createErr error
	findErr   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (r *stubUserRepo) add(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c := cloneUser(u)
	if c.ID == "" {
		c.ID = fmt.Sprintf("user-%d", r.seq)
	}
	r.byID[c.ID] = c
	return cloneUser(c)
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			r.mu.Unlock()
			return nil, domain.ErrEmailTaken
		}
	}
	r.mu.Unlock()
	return r.add(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.NotFound("user")
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound("user")
	}
	return cloneUser(u), nil
}

type stubEventRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Event
	users     *stubUserRepo
	seq       int
	createErr error
	deleteErr error
	deleted   []string
}

func newStubEventRepo(users *stubUserRepo) *stubEventRepo {
	return &stubEventRepo{byID: make(map[string]*domain.Event), users: users}
}

func cloneEvent(e *domain.Event) *domain.Event {
	c := *e
	c.Images = append([]string(nil), e.Images...)
	return &c
}

func (r *stubEventRepo) withCreator(e *domain.Event) *domain.Event {
	c := cloneEvent(e)
	if r.users != nil {
		if u, err := r.users.FindByID(context.Background(), e.CreatorID); err == nil {
			c.CreatorName = u.Name
		}
	}
	return c
}

func (r *stubEventRepo) Create(_ context.Context, creatorID string, f domain.EventFields) (*domain.Event, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	now := time.Now().UTC()
	e := &domain.Event{
		ID:          fmt.Sprintf("event-%d", r.seq),
		Title:       f.Title,
		Description: f.Description,
		Date:        f.Date,
		Time:        f.Time,
		Location:    f.Location,
		Images:      append([]string(nil), f.Images...),
		SheetLink:   f.SheetLink,
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.byID[e.ID] = e
	return cloneEvent(e), nil
}

func (r *stubEventRepo) FindByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	e, ok := r.byID[id]
	r.mu.Unlock()
	if !ok {
		return nil, domain.NotFound("event")
	}
	return r.withCreator(e), nil
}

func (r *stubEventRepo) FindAll(_ context.Context) ([]*domain.Event, error) {
	r.mu.Lock()
	all := make([]*domain.Event, 0, len(r.byID))
	for _, e := range r.byID {
		all = append(all, e)
	}
	r.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
	out := make([]*domain.Event, len(all))
	for i, e := range all {
		out[i] = r.withCreator(e)
	}
	return out, nil
}

func (r *stubEventRepo) Update(_ context.Context, id string, f domain.EventFields) (*domain.Event, error) {
	r.mu.Lock()
	e, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return nil, domain.NotFound("event")
	}
	e.Title, e.Description, e.Date, e.Time = f.Title, f.Description, f.Date, f.Time
	e.Location, e.Images, e.SheetLink = f.Location, append([]string(nil), f.Images...), f.SheetLink
	e.UpdatedAt = time.Now().UTC()
	r.mu.Unlock()
	return r.withCreator(e), nil
}

func (r *stubEventRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.NotFound("event")
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type regKey struct{ user, event string }

type stubRegistrationRepo struct {
	mu             sync.Mutex
	rows           map[regKey]*domain.Registration
	events         *stubEventRepo
	users          *stubUserRepo
	seq            int
	existsOverride *bool // forces Exists to report this, to simulate a lost race
	cascadeErr     error
	countErr       error
}

func newStubRegistrationRepo(events *stubEventRepo, users *stubUserRepo) *stubRegistrationRepo {
	return &stubRegistrationRepo{rows: make(map[regKey]*domain.Registration), events: events, users: users}
}

func (r *stubRegistrationRepo) Exists(_ context.Context, userID, eventID string) (bool, error) {
	if r.existsOverride != nil {
		return *r.existsOverride, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[regKey{userID, eventID}]
	return ok, nil
}

func (r *stubRegistrationRepo) Create(_ context.Context, userID, eventID string) (*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := regKey{userID, eventID}
	if _, ok := r.rows[k]; ok {
		return nil, domain.ErrAlreadyRegistered
	}
	r.seq++
	reg := &domain.Registration{
		ID:        fmt.Sprintf("reg-%d", r.seq),
		UserID:    userID,
		EventID:   eventID,
		CreatedAt: time.Now().UTC().Add(time.Duration(r.seq) * time.Millisecond),
	}
	r.rows[k] = reg
	c := *reg
	return &c, nil
}

func (r *stubRegistrationRepo) Delete(_ context.Context, userID, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := regKey{userID, eventID}
	if _, ok := r.rows[k]; !ok {
		return domain.NotFound("registration")
	}
	delete(r.rows, k)
	return nil
}

func (r *stubRegistrationRepo) DeleteByEvent(_ context.Context, eventID string) (int64, error) {
	if r.cascadeErr != nil {
		return 0, r.cascadeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k := range r.rows {
		if k.event == eventID {
			delete(r.rows, k)
			n++
		}
	}
	return n, nil
}

func (r *stubRegistrationRepo) CountByEvent(_ context.Context, eventID string) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	return r.count(eventID), nil
}

func (r *stubRegistrationRepo) count(eventID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k := range r.rows {
		if k.event == eventID {
			n++
		}
	}
	return n
}

func (r *stubRegistrationRepo) CountByEvents(_ context.Context, eventIDs []string) (map[string]int64, error) {
	if r.countErr != nil {
		return nil, r.countErr
	}
	out := make(map[string]int64)
	for _, id := range eventIDs {
		if n := r.count(id); n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

func (r *stubRegistrationRepo) FindEventsByUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	r.mu.Lock()
	var ids []string
	for k := range r.rows {
		if k.user == userID {
			ids = append(ids, k.event)
		}
	}
	r.mu.Unlock()

	var out []*domain.Event
	for _, id := range ids {
		e, err := r.events.FindByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue // orphan
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *stubRegistrationRepo) FindRegistrantsByEvent(ctx context.Context, eventID string) ([]domain.Registrant, error) {
	r.mu.Lock()
	var regs []*domain.Registration
	for k, reg := range r.rows {
		if k.event == eventID {
			regs = append(regs, reg)
		}
	}
	r.mu.Unlock()

	sort.Slice(regs, func(i, j int) bool { return regs[i].CreatedAt.Before(regs[j].CreatedAt) })
	var out []domain.Registrant
	for _, reg := range regs {
		u, err := r.users.FindByID(ctx, reg.UserID)
		if err != nil {
			continue
		}
		out = append(out, domain.Registrant{UserID: u.ID, Name: u.Name, Email: u.Email, RegisteredAt: reg.CreatedAt})
	}
	return out, nil
}

type stubCascadeReporter struct {
	reported []string
}

func (c *stubCascadeReporter) ReportCascadeFailure(eventID string, _ error) {
	c.reported = append(c.reported, eventID)
}
