package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/eventboard/eventboard/internal/core/domain"
)

func TestRegistrationService_Register_ThenDuplicate(t *testing.T) {
	f := newFixture()
	e := f.mustCreate(t, validDraft())
	ctx := context.Background()

	if err := f.regSvc.Register(ctx, f.user, e.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	if ok, _ := f.regSvc.IsRegistered(ctx, f.user, e.ID); !ok {
		t.Fatal("expected registered")
	}

	err := f.regSvc.Register(ctx, f.user, e.ID)
	if !errors.Is(err, domain.ErrAlreadyRegistered) || domain.KindOf(err) != domain.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if n, _ := f.regSvc.CountRegistrants(ctx, e.ID); n != 1 {
		t.Fatalf("duplicate must not change count, got %d", n)
	}
}

func TestRegistrationService_Register_LostRaceIsConflict(t *testing.T) {
	f := newFixture()
	e := f.mustCreate(t, validDraft())
	ctx := context.Background()

	_ = f.regSvc.Register(ctx, f.user, e.ID)

	// The pre-check passes but the unique index rejects the insert.
	no := false
	f.regs.existsOverride = &no

	err := f.regSvc.Register(ctx, f.user, e.ID)
	if !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("expected conflict from insert race, got %v", err)
	}
}

func TestRegistrationService_Register_Concurrent(t *testing.T) {
	f := newFixture()
	e := f.mustCreate(t, validDraft())
	ctx := context.Background()

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.regSvc.Register(ctx, f.user, e.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || conflicts != n-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d / %d", n-1, succeeded, conflicts)
	}
}

func TestRegistrationService_Register_Authorization(t *testing.T) {
	f := newFixture()
	e := f.mustCreate(t, validDraft())
	ctx := context.Background()

	if err := f.regSvc.Register(ctx, nil, e.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous: expected unauthorized, got %v", err)
	}
	if err := f.regSvc.Register(ctx, f.admin, e.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("admin: expected forbidden, got %v", err)
	}
	if n, _ := f.regSvc.CountRegistrants(ctx, e.ID); n != 0 {
		t.Error("store must be untouched")
	}
}

func TestRegistrationService_Register_UnknownEvent(t *testing.T) {
	f := newFixture()

	if err := f.regSvc.Register(context.Background(), f.user, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(f.regs.rows) != 0 {
		t.Error("no registration must be created")
	}
}

func TestRegistrationService_Cancel(t *testing.T) {
	f := newFixture()
	e := f.mustCreate(t, validDraft())
	ctx := context.Background()

	_ = f.regSvc.Register(ctx, f.user, e.ID)
	if err := f.regSvc.Cancel(ctx, f.user, e.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if ok, _ := f.regSvc.IsRegistered(ctx, f.user, e.ID); ok {
		t.Fatal("expected not registered after cancel")
	}

	// registering again after a cancel is allowed
	if err := f.regSvc.Register(ctx, f.user, e.ID); err != nil {
		t.Fatalf("re-register: %v", err)
	}
}

func TestRegistrationService_Cancel_NeverRegistered(t *testing.T) {
	f := newFixture()
	e := f.mustCreate(t, validDraft())
	other := f.users.add(&domain.User{Name: "Sam", Email: "sam@example.com", Role: domain.RoleUser}).Principal()
	ctx := context.Background()

	_ = f.regSvc.Register(ctx, other, e.ID)

	if err := f.regSvc.Cancel(ctx, f.user, e.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if n, _ := f.regSvc.CountRegistrants(ctx, e.ID); n != 1 {
		t.Fatal("cancel of a missing registration must not touch others")
	}
}

func TestRegistrationService_Cancel_Authorization(t *testing.T) {
	f := newFixture()
	e := f.mustCreate(t, validDraft())

	if err := f.regSvc.Cancel(context.Background(), nil, e.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected unauthorized, got %v", err)
	}
	if err := f.regSvc.Cancel(context.Background(), f.admin, e.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestRegistrationService_IsRegistered_Anonymous(t *testing.T) {
	f := newFixture()
	e := f.mustCreate(t, validDraft())

	ok, err := f.regSvc.IsRegistered(context.Background(), nil, e.ID)
	if err != nil || ok {
		t.Fatalf("anonymous must be not registered without error, got %v, %v", ok, err)
	}
}

func TestRegistrationService_ListRegistrants(t *testing.T) {
	f := newFixture()
	e := f.mustCreate(t, validDraft())
	ctx := context.Background()
	sam := f.users.add(&domain.User{Name: "Sam", Email: "sam@example.com", Role: domain.RoleUser}).Principal()

	_ = f.regSvc.Register(ctx, f.user, e.ID)
	_ = f.regSvc.Register(ctx, sam, e.ID)

	list, err := f.regSvc.ListRegistrantsForEvent(ctx, f.admin, e.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Uma User" || list[1].Email != "sam@example.com" {
		t.Fatalf("unexpected registrants: %+v", list)
	}

	if _, err := f.regSvc.ListRegistrantsForEvent(ctx, f.user, e.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("user: expected forbidden, got %v", err)
	}
	if _, err := f.regSvc.ListRegistrantsForEvent(ctx, nil, e.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous: expected unauthorized, got %v", err)
	}
	if _, err := f.regSvc.ListRegistrantsForEvent(ctx, f.admin, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRegistrationService_ListRegistrants_Empty(t *testing.T) {
	f := newFixture()
	e := f.mustCreate(t, validDraft())

	list, err := f.regSvc.ListRegistrantsForEvent(context.Background(), f.admin, e.ID)
	if err != nil || list == nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v, %v", list, err)
	}
}

func TestRegistrationService_ListMyEvents(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	older := validDraft()
	older.Date = "2024-01-01"
	a := f.mustCreate(t, older)
	b := f.mustCreate(t, validDraft())
	f.mustCreate(t, validDraft())

	_ = f.regSvc.Register(ctx, f.user, a.ID)
	_ = f.regSvc.Register(ctx, f.user, b.ID)

	mine, err := f.regSvc.ListMyRegisteredEvents(ctx, f.user)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != b.ID || mine[1].ID != a.ID {
		t.Fatalf("unexpected events: %+v", mine)
	}

	if _, err := f.regSvc.ListMyRegisteredEvents(ctx, nil); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected unauthorized, got %v", err)
	}

	adminEvents, err := f.regSvc.ListMyRegisteredEvents(ctx, f.admin)
	if err != nil || len(adminEvents) != 0 {
		t.Errorf("admin has no registrations, got %v, %v", adminEvents, err)
	}
}

// Walks the full lifecycle: create, list, register, cancel, re-register, delete.
func TestLifecycleScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	e1, err := f.evSvc.CreateEvent(ctx, f.admin, validDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	countOf := func() int64 {
		t.Helper()
		list, err := f.evSvc.ListEvents(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, s := range list {
			if s.ID == e1.ID {
				return s.RegistrantCount
			}
		}
		t.Fatalf("event %s missing from list", e1.ID)
		return -1
	}

	if c := countOf(); c != 0 {
		t.Fatalf("expected 0 registrants, got %d", c)
	}

	if err := f.regSvc.Register(ctx, f.user, e1.ID); err != nil {
		t.Fatalf("register: %v", err)
	}
	if c := countOf(); c != 1 {
		t.Fatalf("expected 1 registrant, got %d", c)
	}

	if err := f.regSvc.Cancel(ctx, f.user, e1.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if c := countOf(); c != 0 {
		t.Fatalf("expected 0 registrants after cancel, got %d", c)
	}

	_ = f.regSvc.Register(ctx, f.user, e1.ID)
	if err := f.evSvc.DeleteEvent(ctx, f.admin, e1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.evSvc.GetEvent(ctx, e1.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if ok, _ := f.regSvc.IsRegistered(ctx, f.user, e1.ID); ok {
		t.Fatal("registration must be gone with the event")
	}
}

func TestRegistrationService_CountRegistrants(t *testing.T) {
	f := newFixture()
	e := f.mustCreate(t, validDraft())
	ctx := context.Background()

	if n, err := f.regSvc.CountRegistrants(ctx, e.ID); err != nil || n != 0 {
		t.Fatalf("expected 0, got %d (%v)", n, err)
	}
	_ = f.regSvc.Register(ctx, f.user, e.ID)
	if n, _ := f.regSvc.CountRegistrants(ctx, e.ID); n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
	if n, err := f.regSvc.CountRegistrants(ctx, "missing"); err != nil || n != 0 {
		t.Fatalf("unknown event should count zero, got %d (%v)", n, err)
	}

	f.regs.countErr = domain.Unavailable("count registrations", context.DeadlineExceeded)
	if _, err := f.regSvc.CountRegistrants(ctx, e.ID); domain.KindOf(err) != domain.KindUpstreamUnavailable {
		t.Fatalf("expected upstream unavailable, got %v", err)
	}
}
