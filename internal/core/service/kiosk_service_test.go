package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

type stubKioskRepo struct{ *memCRUD[domain.KioskCheckIn] }

func (r *stubKioskRepo) List(_ context.Context, f domain.KioskFilter) ([]domain.KioskCheckIn, error) {
	var out []domain.KioskCheckIn
	for _, c := range r.all() {
		if (f.Location == "" || c.Location == f.Location) && (f.Status == "" || c.Status == f.Status) {
			out = append(out, c)
		}
	}
	return out, nil
}

func newKioskFixture() (*KioskService, *testClock) {
	clock := newTestClock()
	repo := &stubKioskRepo{newMemCRUD(func(c *domain.KioskCheckIn) string { return c.ID }, domain.ErrCheckInNotFound)}
	svc := NewKioskService(repo, NewAuditLog(&stubAuditSink{}, zerolog.Nop()), zerolog.Nop()).WithClock(clock.Now)
	return svc, clock
}

func TestKioskService_CheckInAndOut(t *testing.T) {
	svc, clock := newKioskFixture()
	ctx := context.Background()

	c, err := svc.CheckIn(ctx, ports.CheckInInput{Name: "Robin", Location: "Barry", PersonVisiting: "Mum"})
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if c.Status != domain.CheckedIn || !c.CheckInTime.Equal(clock.Now()) || c.CheckOutTime != nil {
		t.Fatalf("unexpected check-in: %+v", c)
	}

	clock.Advance(90 * time.Minute)
	out, err := svc.CheckOut(ctx, c.ID)
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if out.Status != domain.CheckedOut || out.CheckOutTime == nil || out.CheckOutTime.Sub(out.CheckInTime) != 90*time.Minute {
		t.Fatalf("unexpected check-out: %+v", out)
	}

	var v *domain.ValidationError
	if _, err := svc.CheckOut(ctx, c.ID); !errors.As(err, &v) {
		t.Fatalf("second check-out should fail validation, got %v", err)
	}
	if _, err := svc.CheckOut(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKioskService_ListFilters(t *testing.T) {
	svc, _ := newKioskFixture()
	ctx := context.Background()
	a, _ := svc.CheckIn(ctx, ports.CheckInInput{Name: "Robin", Location: "Barry"})
	_, _ = svc.CheckIn(ctx, ports.CheckInInput{Name: "Alex", Location: "Cardiff"})
	_, _ = svc.CheckOut(ctx, a.ID)

	got, err := svc.List(ctx, domain.KioskFilter{Location: "Barry", Status: domain.CheckedOut})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Robin" {
		t.Fatalf("unexpected list: %+v", got)
	}
	if _, err := svc.List(ctx, domain.KioskFilter{Status: "asleep"}); err == nil {
		t.Fatalf("unknown status should be rejected")
	}
}

func TestKioskService_CheckInRequiresNameAndLocation(t *testing.T) {
	svc, _ := newKioskFixture()
	_, err := svc.CheckIn(context.Background(), ports.CheckInInput{})
	var v *domain.ValidationError
	if !errors.As(err, &v) || len(v.Fields) != 2 {
		t.Fatalf("expected two field errors, got %v", err)
	}
}
