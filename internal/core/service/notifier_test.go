package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

const staffInbox = "staff@bellavista.test"

func newTestNotifier(mailer ports.Mailer, homes ...domain.Home) (*Notifier, *syncQueue) {
	q := &syncQueue{}
	return NewNotifier(mailer, q, newStubHomeRepo(homes...), staffInbox, zerolog.Nop()), q
}

// droppingQueue rejects every job.
type droppingQueue struct{ dropped int }

func (q *droppingQueue) Enqueue(ports.Job) bool { q.dropped++; return false }

func TestNotifier_TourGoesToStaffHomeAndVisitor(t *testing.T) {
	mailer := &stubMailer{}
	n, q := newTestNotifier(mailer, domain.Home{ID: "barry", Name: "Bellavista Barry", AdminEmail: "barry@bellavista.test"})

	n.TourRequested(context.Background(), &domain.ScheduledTour{
		ID: "t1", Name: "Dana", Email: "dana@example.com", Location: "Bellavista Barry", PreferredDate: "2026-06-01",
	})

	if len(q.jobs) != 1 || q.jobs[0].Kind != JobKindEmail || q.errs[0] != nil {
		t.Fatalf("unexpected jobs: %+v errs %v", q.jobs, q.errs)
	}
	staff := mailer.to(staffInbox)
	if len(staff) != 1 || len(staff[0].To) != 2 || staff[0].To[1] != "barry@bellavista.test" {
		t.Fatalf("unexpected staff mail: %+v", staff)
	}
	if staff[0].ReplyTo != "dana@example.com" {
		t.Fatalf("reply-to = %q", staff[0].ReplyTo)
	}
	reply := mailer.to("dana@example.com")
	if len(reply) != 1 || !strings.Contains(reply[0].Subject, "Tour Request Confirmation") {
		t.Fatalf("unexpected auto-reply: %+v", reply)
	}
}

func TestNotifier_EnquiryMatchesHomeByPartialName(t *testing.T) {
	mailer := &stubMailer{}
	n, _ := newTestNotifier(mailer, domain.Home{ID: "cardiff", Name: "Bellavista Cardiff", AdminEmail: " cardiff@bellavista.test "})

	n.EnquiryReceived(context.Background(), &domain.CareEnquiry{ID: "e1", Name: "Sam", Email: "sam@example.com", Location: "cardiff", EnquiryType: "Respite"})

	if got := mailer.to("cardiff@bellavista.test"); len(got) != 1 || got[0].Subject != "New Care Enquiry: Respite" {
		t.Fatalf("home admin not notified: %+v", mailer.sent)
	}
	if got := mailer.to("sam@example.com"); len(got) != 1 || !strings.Contains(got[0].Body, "regarding cardiff") {
		t.Fatalf("unexpected auto-reply: %+v", got)
	}
}

func TestNotifier_EnquiryForAnyLocation(t *testing.T) {
	mailer := &stubMailer{}
	n, _ := newTestNotifier(mailer, domain.Home{ID: "h", Name: "Anywhere House", AdminEmail: "h@bellavista.test"})

	n.EnquiryReceived(context.Background(), &domain.CareEnquiry{ID: "e1", Name: "Sam", Email: "sam@example.com", Location: "Any"})

	if got := mailer.to("h@bellavista.test"); len(got) != 0 {
		t.Fatalf("no home admin should be copied for Any")
	}
	if got := mailer.to("sam@example.com"); len(got) != 1 || !strings.Contains(got[0].Body, "regarding our services") {
		t.Fatalf("unexpected auto-reply: %+v", got)
	}
}

func TestNotifier_ApplicationIncludesCV(t *testing.T) {
	mailer := &stubMailer{}
	n, _ := newTestNotifier(mailer)
	vid := "v1"

	n.ApplicationReceived(context.Background(), &domain.JobApplication{ID: "a1", VacancyID: &vid, FirstName: "Lee", LastName: "Jones", Email: "lee@example.com", JobRole: "Carer", CVURL: "https://cdn.test/cv/abc.pdf"})

	staff := mailer.to(staffInbox)
	if len(staff) != 1 || !strings.Contains(staff[0].Body, "CV Link: https://cdn.test/cv/abc.pdf") || !strings.Contains(staff[0].Body, "Vacancy ID: v1") {
		t.Fatalf("unexpected mail: %+v", staff)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("applicants get no auto-reply, sent %d", len(mailer.sent))
	}
}

func TestNotifier_SendFailureIsReportedToQueueOnly(t *testing.T) {
	mailer := &stubMailer{err: errors.New("smtp down")}
	n, q := newTestNotifier(mailer)

	n.TourRequested(context.Background(), &domain.ScheduledTour{ID: "t1", Name: "Dana", Email: "dana@example.com"})

	if len(q.errs) != 1 || q.errs[0] == nil {
		t.Fatalf("expected the job to report the failure")
	}
}

func TestNotifier_NilMailerOnlyLogs(t *testing.T) {
	n, q := newTestNotifier(nil)

	n.TourRequested(context.Background(), &domain.ScheduledTour{ID: "t1", Name: "Dana", Email: "dana@example.com"})

	if len(q.errs) != 1 || q.errs[0] != nil {
		t.Fatalf("disabled mail must not fail the job: %v", q.errs)
	}
}

func TestNotifier_FullQueueDropsWithoutBlocking(t *testing.T) {
	q := &droppingQueue{}
	n := NewNotifier(&stubMailer{}, q, newStubHomeRepo(), staffInbox, zerolog.Nop())

	n.EnquiryReceived(context.Background(), &domain.CareEnquiry{ID: "e1", Name: "Sam", Email: "sam@example.com"})

	if q.dropped != 1 {
		t.Fatalf("dropped = %d", q.dropped)
	}
}

func TestNotifier_CachesHomeLookup(t *testing.T) {
	homes := newStubHomeRepo(domain.Home{ID: "barry", Name: "Barry", AdminEmail: "old@bellavista.test"})
	mailer := &stubMailer{}
	n := NewNotifier(mailer, &syncQueue{}, homes, staffInbox, zerolog.Nop())
	ctx := context.Background()

	n.TourRequested(ctx, &domain.ScheduledTour{ID: "t1", Name: "A", Location: "Barry"})
	_, _ = homes.Update(ctx, "barry", func(h *domain.Home) error { h.AdminEmail = "new@bellavista.test"; return nil })
	n.TourRequested(ctx, &domain.ScheduledTour{ID: "t2", Name: "B", Location: "Barry"})

	if got := mailer.to("old@bellavista.test"); len(got) != 2 {
		t.Fatalf("expected cached address for both mails, got %d", len(got))
	}
}
