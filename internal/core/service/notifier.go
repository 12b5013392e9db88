package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

const (
	JobKindEmail = "email"

	siteName          = "Bellavista Nursing Home"
	homeEmailCacheTTL = 10 * time.Minute
	homeEmailCacheCap = 128
)

// Notifier emails staff about public submissions and sends auto-replies.
// Mail is handed to the job queue so a slow or failing SMTP server never
// holds up a request. With a nil mailer messages are only logged.
type Notifier struct {
	mailer ports.Mailer
	queue  ports.JobQueue
	homes  ports.HomeRepository
	staff  string
	log    zerolog.Logger
	emails *expirable.LRU[string, string]
}

func NewNotifier(mailer ports.Mailer, queue ports.JobQueue, homes ports.HomeRepository, staffEmail string, log zerolog.Logger) *Notifier {
	return &Notifier{
		mailer: mailer,
		queue:  queue,
		homes:  homes,
		staff:  strings.TrimSpace(staffEmail),
		log:    log,
		emails: expirable.NewLRU[string, string](homeEmailCacheCap, nil, homeEmailCacheTTL),
	}
}

func (n *Notifier) TourRequested(_ context.Context, t *domain.ScheduledTour) {
	tour := *t
	n.dispatch(tour.ID, func(ctx context.Context) error {
		staff := newMessage(n.recipients(ctx, tour.Location),
			"New Tour Request for "+tour.Location,
			fmt.Sprintf("New Tour Request Received:\n\nName: %s\nPhone: %s\nEmail: %s\nLocation: %s\nPreferred Date: %s\nPreferred Time: %s\nMessage: %s\n\nPlease log in to the admin console to view details.\n",
				tour.Name, tour.Phone, tour.Email, tour.Location, tour.PreferredDate, tour.PreferredTime, tour.Message))
		staff.ReplyTo = tour.Email

		reply := newMessage([]string{tour.Email},
			"Tour Request Confirmation - "+siteName,
			fmt.Sprintf("Dear %s,\n\nThank you for requesting a tour at %s.\n\nWe have received your request for %s (%s).\nOur team will review your request and contact you shortly to confirm the appointment.\n\nBest regards,\n%s Team\n",
				tour.Name, tour.Location, tour.PreferredDate, tour.PreferredTime, siteName))
		return n.send(ctx, staff, reply)
	})
}

func (n *Notifier) EnquiryReceived(_ context.Context, e *domain.CareEnquiry) {
	enq := *e
	n.dispatch(enq.ID, func(ctx context.Context) error {
		staff := newMessage(n.recipients(ctx, enq.Location),
			"New Care Enquiry: "+enq.EnquiryType,
			fmt.Sprintf("New Care Enquiry Received:\n\nName: %s\nEmail: %s\nPhone: %s\nType: %s\nLocation: %s\nMessage: %s\n",
				enq.Name, enq.Email, enq.Phone, enq.EnquiryType, enq.Location, enq.Message))
		staff.ReplyTo = enq.Email

		about := enq.Location
		if about == "" || strings.EqualFold(about, "any") {
			about = "our services"
		}
		reply := newMessage([]string{enq.Email},
			"Enquiry Confirmation - "+siteName,
			fmt.Sprintf("Dear %s,\n\nThank you for your enquiry regarding %s.\n\nWe have received your message and our team will get back to you shortly.\n\nEnquiry Details:\nType: %s\nMessage: %s\n\nBest regards,\n%s Team\n",
				enq.Name, about, enq.EnquiryType, enq.Message, siteName))
		return n.send(ctx, staff, reply)
	})
}

func (n *Notifier) ApplicationReceived(_ context.Context, a *domain.JobApplication) {
	app := *a
	n.dispatch(app.ID, func(ctx context.Context) error {
		vacancy := ""
		if app.VacancyID != nil {
			vacancy = *app.VacancyID
		}
		cv := app.CVURL
		if cv == "" {
			cv = "(none)"
		}
		staff := newMessage(n.recipients(ctx, ""),
			"New Job Application: "+app.JobRole,
			fmt.Sprintf("New Job Application Received:\n\nName: %s %s\nEmail: %s\nRole: %s\nVacancy ID: %s\nCV Link: %s\n",
				app.FirstName, app.LastName, app.Email, app.JobRole, vacancy, cv))
		staff.ReplyTo = app.Email
		return n.send(ctx, staff)
	})
}

// newMessage builds a plain-text message.
func newMessage(to []string, subject, body string) ports.Message {
	return ports.Message{To: to, Subject: subject, Body: body}
}

func (n *Notifier) dispatch(key string, run func(ctx context.Context) error) {
	if !n.queue.Enqueue(ports.Job{Kind: JobKindEmail, Key: key, Run: run}) {
		n.log.Warn().Str("key", key).Msg("notification dropped: job queue full")
	}
}

// send delivers every message and returns the first failure. Later
// messages are still attempted.
func (n *Notifier) send(ctx context.Context, msgs ...ports.Message) error {
	var first error
	for _, msg := range msgs {
		if len(msg.To) == 0 || msg.To[0] == "" {
			continue
		}
		if n.mailer == nil {
			n.log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("mail disabled, notification not sent")
			continue
		}
		if err := n.mailer.Send(ctx, msg); err != nil {
			n.log.Error().Err(err).Strs("to", msg.To).Str("subject", msg.Subject).Msg("failed to send notification")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// recipients is the staff inbox plus the admin of the home at location.
func (n *Notifier) recipients(ctx context.Context, location string) []string {
	var to []string
	if n.staff != "" {
		to = append(to, n.staff)
	}
	if admin := n.homeEmail(ctx, location); admin != "" && !strings.EqualFold(admin, n.staff) {
		to = append(to, admin)
	}
	return to
}

// homeEmail finds the admin email of the home named location. An exact
// case-insensitive name match wins; otherwise the first home whose name
// contains location is used, so "Barry" finds "Bellavista Barry".
func (n *Notifier) homeEmail(ctx context.Context, location string) string {
	key := strings.ToLower(strings.TrimSpace(location))
	if key == "" || key == "any" {
		return ""
	}
	if email, ok := n.emails.Get(key); ok {
		return email
	}

	email := ""
	if home, err := n.homes.FindByName(ctx, location); err == nil {
		email = home.AdminEmail
	} else if isNotFound(err) {
		homes, err := n.homes.List(ctx)
		if err != nil {
			n.log.Warn().Err(err).Str("location", location).Msg("home lookup failed")
			return ""
		}
		for _, h := range homes {
			if strings.Contains(strings.ToLower(h.Name), key) {
				email = h.AdminEmail
				break
			}
		}
	} else {
		n.log.Warn().Err(err).Str("location", location).Msg("home lookup failed")
		return ""
	}

	email = strings.TrimSpace(email)
	n.emails.Add(key, email)
	return email
}
