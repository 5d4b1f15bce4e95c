// Package worker fans notification events out to user inboxes, email, and
// the Kafka event stream.
package worker

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	identitymodels "vowline/internal/identity/models"
	"vowline/internal/notification/metrics"
	"vowline/internal/notification/models"
	"vowline/pkg/domain"
)

// Recipients resolves who should hear about activity on a couple.
type Recipients interface {
	RecipientsFor(ctx context.Context, tenantID domain.TenantID, profileID domain.ClientProfileID) ([]identitymodels.User, error)
}

// Store is the subset of the notification store the worker writes through.
type Store interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindPreferences(ctx context.Context, userID domain.UserID) (*models.Preferences, error)
}

// Mailer delivers notification email. Failures are logged and swallowed;
// there is no retry or dead-letter.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Publisher emits events to the stream, best-effort.
type Publisher interface {
	Publish(ctx context.Context, key string, event any)
}

// Worker consumes events from a bounded channel on a single goroutine. The
// inbox row is the source of truth; email and Kafka are side channels.
type Worker struct {
	events     chan models.Event
	store      Store
	recipients Recipients
	mailer     Mailer
	publisher  Publisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

func WithMailer(m Mailer) Option {
	return func(w *Worker) { w.mailer = m }
}

func WithPublisher(p Publisher) Option {
	return func(w *Worker) { w.publisher = p }
}

func New(store Store, recipients Recipients, queueSize int, opts ...Option) *Worker {
	if queueSize <= 0 {
		queueSize = 256
	}
	w := &Worker{
		events:     make(chan models.Event, queueSize),
		store:      store,
		recipients: recipients,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Enqueue hands an event to the worker without blocking the request path.
// A full queue drops the event with a warning.
func (w *Worker) Enqueue(ctx context.Context, event models.Event) {
	select {
	case w.events <- event:
		w.metrics.IncFanouts()
	default:
		w.metrics.IncDropped()
		w.logger.WarnContext(ctx, "notification queue full, event dropped",
			"kind", event.Kind,
			"tenant_id", event.TenantID,
		)
	}
}

// Run processes events until the context is cancelled, then drains what is
// already queued.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.events:
			w.fanOut(context.WithoutCancel(ctx), event)
		}
	}
}

func (w *Worker) drain() {
	ctx := context.Background()
	for {
		select {
		case event := <-w.events:
			w.fanOut(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) fanOut(ctx context.Context, event models.Event) {
	users, err := w.recipients.RecipientsFor(ctx, event.TenantID, event.ClientProfileID)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to resolve notification recipients",
			"error", err,
			"tenant_id", event.TenantID,
		)
		return
	}

	for _, user := range users {
		if user.ID == event.ActorID {
			continue
		}
		notification := &models.Notification{
			ID:        domain.NotificationID(uuid.New()),
			UserID:    user.ID,
			TenantID:  event.TenantID,
			ActorID:   event.ActorID,
			Kind:      event.Kind,
			Title:     event.Title,
			Body:      event.Body,
			CreatedAt: event.OccurredAt,
		}
		if err := w.store.Create(ctx, notification); err != nil {
			w.logger.ErrorContext(ctx, "failed to store notification",
				"error", err,
				"user_id", user.ID,
			)
			continue
		}
		w.metrics.IncDelivered()

		if w.mailer != nil && w.emailWanted(ctx, user.ID, event.Kind) {
			if err := w.mailer.Send(ctx, user.Email, event.Title, event.Body); err != nil {
				w.metrics.IncEmailErrors()
				w.logger.ErrorContext(ctx, "failed to send notification email",
					"error", err,
					"user_id", user.ID,
				)
			} else {
				w.metrics.IncEmailsSent()
			}
		}
	}

	if w.publisher != nil {
		w.publisher.Publish(ctx, event.TenantID.String(), event)
	}
}

// emailWanted checks the recipient's opt-in, defaulting to on when the user
// never saved preferences.
func (w *Worker) emailWanted(ctx context.Context, userID domain.UserID, kind models.Kind) bool {
	prefs, err := w.store.FindPreferences(ctx, userID)
	if err != nil {
		defaults := models.DefaultPreferences(userID)
		return defaults.EmailEnabled(kind)
	}
	return prefs.EmailEnabled(kind)
}
