package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/favorite-board/internal/auth"
	"github.com/spec-kit/favorite-board/internal/delivery"
	"github.com/spec-kit/favorite-board/internal/domain"
	"github.com/spec-kit/favorite-board/internal/events"
	"github.com/spec-kit/favorite-board/internal/observability"
	"github.com/spec-kit/favorite-board/internal/repository"
	"github.com/spec-kit/favorite-board/internal/worker"
)

// NotificationService turns domain events into deliveries on the worker pool.
type NotificationService struct {
	principals repository.PrincipalRepository
	channel    delivery.Channel
	pool       *worker.Pool
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	baseURL    string
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	PrincipalRepo repository.PrincipalRepository
	Channel       delivery.Channel
	Pool          *worker.Pool
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	BaseURL       string
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		principals: deps.PrincipalRepo,
		channel:    deps.Channel,
		pool:       deps.Pool,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		baseURL:    deps.BaseURL,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventFavoriteChanged, n.handleFavoriteChanged)
	n.dispatcher.Subscribe(events.EventMagicLinkRequested, n.handleMagicLinkRequested)
}

func (n *NotificationService) handleFavoriteChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.FavoriteChangedPayload)
	if !ok {
		return fmt.Errorf("favorite_changed: unexpected payload %T", event.Payload)
	}
	n.logger.Info("FavoriteChanged", zap.String("event_id", event.ID), zap.Int64("favorite_id", payload.FavoriteID))

	_, err := n.Broadcast(ctx, favoriteAnnouncement(payload, event.Timestamp))
	return err
}

func (n *NotificationService) handleMagicLinkRequested(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MagicLinkRequestedPayload)
	if !ok {
		return fmt.Errorf("magic_link_requested: unexpected payload %T", event.Payload)
	}
	n.dispatch(payload.Email, "Login to New Favorite Child", loginBody(payload.LoginURL, payload.ExpiresAt.Sub(event.Timestamp)))
	return nil
}

// Broadcast snapshots the subscriber list and submits one personalized delivery per
// subscriber. It returns once every delivery is submitted, never waiting for sends.
// Only a failure to read the subscriber list is returned.
func (n *NotificationService) Broadcast(ctx context.Context, announcement domain.Announcement) (int, error) {
	subscribers, err := n.principals.ListSubscribed(ctx)
	if err != nil {
		return 0, storeUnavailable("list subscribers", err)
	}

	for _, subscriber := range subscribers {
		body := announcement.Body + unsubscribeFooter(auth.UnsubscribeURL(n.baseURL, subscriber.Email))
		n.dispatch(subscriber.Email, announcement.Subject, body)
	}

	n.logger.Info("broadcast dispatched",
		zap.String("subject", announcement.Subject),
		zap.Int("recipients", len(subscribers)))
	return len(subscribers), nil
}

func (n *NotificationService) dispatch(address, subject, body string) {
	job := worker.Job{
		ID: uuid.NewString(),
		Run: func(ctx context.Context) error {
			// Deferred so a panicking channel still counts as a failed delivery.
			outcome := observability.DeliveryFailed
			defer func() { n.metrics.RecordDelivery(outcome) }()

			if err := n.channel.Send(ctx, address, subject, body); err != nil {
				n.logger.Warn("delivery failed", zap.String("to", address), zap.Error(err))
				return nil
			}
			outcome = observability.DeliverySent
			return nil
		},
	}
	if err := n.pool.Submit(job); err != nil {
		n.metrics.RecordDelivery(observability.DeliveryRejected)
		n.logger.Warn("delivery not submitted", zap.String("to", address), zap.Error(err))
	}
}

func favoriteAnnouncement(p events.FavoriteChangedPayload, at time.Time) domain.Announcement {
	return domain.Announcement{
		Subject: "New Favorite Child: " + p.Name,
		Body: fmt.Sprintf(`Breaking News! A new favorite child has been crowned!

Name: %s
Reason: %s

This announcement was made at %s.`, p.Name, p.Reason, at.Format("2006-01-02 15:04:05")),
	}
}

func unsubscribeFooter(unsubscribeURL string) string {
	return "\n\n---\nTo unsubscribe from these notifications, click here: " + unsubscribeURL
}

func loginBody(loginURL string, ttl time.Duration) string {
	return fmt.Sprintf(`Click this link to log in to New Favorite Child:

%s

This link will expire in %s.

If you didn't request this, you can safely ignore this email.`, loginURL, humanDuration(ttl))
}

func humanDuration(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	switch {
	case minutes >= 60 && minutes%60 == 0:
		if minutes == 60 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", minutes/60)
	case minutes == 1:
		return "1 minute"
	case minutes <= 0:
		return "a few moments"
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}
