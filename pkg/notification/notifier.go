package notification

import (
	"context"
	"errors"
	"fmt"
	"foodia-handoff/domain"
	"foodia-handoff/entities"
	"foodia-handoff/internal/utils/mailing"
	"html"

	"github.com/gofiber/fiber/v2/log"
)

type (
	Notifier interface {
		Notify(ctx context.Context, n domain.Notification) error
	}

	mailNotifier struct {
		mailer mailing.Mailer
	}

	logNotifier struct{}

	multiNotifier []Notifier
)

func NewMailNotifier(mailer mailing.Mailer) Notifier {
	return &mailNotifier{mailer: mailer}
}

func (m *mailNotifier) Notify(ctx context.Context, n domain.Notification) error {
	if n.ToEmail == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.mailer.Send(n.ToEmail, n.Subject, n.Body); err != nil {
		return domain.Transient("send mail", err)
	}
	return nil
}

// NewLogNotifier writes notifications to the service log. Used when no SMTP
// server is configured.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) Notify(ctx context.Context, n domain.Notification) error {
	log.Infof("notify %s (transaction %s): %s", n.ToEmail, n.TransactionID, n.Subject)
	return nil
}

// NewMultiNotifier delivers to every notifier and joins their errors.
func NewMultiNotifier(notifiers ...Notifier) Notifier {
	return multiNotifier(notifiers)
}

func (m multiNotifier) Notify(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyParties sends one notification to each party of tx. Failures are
// logged, not returned.
func NotifyParties(ctx context.Context, notifier Notifier, tx *entities.Transaction, subject, body string) int {
	if notifier == nil {
		return 0
	}
	sent := 0
	for _, party := range []*entities.User{tx.Requester, tx.Owner} {
		n := domain.Notification{
			TransactionID: tx.ID.String(),
			Subject:       subject,
			Body:          body,
		}
		if party != nil {
			n.ToName = party.Name
			n.ToEmail = party.Email
		}
		if err := notifier.Notify(ctx, n); err != nil {
			log.Warnf("notification for transaction %s: %v", tx.ID, err)
			continue
		}
		sent++
	}
	return sent
}

func HandoffPointBody(point domain.Coordinate) string {
	place := point.PlaceName
	if place == "" {
		place = fmt.Sprintf("%.5f, %.5f", point.Lat, point.Lng)
	}
	return fmt.Sprintf("<p>The meeting point for your handoff is now <b>%s</b>.</p>", html.EscapeString(place))
}

func CompletionBody(tx *entities.Transaction) string {
	return fmt.Sprintf("<p>Handoff %s has been confirmed as completed. Thank you for using FOODIA.</p>", tx.ID)
}
