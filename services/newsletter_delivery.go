package services

import (
	"context"
	"time"

	"agency-cms/mailer"
	"agency-cms/metrics"
	"agency-cms/models"

	"go.uber.org/zap"
)

// DeliveryReport counts the sends made for one newsletter.
type DeliveryReport struct {
	NewsletterID string
	Attempted    int
	Sent         int
	Failed       int
}

// AllFailed reports whether there were recipients and none was reached.
func (r DeliveryReport) AllFailed() bool {
	return r.Attempted > 0 && r.Sent == 0
}

// NewsletterDelivery sends a newsletter to a set of subscribers. It backs both
// the immediate send on publish and the scheduled dispatcher.
type NewsletterDelivery interface {
	Deliver(ctx context.Context, layout string, n *models.Newsletter, members []models.NewsletterMember) (DeliveryReport, error)
}

type newsletterDelivery struct {
	mailer      mailer.Mailer
	renderer    *mailer.Renderer
	from        string
	sendTimeout time.Duration
	log         *zap.Logger
}

func NewNewsletterDelivery(m mailer.Mailer, renderer *mailer.Renderer, from string, sendTimeout time.Duration, log *zap.Logger) NewsletterDelivery {
	return &newsletterDelivery{
		mailer:      m,
		renderer:    renderer,
		from:        from,
		sendTimeout: sendTimeout,
		log:         log.Named("delivery"),
	}
}

// Deliver renders n into layout once and sends one email per member. A failed
// send is logged and counted; it never stops the remaining recipients. Only a
// render failure or a cancelled ctx returns an error.
func (d *newsletterDelivery) Deliver(ctx context.Context, layout string, n *models.Newsletter, members []models.NewsletterMember) (DeliveryReport, error) {
	report := DeliveryReport{NewsletterID: n.ID}

	body, err := d.renderer.Newsletter(layout, n)
	if err != nil {
		return report, err
	}

	for _, member := range members {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Attempted++

		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		_, err := d.mailer.Send(sendCtx, mailer.Message{
			From:    d.from,
			To:      []string{member.Email},
			Subject: n.Title,
			HTML:    d.renderer.Personalize(body, member.ID),
		})
		cancel()

		if err != nil {
			report.Failed++
			metrics.EmailsSent.WithLabelValues("failed").Inc()
			d.log.Error("newsletter send failed",
				zap.String("newsletter_id", n.ID),
				zap.String("member_id", member.ID),
				zap.Error(err))
			continue
		}
		report.Sent++
		metrics.EmailsSent.WithLabelValues("sent").Inc()
	}

	d.log.Info("newsletter delivered",
		zap.String("newsletter_id", n.ID),
		zap.Int("attempted", report.Attempted),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed))
	return report, nil
}
