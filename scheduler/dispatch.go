// Package scheduler runs the recurring newsletter dispatch job.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"agency-cms/lock"
	"agency-cms/mailer"
	"agency-cms/metrics"
	"agency-cms/models"
	"agency-cms/repositories"
	"agency-cms/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	lockKey        = "dispatch:newsletters"
	defaultLockTTL = 10 * time.Minute
)

// ErrRunInProgress is returned when another run holds the dispatch lock.
var ErrRunInProgress = errors.New("newsletter dispatch already running")

// RunReport summarizes one dispatch run.
type RunReport struct {
	Newsletters int
	Published   int
	// Deferred newsletters had recipients but no send succeeded; they stay
	// SCHEDULED for the next run.
	Deferred   int
	Failed     int
	Deliveries []services.DeliveryReport
}

type Options struct {
	Schedule string
	LockTTL  time.Duration
}

// Dispatcher publishes SCHEDULED newsletters to every confirmed subscriber.
type Dispatcher struct {
	newsletterRepo repositories.NewsletterRepository
	memberRepo     repositories.NewsletterMemberRepository
	delivery       services.NewsletterDelivery
	renderer       *mailer.Renderer
	locker         lock.Locker
	opts           Options
	log            *zap.Logger
	cron           *cron.Cron
	now            func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func New(
	newsletterRepo repositories.NewsletterRepository,
	memberRepo repositories.NewsletterMemberRepository,
	delivery services.NewsletterDelivery,
	renderer *mailer.Renderer,
	locker lock.Locker,
	opts Options,
	log *zap.Logger,
) *Dispatcher {
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	log = log.Named("dispatch")
	cronLog := cron.PrintfLogger(zap.NewStdLog(log))

	return &Dispatcher{
		newsletterRepo: newsletterRepo,
		memberRepo:     memberRepo,
		delivery:       delivery,
		renderer:       renderer,
		locker:         locker,
		opts:           opts,
		log:            log,
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		now: time.Now,
	}
}

// Start registers the job on its schedule and starts the cron runner.
func (d *Dispatcher) Start() error {
	d.ctx, d.cancel = context.WithCancel(context.Background())

	if _, err := d.cron.AddFunc(d.opts.Schedule, d.tick); err != nil {
		d.cancel()
		return fmt.Errorf("schedule dispatch %q: %w", d.opts.Schedule, err)
	}

	d.cron.Start()
	d.log.Info("dispatcher started", zap.String("schedule", d.opts.Schedule))
	return nil
}

// Stop waits for a running job to finish. If ctx ends first the running job
// is cancelled.
func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel == nil {
		return nil
	}
	defer d.cancel()

	done := d.cron.Stop()
	select {
	case <-done.Done():
		d.log.Info("dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) tick() {
	report, err := d.RunOnce(d.ctx)
	switch {
	case errors.Is(err, ErrRunInProgress):
		d.log.Debug("dispatch skipped, another run holds the lock")
	case err != nil:
		d.log.Error("dispatch run failed", zap.Error(err))
	case report.Newsletters > 0:
		d.log.Info("dispatch run finished",
			zap.Int("newsletters", report.Newsletters),
			zap.Int("published", report.Published),
			zap.Int("deferred", report.Deferred),
			zap.Int("failed", report.Failed))
	}
}

// RunOnce performs a single dispatch pass. A failure on one newsletter is
// logged and counted; only setup failures (lock, queries, layout) abort the
// run.
func (d *Dispatcher) RunOnce(ctx context.Context) (RunReport, error) {
	lease, err := d.locker.Acquire(ctx, lockKey, d.opts.LockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		metrics.DispatchRuns.WithLabelValues("skipped").Inc()
		return RunReport{}, ErrRunInProgress
	}
	if err != nil {
		metrics.DispatchRuns.WithLabelValues("failed").Inc()
		return RunReport{}, fmt.Errorf("acquire dispatch lock: %w", err)
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			d.log.Warn("release dispatch lock", zap.Error(err))
		}
	}()

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := d.keepAlive(runCtx, lease, cancel)

	timer := time.Now()
	report, err := d.run(runCtx)
	metrics.DispatchDuration.Observe(time.Since(timer).Seconds())
	stop()

	if cause := context.Cause(runCtx); cause != nil && !errors.Is(cause, context.Canceled) && !errors.Is(cause, context.DeadlineExceeded) {
		err = cause
	}

	if err != nil {
		metrics.DispatchRuns.WithLabelValues("failed").Inc()
		return report, err
	}
	metrics.DispatchRuns.WithLabelValues("ok").Inc()
	return report, nil
}

// keepAlive extends the lease every third of its TTL for as long as the run
// lasts. If the lease cannot be extended the run is cancelled, since another
// instance may already be sending.
func (d *Dispatcher) keepAlive(ctx context.Context, lease lock.Lease, lost context.CancelCauseFunc) (stop func()) {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(d.opts.LockTTL / 3)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := lease.Extend(ctx, d.opts.LockTTL); err != nil {
					d.log.Error("dispatch lock lost, cancelling run", zap.Error(err))
					lost(fmt.Errorf("extend dispatch lock: %w", err))
					return
				}
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

func (d *Dispatcher) run(ctx context.Context) (RunReport, error) {
	var report RunReport

	members, err := d.memberRepo.ListByStatus(ctx, models.MemberSubscribed)
	if err != nil {
		return report, fmt.Errorf("list subscribers: %w", err)
	}
	newsletters, err := d.newsletterRepo.ListByStatus(ctx, models.NewsletterScheduled)
	if err != nil {
		return report, fmt.Errorf("list scheduled newsletters: %w", err)
	}
	if len(newsletters) == 0 {
		return report, nil
	}

	layout, err := d.renderer.Layout(mailer.LayoutNewsletter)
	if err != nil {
		return report, err
	}

	report.Newsletters = len(newsletters)
	for i := range newsletters {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		d.dispatch(ctx, layout, &newsletters[i], members, &report)
	}
	return report, nil
}

// dispatch delivers one newsletter and publishes it. Nothing it does can
// abort the run.
func (d *Dispatcher) dispatch(ctx context.Context, layout string, n *models.Newsletter, members []models.NewsletterMember, report *RunReport) {
	log := d.log.With(zap.String("newsletter_id", n.ID))
	defer func() {
		if r := recover(); r != nil {
			report.Failed++
			log.Error("dispatch panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	delivery, err := d.delivery.Deliver(ctx, layout, n, members)
	report.Deliveries = append(report.Deliveries, delivery)
	if err != nil {
		report.Failed++
		log.Error("deliver newsletter", zap.Error(err))
		return
	}
	if delivery.AllFailed() {
		report.Deferred++
		log.Warn("every send failed, newsletter stays scheduled", zap.Int("attempted", delivery.Attempted))
		return
	}

	published, err := d.newsletterRepo.MarkPublished(ctx, n.ID, d.now())
	if err != nil {
		report.Failed++
		log.Error("mark newsletter published", zap.Error(err))
		return
	}
	if !published {
		log.Warn("newsletter left SCHEDULED during dispatch, status not changed")
		return
	}
	report.Published++
	metrics.NewslettersPublished.Inc()
}
