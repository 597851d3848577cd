package scheduler

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"agency-cms/lock"
	"agency-cms/mailer"
	"agency-cms/models"
	"agency-cms/repositories"
	"agency-cms/services"
	"agency-cms/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var layouts = fstest.MapFS{
	mailer.LayoutNewsletter: {Data: []byte(`<h1>{{title}}</h1>{{content}}<a href="{{unsubscribeUrl}}">unsubscribe</a>`)},
}

// failingDelivery fails every newsletter whose id is in ids and passes the
// rest to next.
type failingDelivery struct {
	next services.NewsletterDelivery
	ids  map[string]bool
}

func (f *failingDelivery) Deliver(ctx context.Context, layout string, n *models.Newsletter, members []models.NewsletterMember) (services.DeliveryReport, error) {
	if f.ids[n.ID] {
		return services.DeliveryReport{NewsletterID: n.ID}, errors.New("render exploded")
	}
	return f.next.Deliver(ctx, layout, n, members)
}

type DispatchSuite struct {
	suite.Suite
	db       *gorm.DB
	mail     *testutil.RecordingMailer
	delivery services.NewsletterDelivery
	locker   *lock.Local
	author   *models.User
	ctx      context.Context
}

func TestDispatchSuite(t *testing.T) {
	suite.Run(t, new(DispatchSuite))
}

func (s *DispatchSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.mail = &testutil.RecordingMailer{}
	renderer := mailer.NewRenderer(layouts, "http://api.test", "http://site.test")
	s.delivery = services.NewNewsletterDelivery(s.mail, renderer, "news@test", time.Second, zap.NewNop())
	s.locker = lock.NewLocal()
	s.author = testutil.CreateUser(s.T(), s.db, "author@pixelatee.com", models.RoleAdmin)
	s.ctx = context.Background()
}

func (s *DispatchSuite) dispatcher(delivery services.NewsletterDelivery, fsys fstest.MapFS) *Dispatcher {
	return s.dispatcherWithLock(delivery, fsys, s.locker, time.Minute)
}

func (s *DispatchSuite) dispatcherWithLock(delivery services.NewsletterDelivery, fsys fstest.MapFS, locker lock.Locker, ttl time.Duration) *Dispatcher {
	return New(
		repositories.NewNewsletterRepository(s.db),
		repositories.NewNewsletterMemberRepository(s.db),
		delivery,
		mailer.NewRenderer(fsys, "http://api.test", "http://site.test"),
		locker,
		Options{Schedule: "*/5 * * * *", LockTTL: ttl},
		zap.NewNop(),
	)
}

// slowDelivery waits longer than the lock TTL, then checks whether the lock
// is still held before sending.
type slowDelivery struct {
	next     services.NewsletterDelivery
	locker   lock.Locker
	wait     time.Duration
	lockHeld bool
}

func (d *slowDelivery) Deliver(ctx context.Context, layout string, n *models.Newsletter, members []models.NewsletterMember) (services.DeliveryReport, error) {
	time.Sleep(d.wait)
	_, err := d.locker.Acquire(ctx, lockKey, time.Minute)
	d.lockHeld = errors.Is(err, lock.ErrNotAcquired)
	return d.next.Deliver(ctx, layout, n, members)
}

// blockingDelivery sends nothing until ctx is done.
type blockingDelivery struct{}

func (blockingDelivery) Deliver(ctx context.Context, layout string, n *models.Newsletter, members []models.NewsletterMember) (services.DeliveryReport, error) {
	select {
	case <-ctx.Done():
		return services.DeliveryReport{NewsletterID: n.ID}, ctx.Err()
	case <-time.After(5 * time.Second):
		return services.DeliveryReport{NewsletterID: n.ID}, errors.New("run was never cancelled")
	}
}

// lostLocker hands out leases that can never be extended.
type lostLocker struct{}

func (lostLocker) Acquire(context.Context, string, time.Duration) (lock.Lease, error) {
	return lostLease{}, nil
}

type lostLease struct{}

func (lostLease) Extend(context.Context, time.Duration) error { return lock.ErrLeaseLost }
func (lostLease) Release(context.Context) error { return nil }

func (s *DispatchSuite) status(id string) models.NewsletterStatus {
	var n models.Newsletter
	s.Require().NoError(s.db.First(&n, "id = ?", id).Error)
	return n.Status
}

func (s *DispatchSuite) TestPublishesEveryScheduledNewsletter() {
	testutil.CreateMember(s.T(), s.db, "one@x.com", models.MemberSubscribed)
	testutil.CreateMember(s.T(), s.db, "two@x.com", models.MemberSubscribed)
	testutil.CreateMember(s.T(), s.db, "pending@x.com", models.MemberPending)

	first := testutil.CreateNewsletter(s.T(), s.db, s.author, "First", models.NewsletterScheduled)
	second := testutil.CreateNewsletter(s.T(), s.db, s.author, "Second", models.NewsletterScheduled)
	live := testutil.CreateNewsletter(s.T(), s.db, s.author, "Live", models.NewsletterPublished)

	report, err := s.dispatcher(s.delivery, layouts).RunOnce(s.ctx)
	s.Require().NoError(err)

	s.Equal(2, report.Newsletters)
	s.Equal(2, report.Published)
	s.Equal(models.NewsletterPublished, s.status(first.ID))
	s.Equal(models.NewsletterPublished, s.status(second.ID))
	s.Equal(models.NewsletterPublished, s.status(live.ID))

	s.ElementsMatch([]string{"one@x.com", "two@x.com"}, s.mail.Recipients("First"))
	s.ElementsMatch([]string{"one@x.com", "two@x.com"}, s.mail.Recipients("Second"))
	s.Empty(s.mail.Recipients("Live"))

	var stored models.Newsletter
	s.Require().NoError(s.db.First(&stored, "id = ?", first.ID).Error)
	s.NotNil(stored.PublishedAt)

	// a second run finds nothing left to send
	report, err = s.dispatcher(s.delivery, layouts).RunOnce(s.ctx)
	s.Require().NoError(err)
	s.Zero(report.Newsletters)
	s.Len(s.mail.Sent(), 4)
}

func (s *DispatchSuite) TestOneFailingNewsletterDoesNotBlockOthers() {
	testutil.CreateMember(s.T(), s.db, "one@x.com", models.MemberSubscribed)
	broken := testutil.CreateNewsletter(s.T(), s.db, s.author, "Broken", models.NewsletterScheduled)
	healthy := testutil.CreateNewsletter(s.T(), s.db, s.author, "Healthy", models.NewsletterScheduled)

	delivery := &failingDelivery{next: s.delivery, ids: map[string]bool{broken.ID: true}}
	report, err := s.dispatcher(delivery, layouts).RunOnce(s.ctx)
	s.Require().NoError(err)

	s.Equal(1, report.Failed)
	s.Equal(1, report.Published)
	s.Equal(models.NewsletterScheduled, s.status(broken.ID))
	s.Equal(models.NewsletterPublished, s.status(healthy.ID))
	s.Equal([]string{"one@x.com"}, s.mail.Recipients("Healthy"))
}

func (s *DispatchSuite) TestAllSendsFailedKeepsNewsletterScheduled() {
	testutil.CreateMember(s.T(), s.db, "one@x.com", models.MemberSubscribed)
	testutil.CreateMember(s.T(), s.db, "two@x.com", models.MemberSubscribed)
	n := testutil.CreateNewsletter(s.T(), s.db, s.author, "Retry", models.NewsletterScheduled)

	s.mail.Fail = func(string) error { return errors.New("smtp down") }
	report, err := s.dispatcher(s.delivery, layouts).RunOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Deferred)
	s.Equal(models.NewsletterScheduled, s.status(n.ID))
	s.Require().Len(report.Deliveries, 1)
	s.Equal(2, report.Deliveries[0].Attempted)

	// transport recovered: the next run publishes it
	s.mail.Fail = nil
	report, err = s.dispatcher(s.delivery, layouts).RunOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Published)
	s.Equal(models.NewsletterPublished, s.status(n.ID))
}

func (s *DispatchSuite) TestPartialFailurePublishes() {
	testutil.CreateMember(s.T(), s.db, "ok@x.com", models.MemberSubscribed)
	testutil.CreateMember(s.T(), s.db, "bounce@x.com", models.MemberSubscribed)
	n := testutil.CreateNewsletter(s.T(), s.db, s.author, "Partial", models.NewsletterScheduled)

	s.mail.Fail = func(to string) error {
		if to == "bounce@x.com" {
			return errors.New("mailbox full")
		}
		return nil
	}
	report, err := s.dispatcher(s.delivery, layouts).RunOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Published)
	s.Equal(models.NewsletterPublished, s.status(n.ID))
	s.Equal([]string{"ok@x.com"}, s.mail.Recipients("Partial"))
}

func (s *DispatchSuite) TestNoSubscribersStillPublishes() {
	n := testutil.CreateNewsletter(s.T(), s.db, s.author, "Quiet", models.NewsletterScheduled)

	report, err := s.dispatcher(s.delivery, layouts).RunOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Published)
	s.Equal(models.NewsletterPublished, s.status(n.ID))
	s.Empty(s.mail.Sent())
}

func (s *DispatchSuite) TestMissingLayoutAbortsRun() {
	testutil.CreateMember(s.T(), s.db, "one@x.com", models.MemberSubscribed)
	n := testutil.CreateNewsletter(s.T(), s.db, s.author, "Stuck", models.NewsletterScheduled)

	_, err := s.dispatcher(s.delivery, fstest.MapFS{}).RunOnce(s.ctx)
	s.Require().Error(err)
	s.Equal(models.NewsletterScheduled, s.status(n.ID))
	s.Empty(s.mail.Sent())
}

func (s *DispatchSuite) TestSkipsWhileAnotherRunHoldsTheLock() {
	testutil.CreateMember(s.T(), s.db, "one@x.com", models.MemberSubscribed)
	n := testutil.CreateNewsletter(s.T(), s.db, s.author, "Once", models.NewsletterScheduled)

	lease, err := s.locker.Acquire(s.ctx, lockKey, time.Minute)
	s.Require().NoError(err)

	_, err = s.dispatcher(s.delivery, layouts).RunOnce(s.ctx)
	s.ErrorIs(err, ErrRunInProgress)
	s.Equal(models.NewsletterScheduled, s.status(n.ID))
	s.Empty(s.mail.Sent())

	s.Require().NoError(lease.Release(s.ctx))
	_, err = s.dispatcher(s.delivery, layouts).RunOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.NewsletterPublished, s.status(n.ID))
}

func (s *DispatchSuite) TestLongRunKeepsTheLock() {
	testutil.CreateMember(s.T(), s.db, "one@x.com", models.MemberSubscribed)
	n := testutil.CreateNewsletter(s.T(), s.db, s.author, "Slow", models.NewsletterScheduled)

	ttl := 150 * time.Millisecond
	slow := &slowDelivery{next: s.delivery, locker: s.locker, wait: 3 * ttl}
	report, err := s.dispatcherWithLock(slow, layouts, s.locker, ttl).RunOnce(s.ctx)
	s.Require().NoError(err)

	s.True(slow.lockHeld, "lease expired while the run was still sending")
	s.Equal(1, report.Published)
	s.Equal(models.NewsletterPublished, s.status(n.ID))

	// released once the run is over
	lease, err := s.locker.Acquire(s.ctx, lockKey, time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(lease.Release(s.ctx))
}

func (s *DispatchSuite) TestLostLockCancelsRun() {
	testutil.CreateMember(s.T(), s.db, "one@x.com", models.MemberSubscribed)
	n := testutil.CreateNewsletter(s.T(), s.db, s.author, "Contested", models.NewsletterScheduled)

	report, err := s.dispatcherWithLock(blockingDelivery{}, layouts, lostLocker{}, 30*time.Millisecond).RunOnce(s.ctx)
	s.Require().Error(err)
	s.ErrorIs(err, lock.ErrLeaseLost)
	s.Zero(report.Published)
	s.Equal(models.NewsletterScheduled, s.status(n.ID))
}

func TestStartRejectsBadSchedule(t *testing.T) {
	d := New(nil, nil, nil, nil, lock.NewLocal(), Options{Schedule: "every now and then"}, zap.NewNop())
	assert.Error(t, d.Start())
	assert.NoError(t, d.Stop(context.Background()))
}

func TestStartStop(t *testing.T) {
	d := New(nil, nil, nil, nil, lock.NewLocal(), Options{Schedule: "@every 1h", LockTTL: time.Minute}, zap.NewNop())
	require.NoError(t, d.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, d.Stop(ctx))
}
