package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
	"github.com/alshabili/first-backend/internal/metrics"
	"github.com/alshabili/first-backend/internal/notify"
)

func TestMain(m *testing.M) {
	metrics.Init()
	m.Run()
}

type fakeSubs struct {
	subs []jobs.Subscription
	err  error
}

func (f *fakeSubs) ListActive(context.Context, string) ([]jobs.Subscription, error) {
	return f.subs, f.err
}

type fakeStore struct {
	mu      sync.Mutex
	records []jobs.JobRecord
	err     error
}

func (f *fakeStore) PersistJob(_ context.Context, record jobs.JobRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

type fakeFormatter struct{}

func (fakeFormatter) Format(p jobs.Platform, category string, _ jobs.JobRecord) (notify.Message, error) {
	if p == jobs.PlatformUnknown {
		return nil, errors.New("unknown platform")
	}
	return notify.Message(category), nil
}

type sent struct {
	platform jobs.Platform
	target   string
}

type fakeSender struct {
	mu       sync.Mutex
	sends    []sent
	failAll  bool
}

func (f *fakeSender) Send(_ context.Context, platform jobs.Platform, target string, _ notify.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sent{platform, target})
	return !f.failAll
}

func (f *fakeSender) all() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.sends...)
}

var record = jobs.JobRecord{Category: "design", ExternalID: "42", Title: "Logo"}

func TestNotifyDispatchesToActiveSubscribersOnly(t *testing.T) {
	t.Parallel()

	subs := &fakeSubs{subs: []jobs.Subscription{
		{UserID: 1, Platform: jobs.PlatformTelegram, TargetAddress: "chat-1", IsActive: true},
		{UserID: 2, Platform: jobs.PlatformDiscord, TargetAddress: "hook-2", IsActive: false},
	}}
	store := &fakeStore{}
	sender := &fakeSender{}
	n := New(subs, store, fakeFormatter{}, sender, zap.NewNop())

	require.NoError(t, n.Notify(context.Background(), "design", record))

	sends := sender.all()
	require.Len(t, sends, 1)
	require.Equal(t, jobs.PlatformTelegram, sends[0].platform)
	require.Equal(t, "chat-1", sends[0].target)

	require.Len(t, store.records, 1)
	require.Equal(t, "42", store.records[0].ExternalID)
}

func TestNotifyDeliveryFailuresAreSwallowed(t *testing.T) {
	t.Parallel()

	subs := &fakeSubs{subs: []jobs.Subscription{
		{UserID: 1, Platform: jobs.PlatformTelegram, TargetAddress: "a", IsActive: true},
		{UserID: 2, Platform: jobs.PlatformDiscord, TargetAddress: "b", IsActive: true},
	}}
	store := &fakeStore{}
	sender := &fakeSender{failAll: true}
	n := New(subs, store, fakeFormatter{}, sender, zap.NewNop())

	// All deliveries fail, persistence succeeds: Notify succeeds.
	require.NoError(t, n.Notify(context.Background(), "design", record))
	require.Len(t, sender.all(), 2)
	require.Len(t, store.records, 1)
}

func TestNotifyPersistenceFailurePropagates(t *testing.T) {
	t.Parallel()

	subs := &fakeSubs{subs: []jobs.Subscription{
		{UserID: 1, Platform: jobs.PlatformTelegram, TargetAddress: "a", IsActive: true},
	}}
	store := &fakeStore{err: errors.New("db down")}
	sender := &fakeSender{}
	n := New(subs, store, fakeFormatter{}, sender, zap.NewNop())

	err := n.Notify(context.Background(), "design", record)
	require.Error(t, err)
	require.Contains(t, err.Error(), "persist job")
}

func TestNotifySubscriptionQueryFailurePropagates(t *testing.T) {
	t.Parallel()

	n := New(&fakeSubs{err: errors.New("db down")}, &fakeStore{}, fakeFormatter{}, &fakeSender{}, zap.NewNop())
	require.Error(t, n.Notify(context.Background(), "design", record))
}

func TestNotifyWithNoSubscribersStillPersists(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	n := New(&fakeSubs{}, store, fakeFormatter{}, &fakeSender{}, zap.NewNop())
	require.NoError(t, n.Notify(context.Background(), "design", record))
	require.Len(t, store.records, 1)
}
