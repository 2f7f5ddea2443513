package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/appointment-book/pkg/logging"
)

type fakeNotifier struct {
	onChange     func()
	unsubscribed bool
}

func (f *fakeNotifier) NotifyChanged(context.Context) error { return nil }

func (f *fakeNotifier) Subscribe(_ context.Context, onChange func(), _ func(error)) (func(), error) {
	f.onChange = onChange
	return func() { f.unsubscribed = true }, nil
}

func TestWatcherDeliversInitialSnapshot(t *testing.T) {
	repo := newFakeRepo()
	patient := seedPatient(t, repo, "Laura Ortiz", "555-0101")
	seedPending(t, repo, patient, "Aplicación", testNow.Add(time.Hour))

	w := NewWatcher(repo, nil, logging.New("error"))

	var got []Snapshot
	stop, err := w.Subscribe(context.Background(), func(s Snapshot) { got = append(got, s) }, nil)
	require.NoError(t, err)
	defer stop()

	require.Len(t, got, 1)
	assert.Len(t, got[0].Appointments, 1)
	assert.Len(t, got[0].Patients, 1)
	assert.False(t, got[0].TakenAt.IsZero())
}

func TestWatcherRefreshesOnChange(t *testing.T) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	w := NewWatcher(repo, notifier, logging.New("error"))

	var got []Snapshot
	stop, err := w.Subscribe(context.Background(), func(s Snapshot) { got = append(got, s) }, nil)
	require.NoError(t, err)
	defer stop()

	require.Len(t, got, 1)
	assert.Empty(t, got[0].Appointments)

	patient := seedPatient(t, repo, "Laura Ortiz", "555-0101")
	seedPending(t, repo, patient, "Aplicación", testNow.Add(time.Hour))
	require.NotNil(t, notifier.onChange)
	notifier.onChange()

	require.Len(t, got, 2)
	assert.Len(t, got[1].Appointments, 1)
	assert.Len(t, got[1].Patients, 1)
}

func TestWatcherUnsubscribeStopsFeed(t *testing.T) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	w := NewWatcher(repo, notifier, logging.New("error"))

	stop, err := w.Subscribe(context.Background(), func(Snapshot) {}, nil)
	require.NoError(t, err)

	stop()
	assert.True(t, notifier.unsubscribed)
}
