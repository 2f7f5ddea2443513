package appointment

import (
	"context"
	"fmt"
	"time"

	redisclient "github.com/clinicdesk/appointment-book/internal/redis"
	"github.com/clinicdesk/appointment-book/pkg/logging"
)

// Snapshot is a full copy of the observed collections. Readers recompute
// every derived view from the latest snapshot instead of applying diffs;
// recomputation is cheap at clinic scale and avoids partial-update bugs.
type Snapshot struct {
	Appointments []Appointment
	Patients     []Patient
	TakenAt      time.Time
}

// Watcher turns the change feed into a stream of full snapshots.
type Watcher struct {
	repo     Repository
	notifier redisclient.Notifier
	logger   *logging.Logger
	now      func() time.Time
}

func NewWatcher(repo Repository, notifier redisclient.Notifier, logger *logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Watcher{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (w *Watcher) load(ctx context.Context) (Snapshot, error) {
	appts, err := w.repo.ListAppointments(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load appointment snapshot: %w", err)
	}
	patients, err := w.repo.ListPatients(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load patient snapshot: %w", err)
	}
	return Snapshot{
		Appointments: appts,
		Patients:     patients,
		TakenAt:      w.now(),
	}, nil
}

// Subscribe delivers one snapshot immediately and a fresh one after every
// change event, until the returned stop function is called or ctx ends.
// Abandoning the subscription only stops further deliveries; it cannot recall
// an in-flight one.
func (w *Watcher) Subscribe(ctx context.Context, onSnapshot func(Snapshot), onError func(error)) (func(), error) {
	refresh := func() {
		snap, err := w.load(ctx)
		if err != nil {
			w.logger.Warn("snapshot refresh failed", "error", err)
			if onError != nil {
				onError(err)
			}
			return
		}
		onSnapshot(snap)
	}

	// Initial snapshot must succeed so subscribers never start blind.
	snap, err := w.load(ctx)
	if err != nil {
		return nil, err
	}
	onSnapshot(snap)

	if w.notifier == nil {
		return func() {}, nil
	}
	return w.notifier.Subscribe(ctx, refresh, onError)
}
