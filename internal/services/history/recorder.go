package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/tresmil/internal/model"
)

// DefaultRecorderBuffer is the number of finished games that may wait for persistence
const DefaultRecorderBuffer = 64

// DefaultDrainTimeout bounds how long Run keeps persisting queued games after shutdown
const DefaultDrainTimeout = 5 * time.Second

// Recorder hands finished games to the Service on a background worker.
// Notify never blocks the caller.
type Recorder struct {
	service      *Service
	queue        chan *model.GameRecord
	drainTimeout time.Duration
	logger       *slog.Logger
}

// NewRecorder creates a Recorder with the given buffer size
func NewRecorder(service *Service, buffer int, logger *slog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = DefaultRecorderBuffer
	}
	return &Recorder{
		service:      service,
		queue:        make(chan *model.GameRecord, buffer),
		drainTimeout: DefaultDrainTimeout,
		logger:       logger,
	}
}

// Notify queues a finished game. It returns false when the buffer is full and
// the game was dropped.
func (r *Recorder) Notify(rec *model.GameRecord) bool {
	select {
	case r.queue <- rec:
		return true
	default:
		r.logger.Warn("recorder buffer full, dropping game",
			slog.String("room", string(rec.RoomCode)),
			slog.String("mode", string(rec.GameMode)),
		)
		return false
	}
}

// Run persists queued games until ctx is cancelled. Games still queued at
// that point are persisted on a fresh context bounded by the drain timeout;
// whatever is left after it expires is dropped and counted in the log.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.drain(nil)
			return nil
		case rec := <-r.queue:
			if ctx.Err() != nil {
				r.drain(rec)
				return nil
			}
			r.persist(ctx, rec)
		}
	}
}

func (r *Recorder) drain(pending *model.GameRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.drainTimeout)
	defer cancel()

	persisted := 0
	for {
		if pending == nil {
			select {
			case pending = <-r.queue:
			default:
				if persisted > 0 {
					r.logger.Info("persisted queued games on shutdown", slog.Int("games", persisted))
				}
				return
			}
		}

		if ctx.Err() != nil {
			r.logger.Warn("shutdown drain timed out, dropping games",
				slog.Int("persisted", persisted),
				slog.Int("dropped", 1+len(r.queue)),
			)
			return
		}
		r.persist(ctx, pending)
		persisted++
		pending = nil
	}
}

func (r *Recorder) persist(ctx context.Context, rec *model.GameRecord) {
	var err error
	if rec.GameMode == model.GameModeDice {
		_, err = r.service.RecordDiceGame(ctx, rec)
	} else {
		_, err = r.service.RecordGame(ctx, rec)
	}
	if err != nil {
		r.logger.Error("failed to record game",
			slog.String("room", string(rec.RoomCode)),
			slog.String("error", err.Error()),
		)
	}
}
