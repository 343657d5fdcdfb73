package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/pointledger/internal/adapter/events"
	"github.com/polkiloo/pointledger/internal/domain/model"
)

const publishTimeout = 5 * time.Second

// EventDispatcher publishes committed transactions in the background.
// Each worker owns a queue and a user is always routed to the same worker,
// so one user's events are published in commit order.
type EventDispatcher struct {
	publisher events.Publisher
	logger    *slog.Logger
	queues    []chan events.PointEvent

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewEventDispatcher constructs dispatcher with workers queues of buffer events each.
func NewEventDispatcher(publisher events.Publisher, workers, buffer int, logger *slog.Logger) *EventDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = 1
	}
	queues := make([]chan events.PointEvent, workers)
	for i := range queues {
		queues[i] = make(chan events.PointEvent, buffer)
	}
	return &EventDispatcher{
		publisher: publisher,
		logger:    logger,
		queues:    queues,
	}
}

// Notify enqueues the transaction without blocking. Events are dropped when the queue is full.
func (d *EventDispatcher) Notify(record model.TransactionRecord, balance model.Balance) {
	event := events.NewPointEvent(record, balance)
	select {
	case d.queue(record.UserID) <- event:
	default:
		d.logger.Warn("event queue full, dropping event",
			slog.String("event_id", event.EventID),
			slog.Int64("user_id", event.UserID),
			slog.Int64("record_id", event.RecordID),
		)
	}
}

// Start launches background workers.
func (d *EventDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	for _, q := range d.queues {
		d.wg.Add(1)
		go d.worker(runCtx, q)
	}
}

// Stop stops workers after they flush queued events.
func (d *EventDispatcher) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *EventDispatcher) queue(userID int64) chan events.PointEvent {
	idx := userID % int64(len(d.queues))
	if idx < 0 {
		idx = -idx
	}
	return d.queues[idx]
}

func (d *EventDispatcher) worker(ctx context.Context, queue <-chan events.PointEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(queue)
			return
		case event := <-queue:
			d.publish(ctx, event)
		}
	}
}

func (d *EventDispatcher) drain(queue <-chan events.PointEvent) {
	for {
		select {
		case event := <-queue:
			d.publish(context.Background(), event)
		default:
			return
		}
	}
}

func (d *EventDispatcher) publish(ctx context.Context, event events.PointEvent) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Error("publish event failed",
			slog.String("event_id", event.EventID),
			slog.Int64("user_id", event.UserID),
			slog.String("error", err.Error()),
		)
		return
	}
	d.logger.Debug("event published", slog.String("event_id", event.EventID), slog.Int64("user_id", event.UserID))
}
