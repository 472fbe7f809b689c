package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-store/internal/core/domain"
	"github.com/99minutos/identity-store/internal/core/ports"
	"github.com/99minutos/identity-store/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes user imports to a fixed set of workers using consistent
// hashing on the case-folded user name, so two imports of the same name never
// race each other inside one process.
type Dispatcher struct {
	workers []chan ports.UserImportInput
	stopped <-chan struct{}
	service ports.ImportService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.ImportService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.UserImportInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.UserImportInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.stopped = ctx.Done()
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an import to the worker responsible for its user name. It
// never blocks: once the workers have stopped, or the worker's buffer is
// full, it returns an error wrapping domain.ErrImportUnavailable.
func (d *Dispatcher) Enqueue(in ports.UserImportInput) error {
	select {
	case <-d.stopped:
		return fmt.Errorf("dispatcher stopped: %w", domain.ErrImportUnavailable)
	default:
	}

	idx := d.shardIndex(in.UserName)
	select {
	case d.workers[idx] <- in:
	default:
		return fmt.Errorf("worker %d queue full: %w", idx, domain.ErrImportUnavailable)
	}
	metrics.ImportQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	return nil
}

// EnqueueBatch enqueues imports in order and stops at the first rejection.
// It returns how many were accepted.
func (d *Dispatcher) EnqueueBatch(batch []ports.UserImportInput) (int, error) {
	for i, in := range batch {
		if err := d.Enqueue(in); err != nil {
			return i, err
		}
	}
	return len(batch), nil
}

// shardIndex maps a user name deterministically to a worker index.
func (d *Dispatcher) shardIndex(userName string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToUpper(userName)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.UserImportInput) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-ch:
			if !ok {
				return
			}
			metrics.ImportQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.service.Process(ctx, in); err != nil {
				d.log.Error().Err(err).
					Str("user_name", in.UserName).
					Int("worker_id", id).
					Msg("user import failed")
			}
		}
	}
}
