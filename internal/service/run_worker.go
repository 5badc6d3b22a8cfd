package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/collegedir/collegedir/internal/domain"
	"github.com/collegedir/collegedir/internal/models"
)

// RunRecorder is an alias for the canonical domain.RunRecorder interface.
type RunRecorder = domain.RunRecorder

// RunEnqueuer accepts finished ingestion runs for asynchronous persistence.
type RunEnqueuer interface {
	Enqueue(run *models.IngestRun)
}

// RunWorker buffers ingestion run summaries and writes them via a single
// worker goroutine, so a slow run log never delays an upload response.
type RunWorker struct {
	recorder RunRecorder
	log      *logrus.Logger
	jobs     chan *models.IngestRun
}

// NewRunWorker creates a RunWorker with the given queue capacity.
func NewRunWorker(recorder RunRecorder, log *logrus.Logger, queueSize int) *RunWorker {
	if queueSize <= 0 {
		queueSize = 256
	}

	return &RunWorker{
		recorder: recorder,
		log:      log,
		jobs:     make(chan *models.IngestRun, queueSize),
	}
}

// Enqueue adds a run. Non-blocking; drops the run if the queue is full.
func (w *RunWorker) Enqueue(run *models.IngestRun) {
	select {
	case w.jobs <- run:
	default:
		w.log.WithField("source", run.Source).Warn("ingest run queue full, dropping entry")
	}
}

// Run processes queued runs until the context is cancelled, then drains the queue.
func (w *RunWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case run := <-w.jobs:
			w.process(run)
		}
	}
}

func (w *RunWorker) drain() {
	for {
		select {
		case run := <-w.jobs:
			w.process(run)
		default:
			return
		}
	}
}

func (w *RunWorker) process(run *models.IngestRun) {
	if err := w.recorder.RecordIngestRun(context.Background(), run); err != nil {
		w.log.WithError(err).WithField("request_id", run.RequestID).Warn("recording ingest run failed")
	}
}
