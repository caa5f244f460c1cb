package decoder

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/radioreceiver/demod"
)

// workItem is the tagged union enqueued on Worker.workCh: exactly one of
// mode or req is set. Mirroring the two variants in a single struct (rather
// than two channels) is what makes SetMode/Submit strictly FIFO relative to
// each other, per spec §5's one-tagged-queue messaging contract.
type workItem struct {
	mode *demod.Descriptor
	req  *Request
}

// Worker runs a Decoder as the single-producer/single-consumer task spec
// §4.7/§5 describes: one goroutine draining a single tagged work queue,
// emitting results in submission order. SetMode and Submit must both be
// called from the same goroutine (the controller's run loop) for that
// ordering guarantee to mean anything across the two call sites; a shared
// channel only orders sends from one sender, not sends racing from several.
type Worker struct {
	ctx    context.Context
	cancel context.CancelFunc

	decoder *Decoder
	workCh  chan workItem
	resCh   chan Result
}

// NewWorker builds a Worker bound to ctx. resCh is the caller-owned channel
// results are delivered on; the caller chooses its buffering.
func NewWorker(ctx context.Context, resCh chan Result) *Worker {
	workerCtx, cancel := context.WithCancel(ctx)
	return &Worker{
		ctx:     workerCtx,
		cancel:  cancel,
		decoder: New(),
		workCh:  make(chan workItem, 2),
		resCh:   resCh,
	}
}

// SetMode enqueues a mode change, processed in order with any already
// queued Submit calls. It blocks until accepted or the worker is stopped.
func (w *Worker) SetMode(desc demod.Descriptor) {
	select {
	case w.workCh <- workItem{mode: &desc}:
	case <-w.ctx.Done():
	}
}

// Submit enqueues req for processing. Per spec §4.7, at most one Process is
// in flight at a time; Submit blocks if the queue is already full of a
// prior mode change and request. req.Bytes is considered consumed: the
// caller must not touch it again after this call returns.
func (w *Worker) Submit(req Request) {
	select {
	case w.workCh <- workItem{req: &req}:
	case <-w.ctx.Done():
	}
}

// Stop cancels the worker; routine's goroutine exits after finishing (or
// abandoning) whatever it is doing.
func (w *Worker) Stop() {
	w.cancel()
}

// routine returns the function run as the worker's goroutine, mirroring
// the dongle/demod stages' routine(wg, ...) shape: a single select loop
// that exits on ctx.Done.
func (w *Worker) routine(wg *sync.WaitGroup) func() {
	return func() {
		defer wg.Done()
		for {
			select {
			case <-w.ctx.Done():
				fmt.Fprintf(os.Stderr, "[decoder] returning from worker routine\n")
				return
			case item := <-w.workCh:
				if item.mode != nil {
					w.decoder.SetMode(*item.mode)
					continue
				}
				result := w.decoder.Process(*item.req)
				select {
				case w.resCh <- result:
				case <-w.ctx.Done():
					return
				}
			}
		}
	}
}

// Start launches the worker's goroutine and registers it with wg.
func (w *Worker) Start(wg *sync.WaitGroup) {
	wg.Add(1)
	go w.routine(wg)()
}
