package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/objectdeck/objectdeck/pkg/detect"
	"github.com/objectdeck/objectdeck/pkg/overlay"
	"github.com/objectdeck/objectdeck/pkg/results"
	"github.com/objectdeck/objectdeck/pkg/source"
)

// readRetryDelay paces the loop when the source hiccups; the loop
// itself never decides to terminate.
const readRetryDelay = 50 * time.Millisecond

// Live runs detection over a continuous frame source. One loop
// goroutine processes frames strictly in order: at most one detect
// call is in flight per pipeline instance, so overlays are never
// applied out of order. A detect failure keeps the previous detection
// set on screen and the loop going; only Stop ends a session.
type Live struct {
	provider *detect.Provider
	store    *results.Store

	// OnFrame observes every rendered frame (JPEG with overlays) and
	// the detection set it carries. It is invoked from the pipeline
	// goroutine and must not call back into the pipeline.
	OnFrame func(jpeg []byte, dets []detect.Detection)

	mu    sync.Mutex
	state State
	src   source.Source
	stop  chan struct{}
	gen   uint64 // Bumped on Stop; stale in-flight publishes are discarded

	dets     []detect.Detection // Currently displayed detection set
	rendered []byte             // Last rendered frame (JPEG)
}

// NewLive creates a live pipeline around the shared detector provider
// and result store.
func NewLive(provider *detect.Provider, store *results.Store) *Live {
	return &Live{
		provider: provider,
		store:    store,
	}
}

// State returns the current lifecycle state.
func (l *Live) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Detections returns a copy of the currently displayed detection set.
func (l *Live) Detections() []detect.Detection {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]detect.Detection(nil), l.dets...)
}

// Start takes ownership of the frame source and begins the loop. It
// blocks on detector initialization: no pipeline runs before the
// shared model has loaded. On failure the source is closed and the
// pipeline returns to idle.
func (l *Live) Start(ctx context.Context, src source.Source) error {
	l.mu.Lock()
	if l.state != StateIdle {
		l.mu.Unlock()
		src.Close()
		return ErrAlreadyRunning
	}
	l.state = StateInitializing
	l.mu.Unlock()

	det, err := l.provider.Get(ctx)
	if err != nil {
		src.Close()
		l.mu.Lock()
		l.state = StateIdle
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	l.src = src
	l.stop = make(chan struct{})
	l.state = StateRunning
	gen := l.gen
	stop := l.stop
	l.mu.Unlock()

	go l.run(det, src, gen, stop)
	return nil
}

// Stop ends the session: no further iterations are scheduled, the
// source's device is released, and the displayed detections are
// cleared. A detect call still in flight has its result discarded when
// it resolves.
func (l *Live) Stop() error {
	l.mu.Lock()
	if l.state != StateRunning {
		l.mu.Unlock()
		return ErrNotRunning
	}

	l.state = StateStopping
	l.gen++
	close(l.stop)
	src := l.src
	l.src = nil
	l.dets = nil
	l.rendered = nil
	l.mu.Unlock()

	// Releasing the device can block on hardware, so it happens outside
	// the lock; the pipeline reports stopping until it completes.
	src.Close()

	l.mu.Lock()
	l.state = StateIdle
	l.mu.Unlock()
	return nil
}

// Snapshot captures the currently displayed frame and detections as a
// stored result with origin live.
func (l *Live) Snapshot() (*results.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateRunning {
		return nil, ErrNotRunning
	}
	if l.rendered == nil {
		return nil, ErrNoFrame
	}

	img := make([]byte, len(l.rendered))
	copy(img, l.rendered)

	return l.store.Append(&results.Result{
		Origin:     results.OriginLive,
		Timestamp:  time.Now(),
		Image:      img,
		Detections: append([]detect.Detection(nil), l.dets...),
	}), nil
}

// run is the frame loop. Each iteration fully completes, including the
// detect call, before the next is scheduled.
func (l *Live) run(det detect.Detector, src source.Source, gen uint64, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		frame, err := src.Next()
		if err != nil {
			// Source hiccup (or closed under us by Stop): wait and
			// let the stop channel decide.
			select {
			case <-stop:
				return
			case <-time.After(readRetryDelay):
			}
			continue
		}

		working := frame.Clone()

		var dets []detect.Detection
		jpegData, detErr := working.JPEG()
		if detErr == nil {
			dets, detErr = det.Detect(jpegData)
		}

		l.publish(gen, working, dets, detErr)
	}
}

// publish applies a completed iteration: replace the displayed set on
// success, keep the previous one on failure, render, and notify the
// observer. Iterations from a stopped generation are discarded.
func (l *Live) publish(gen uint64, working *source.Frame, dets []detect.Detection, detErr error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen != gen || l.state != StateRunning {
		return
	}

	if detErr == nil {
		l.dets = dets
	}

	rendered := overlay.Render(working, l.dets)
	encoded, err := rendered.JPEG()
	if err != nil {
		return
	}
	l.rendered = encoded

	if l.OnFrame != nil {
		l.OnFrame(encoded, l.dets)
	}
}
