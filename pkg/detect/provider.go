package detect

import (
	"context"
	"sync"
)

// Provider is the process-wide handle to the shared detector. The model
// is loaded lazily on the first Get and reused by every pipeline. A
// failed load is retried on the next Get. The detector itself is a
// single non-reentrant resource; Provider hands out the same instance
// to all callers.
type Provider struct {
	mu   sync.Mutex
	open func() (Detector, error)
	det  Detector
}

// NewProvider creates a provider that loads a YOLO detector on demand.
func NewProvider(cfg YOLOConfig) *Provider {
	return NewProviderFunc(func() (Detector, error) {
		return NewYOLO(cfg)
	})
}

// NewProviderFunc creates a provider backed by a custom detector
// constructor.
func NewProviderFunc(open func() (Detector, error)) *Provider {
	return &Provider{open: open}
}

// Get returns the shared detector, loading the model on first use.
// All detection activity is gated on this succeeding; a load failure
// is returned as an *InitError and retried on the next call.
func (p *Provider) Get(ctx context.Context) (Detector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.det != nil {
		return p.det, nil
	}

	det, err := p.open()
	if err != nil {
		return nil, &InitError{Err: err}
	}
	p.det = det
	return p.det, nil
}

// Ready reports whether the detector has been initialized.
func (p *Provider) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.det != nil
}

// Close releases the detector if it was initialized. A subsequent Get
// loads it again.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.det == nil {
		return nil
	}
	err := p.det.Close()
	p.det = nil
	return err
}
