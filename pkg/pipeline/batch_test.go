package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/objectdeck/objectdeck/pkg/detect"
	"github.com/objectdeck/objectdeck/pkg/results"
	"github.com/objectdeck/objectdeck/pkg/source"
)

// fakeStream yields a fixed number of frames, then io.EOF.
type fakeStream struct {
	total     int
	delivered int
	closed    bool
}

func (f *fakeStream) Next() (*source.Frame, error) {
	if f.delivered >= f.total {
		return nil, io.EOF
	}
	f.delivered++
	return &source.Frame{Image: image.NewRGBA(image.Rect(0, 0, 8, 6)), Time: time.Now()}, nil
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func newTestBatch(det detect.Detector, store *results.Store, stream *fakeStream) *Batch {
	b := NewBatch(provideDetector(det), store, 5, 0)
	b.OpenVideo = func(name string, data []byte) (source.Source, error) {
		return stream, nil
	}
	return b
}

func TestBatch_VideoSampling(t *testing.T) {
	tests := []struct {
		name      string
		frames    int
		wantCalls int
	}{
		{name: "one sample per interval", frames: 5, wantCalls: 1},
		{name: "partial tail interval", frames: 12, wantCalls: 3},
		{name: "exact multiple", frames: 15, wantCalls: 3},
		{name: "single frame", frames: 1, wantCalls: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stream := &fakeStream{total: tc.frames}

			// Record the frame index each detect call sampled.
			var sampledAt []int
			det := &fakeDetector{fn: func(call int) ([]detect.Detection, error) {
				sampledAt = append(sampledAt, stream.delivered-1)
				return []detect.Detection{{Class: fmt.Sprintf("sample-%d", call), Score: 0.9}}, nil
			}}

			store := results.NewStore()
			b := newTestBatch(det, store, stream)

			sum := b.Process(context.Background(), []Item{{Name: "clip.mp4", Data: []byte("video")}})

			if len(sum.Failures) != 0 {
				t.Fatalf("Failures: %+v", sum.Failures)
			}
			if got := det.callCount(); got != tc.wantCalls {
				t.Errorf("detect calls: got %d, want %d", got, tc.wantCalls)
			}
			for i, idx := range sampledAt {
				if idx != i*5 {
					t.Errorf("sample %d taken at frame %d, want %d", i, idx, i*5)
				}
			}

			// Last-sample-wins: the stored detections come from the
			// final sampled frame, not a union.
			if len(sum.Results) != 1 {
				t.Fatalf("Results: got %d, want 1", len(sum.Results))
			}
			r := sum.Results[0]
			if r.Origin != results.OriginVideo {
				t.Errorf("Origin: got %q, want %q", r.Origin, results.OriginVideo)
			}
			wantClass := fmt.Sprintf("sample-%d", tc.wantCalls)
			if len(r.Detections) != 1 || r.Detections[0].Class != wantClass {
				t.Errorf("Detections: got %+v, want class %q", r.Detections, wantClass)
			}
			if !stream.closed {
				t.Error("video stream not closed")
			}
		})
	}
}

func TestBatch_VideoDetectFailureCarriesForward(t *testing.T) {
	stream := &fakeStream{total: 12}

	// Samples at frames 0, 5, 10; the middle one fails.
	det := &fakeDetector{fn: func(call int) ([]detect.Detection, error) {
		if call == 2 {
			return nil, errors.New("inference failed")
		}
		return []detect.Detection{{Class: fmt.Sprintf("sample-%d", call), Score: 0.9}}, nil
	}}

	store := results.NewStore()
	b := newTestBatch(det, store, stream)

	sum := b.Process(context.Background(), []Item{{Name: "clip.mp4", Data: []byte("video")}})

	if len(sum.Failures) != 0 {
		t.Fatalf("Failures: %+v", sum.Failures)
	}
	if sum.DetectFailures != 1 {
		t.Errorf("DetectFailures: got %d, want 1", sum.DetectFailures)
	}
	if len(sum.Results) != 1 {
		t.Fatalf("Results: got %d, want 1", len(sum.Results))
	}
	// The third sample succeeded and wins
	if got := sum.Results[0].Detections[0].Class; got != "sample-3" {
		t.Errorf("final detections: got %q, want %q", got, "sample-3")
	}
}

func TestBatch_VideoDecodeStallFailsItemOnly(t *testing.T) {
	det := &fakeDetector{fn: func(int) ([]detect.Detection, error) {
		return []detect.Detection{{Class: "person", Score: 0.9}}, nil
	}}
	store := results.NewStore()

	b := NewBatch(provideDetector(det), store, 5, 0)
	b.OpenVideo = func(name string, data []byte) (source.Source, error) {
		return nil, &source.DecodeError{Name: name, Err: errors.New("corrupt container")}
	}

	items := []Item{
		{Name: "broken.mp4", Data: []byte("junk")},
		{Name: "ok.png", Data: pngBytes(t)},
	}
	sum := b.Process(context.Background(), items)

	if len(sum.Failures) != 1 || sum.Failures[0].Name != "broken.mp4" {
		t.Fatalf("Failures: %+v", sum.Failures)
	}
	// The batch continued with the image item
	if len(sum.Results) != 1 || sum.Results[0].Origin != results.OriginImage {
		t.Fatalf("Results: %+v", sum.Results)
	}
}

func TestBatch_ImageProcessedOnce(t *testing.T) {
	det := &fakeDetector{fn: func(int) ([]detect.Detection, error) {
		return []detect.Detection{{Class: "cat", Score: 0.7, Box: detect.Box{X: 1, Y: 1, W: 2, H: 2}}}, nil
	}}
	store := results.NewStore()
	b := NewBatch(provideDetector(det), store, 5, 0)

	sum := b.Process(context.Background(), []Item{{Name: "photo.png", Data: pngBytes(t)}})

	if len(sum.Failures) != 0 {
		t.Fatalf("Failures: %+v", sum.Failures)
	}
	if got := det.callCount(); got != 1 {
		t.Errorf("detect calls: got %d, want exactly 1", got)
	}

	r := sum.Results[0]
	if r.Origin != results.OriginImage || r.SourceName != "photo.png" {
		t.Errorf("result: got (%q,%q)", r.Origin, r.SourceName)
	}
	if len(r.Image) == 0 {
		t.Error("result image buffer is empty")
	}
	if store.Len() != 1 {
		t.Errorf("store length: got %d, want 1", store.Len())
	}
}

func TestBatch_MalformedImageSkipped(t *testing.T) {
	det := &fakeDetector{fn: func(int) ([]detect.Detection, error) { return nil, nil }}
	b := NewBatch(provideDetector(det), results.NewStore(), 5, 0)

	items := []Item{
		{Name: "junk.jpg", Data: []byte("not an image")},
		{Name: "good.png", Data: pngBytes(t)},
	}
	sum := b.Process(context.Background(), items)

	if len(sum.Failures) != 1 {
		t.Fatalf("Failures: got %d, want 1", len(sum.Failures))
	}
	var decErr *source.DecodeError
	if !errors.As(sum.Failures[0].Err, &decErr) {
		t.Errorf("failure error is %T, want *source.DecodeError", sum.Failures[0].Err)
	}
	if len(sum.Results) != 1 {
		t.Errorf("Results: got %d, want 1 (batch must continue)", len(sum.Results))
	}
}

func TestBatch_SequentialDetectorUse(t *testing.T) {
	// Items are processed one at a time; detect calls never overlap.
	inFlight := 0
	maxInFlight := 0
	det := &fakeDetector{fn: func(int) ([]detect.Detection, error) {
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		time.Sleep(time.Millisecond)
		inFlight--
		return nil, nil
	}}

	b := NewBatch(provideDetector(det), results.NewStore(), 5, 0)

	var items []Item
	for i := 0; i < 4; i++ {
		items = append(items, Item{Name: fmt.Sprintf("img-%d.png", i), Data: pngBytes(t)})
	}
	b.Process(context.Background(), items)

	if maxInFlight != 1 {
		t.Errorf("max in-flight detect calls: got %d, want 1", maxInFlight)
	}
}

func TestIsVideo(t *testing.T) {
	tests := []struct {
		name   string
		expect bool
	}{
		{name: "clip.mp4", expect: true},
		{name: "CLIP.MOV", expect: true},
		{name: "archive.mkv", expect: true},
		{name: "photo.jpg", expect: false},
		{name: "photo.png", expect: false},
		{name: "noext", expect: false},
	}

	for _, tc := range tests {
		if got := IsVideo(tc.name); got != tc.expect {
			t.Errorf("IsVideo(%q): got %v, want %v", tc.name, got, tc.expect)
		}
	}
}
