package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/objectdeck/objectdeck/internal/log"
	"github.com/objectdeck/objectdeck/pkg/detect"
	"github.com/objectdeck/objectdeck/pkg/overlay"
	"github.com/objectdeck/objectdeck/pkg/results"
	"github.com/objectdeck/objectdeck/pkg/source"
)

// DefaultSampleInterval is the stride in decoded frames at which batch
// video processing re-invokes the detector. Detections are carried
// forward for the frames in between.
const DefaultSampleInterval = 5

// Item is one uploaded file to process.
type Item struct {
	Name string
	Data []byte
}

// ItemFailure records a batch item that was skipped.
type ItemFailure struct {
	Name string
	Err  error
}

// Summary reports the outcome of a batch run.
type Summary struct {
	Results  []*results.Result
	Failures []ItemFailure

	// DetectFailures counts sampled video frames whose detect call
	// failed; the previous detection set was carried forward.
	DetectFailures int
}

// Batch processes uploaded images and videos one item at a time. The
// detector is a single shared non-reentrant resource, so items are
// never processed in parallel.
type Batch struct {
	provider       *detect.Provider
	store          *results.Store
	sampleInterval int

	// OpenVideo opens a frame stream over raw video bytes. The default
	// spools the bytes to a temporary file and decodes it through
	// OpenCV with playback-time stepping.
	OpenVideo func(name string, data []byte) (source.Source, error)

	// DecodeImage decodes an uploaded image into a single frame.
	DecodeImage func(name string, data []byte) (*source.Frame, error)
}

// NewBatch creates a batch processor. A sampleInterval below 1 uses
// DefaultSampleInterval; step controls video playback advancement per
// decoded frame.
func NewBatch(provider *detect.Provider, store *results.Store, sampleInterval int, step time.Duration) *Batch {
	if sampleInterval < 1 {
		sampleInterval = DefaultSampleInterval
	}
	return &Batch{
		provider:       provider,
		store:          store,
		sampleInterval: sampleInterval,
		OpenVideo:      spoolVideo(step),
		DecodeImage:    source.DecodeImage,
	}
}

// Process runs the batch sequentially. A failing item is recorded and
// skipped; subsequent items still run.
func (b *Batch) Process(ctx context.Context, items []Item) *Summary {
	sum := &Summary{}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			sum.Failures = append(sum.Failures, ItemFailure{Name: item.Name, Err: err})
			continue
		}

		var (
			r        *results.Result
			failures int
			err      error
		)
		if IsVideo(item.Name) {
			r, failures, err = b.processVideo(ctx, item)
		} else {
			r, err = b.processImage(ctx, item)
		}

		sum.DetectFailures += failures
		if err != nil {
			log.Warn("batch item failed", "name", item.Name, "error", err)
			sum.Failures = append(sum.Failures, ItemFailure{Name: item.Name, Err: err})
			continue
		}
		sum.Results = append(sum.Results, r)
	}

	return sum
}

// processImage decodes the image, invokes the detector exactly once,
// and stores one result with origin image.
func (b *Batch) processImage(ctx context.Context, item Item) (*results.Result, error) {
	frame, err := b.DecodeImage(item.Name, item.Data)
	if err != nil {
		return nil, err
	}

	det, err := b.provider.Get(ctx)
	if err != nil {
		return nil, err
	}

	jpegData, err := frame.JPEG()
	if err != nil {
		return nil, err
	}
	dets, err := det.Detect(jpegData)
	if err != nil {
		return nil, err
	}

	img, err := overlay.Render(frame, dets).JPEG()
	if err != nil {
		return nil, err
	}

	return b.store.Append(&results.Result{
		Origin:     results.OriginImage,
		SourceName: item.Name,
		Image:      img,
		Detections: dets,
	}), nil
}

// processVideo decodes the video sequentially, sampling every Nth
// decoded frame for detection and carrying the most recent set forward
// in between. The final frame is rendered with the last accumulated
// set: the stored result is last-sample-wins, not a union.
func (b *Batch) processVideo(ctx context.Context, item Item) (*results.Result, int, error) {
	src, err := b.OpenVideo(item.Name, item.Data)
	if err != nil {
		return nil, 0, err
	}
	defer src.Close()

	det, err := b.provider.Get(ctx)
	if err != nil {
		return nil, 0, err
	}

	var (
		last           *source.Frame
		dets           []detect.Detection
		detectFailures int
	)

	for n := 0; ; n++ {
		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, detectFailures, err
		}

		if n%b.sampleInterval == 0 {
			jpegData, err := frame.JPEG()
			if err != nil {
				detectFailures++
			} else if d, err := det.Detect(jpegData); err != nil {
				detectFailures++
			} else {
				dets = d
			}
		}

		last = frame
	}

	if last == nil {
		return nil, detectFailures, &source.DecodeError{Name: item.Name, Err: errors.New("no frames decoded")}
	}

	img, err := overlay.Render(last, dets).JPEG()
	if err != nil {
		return nil, detectFailures, err
	}

	return b.store.Append(&results.Result{
		Origin:     results.OriginVideo,
		SourceName: item.Name,
		Image:      img,
		Detections: dets,
	}), detectFailures, nil
}

// IsVideo reports whether the file name has a supported video
// extension; everything else is treated as an image.
func IsVideo(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4", ".avi", ".mov", ".mkv", ".webm", ".m4v":
		return true
	}
	return false
}

// spoolVideo returns an OpenVideo implementation that writes the bytes
// to a temporary file and streams it via source.OpenVideo.
func spoolVideo(step time.Duration) func(name string, data []byte) (source.Source, error) {
	return func(name string, data []byte) (source.Source, error) {
		f, err := os.CreateTemp("", "objectdeck-*"+filepath.Ext(name))
		if err != nil {
			return nil, err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(f.Name())
			return nil, err
		}
		if err := f.Close(); err != nil {
			os.Remove(f.Name())
			return nil, err
		}

		v, err := source.OpenVideo(f.Name(), step)
		if err != nil {
			os.Remove(f.Name())
			return nil, err
		}
		return &spooledVideo{VideoFile: v, path: f.Name()}, nil
	}
}

// spooledVideo removes its temporary file on close.
type spooledVideo struct {
	*source.VideoFile
	path string
}

func (s *spooledVideo) Close() error {
	err := s.VideoFile.Close()
	os.Remove(s.path)
	return err
}
