// Package results holds captured detection results for later export.
package results

import (
	"time"

	"github.com/objectdeck/objectdeck/pkg/detect"
)

// Origin identifies where a captured result came from.
type Origin string

const (
	// OriginLive is a user-triggered snapshot of the live feed.
	OriginLive Origin = "live"
	// OriginImage is one processed uploaded image.
	OriginImage Origin = "image"
	// OriginVideo is one processed uploaded video, summarized by the
	// detections from its last sampled frame.
	OriginVideo Origin = "video"
)

// Result is a stored record pairing a rendered frame with its
// detections and provenance. Results are never mutated after creation;
// re-exports replace rather than modify.
type Result struct {
	ID         int64
	Origin     Origin
	SourceName string // File name for image/video origins
	Timestamp  time.Time
	Image      []byte // JPEG with overlays baked in
	Detections []detect.Detection
}
