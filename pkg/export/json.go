package export

import (
	"encoding/json"
	"time"

	"github.com/objectdeck/objectdeck/pkg/results"
)

// boxJSON expresses a bounding box with named fields.
type boxJSON struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// detectionJSON is one detection in the export, confidence rendered as
// a two-decimal percentage string.
type detectionJSON struct {
	Class      string  `json:"class"`
	Confidence string  `json:"confidence"`
	Box        boxJSON `json:"bbox"`
}

// resultJSON is one captured result in the export.
type resultJSON struct {
	ID         int64           `json:"id"`
	Origin     string          `json:"origin"`
	FileName   string          `json:"file_name,omitempty"`
	Timestamp  string          `json:"timestamp"`
	Detections []detectionJSON `json:"detections"`
}

// JSON serializes results as pretty-printed UTF-8 JSON, one object per
// result.
func JSON(rs []*results.Result) ([]byte, error) {
	out := make([]resultJSON, 0, len(rs))

	for _, r := range rs {
		dets := make([]detectionJSON, 0, len(r.Detections))
		for _, d := range r.Detections {
			dets = append(dets, detectionJSON{
				Class:      d.Class,
				Confidence: Confidence(d.Score),
				Box: boxJSON{
					X:      d.Box.X,
					Y:      d.Box.Y,
					Width:  d.Box.W,
					Height: d.Box.H,
				},
			})
		}

		out = append(out, resultJSON{
			ID:         r.ID,
			Origin:     string(r.Origin),
			FileName:   r.SourceName,
			Timestamp:  r.Timestamp.Format(time.RFC3339),
			Detections: dets,
		})
	}

	return json.MarshalIndent(out, "", "  ")
}
