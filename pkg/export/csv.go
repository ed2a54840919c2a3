// Package export serializes captured results to CSV and JSON byte
// streams. All functions are pure: deterministic and side-effect-free
// over the same input sequence. Delivering the bytes (file download,
// HTTP response) is the caller's concern.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/objectdeck/objectdeck/pkg/results"
)

// The two CSV column layouts are both preserved deliberately: live
// snapshot exports lead with the timestamp, batch exports lead with
// the file name. Existing exported files depend on both shapes.
var (
	liveHeader  = []string{"Timestamp", "Object Class", "Confidence", "X", "Y", "Width", "Height"}
	batchHeader = []string{"File Name", "Object Class", "Confidence", "X", "Y", "Width", "Height", "Timestamp"}
)

// LiveCSV serializes results in the live snapshot layout: one row per
// (result, detection) pair, timestamp first.
func LiveCSV(rs []*results.Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(liveHeader); err != nil {
		return nil, err
	}

	for _, r := range rs {
		ts := r.Timestamp.Format(time.RFC3339)
		for _, d := range r.Detections {
			row := []string{
				ts,
				d.Class,
				Confidence(d.Score),
				coord(d.Box.X),
				coord(d.Box.Y),
				coord(d.Box.W),
				coord(d.Box.H),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BatchCSV serializes results in the batch layout: one row per
// (result, detection) pair, file name first, timestamp last.
func BatchCSV(rs []*results.Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(batchHeader); err != nil {
		return nil, err
	}

	for _, r := range rs {
		ts := r.Timestamp.Format(time.RFC3339)
		for _, d := range r.Detections {
			row := []string{
				r.SourceName,
				d.Class,
				Confidence(d.Score),
				coord(d.Box.X),
				coord(d.Box.Y),
				coord(d.Box.W),
				coord(d.Box.H),
				ts,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Confidence formats a 0-1 score as a percentage with exactly two
// decimal places, e.g. 0.873 -> "87.30".
func Confidence(score float64) string {
	return fmt.Sprintf("%.2f", score*100)
}

func coord(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
