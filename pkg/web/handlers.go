package web

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/objectdeck/objectdeck/internal/log"
	"github.com/objectdeck/objectdeck/pkg/export"
	"github.com/objectdeck/objectdeck/pkg/hub"
	"github.com/objectdeck/objectdeck/pkg/pipeline"
	"github.com/objectdeck/objectdeck/pkg/results"
	"github.com/objectdeck/objectdeck/pkg/source"
)

// statusPayload is the body of /api/status and the status websocket.
type statusPayload struct {
	State         string `json:"state"`
	DetectorReady bool   `json:"detector_ready"`
	Results       int    `json:"results"`
	Viewers       int    `json:"viewers"`
}

// resultMeta is a stored result without its image bytes.
type resultMeta struct {
	ID         int64           `json:"id"`
	Origin     string          `json:"origin"`
	SourceName string          `json:"file_name,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Detections []detectionMeta `json:"detections"`
}

type detectionMeta struct {
	Class string  `json:"class"`
	Score float64 `json:"score"`
	Box   boxMeta `json:"box"`
}

type boxMeta struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func toMeta(r *results.Result) resultMeta {
	dets := make([]detectionMeta, 0, len(r.Detections))
	for _, d := range r.Detections {
		dets = append(dets, detectionMeta{
			Class: d.Class,
			Score: d.Score,
			Box:   boxMeta{X: d.Box.X, Y: d.Box.Y, Width: d.Box.W, Height: d.Box.H},
		})
	}
	return resultMeta{
		ID:         r.ID,
		Origin:     string(r.Origin),
		SourceName: r.SourceName,
		Timestamp:  r.Timestamp,
		Detections: dets,
	}
}

func errJSON(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// handleLiveStart opens the capture device and starts the live
// pipeline.
func (s *Server) handleLiveStart(c *fiber.Ctx) error {
	src, err := s.OpenSource()
	if err != nil {
		var devErr *source.DeviceError
		if errors.As(err, &devErr) {
			return errJSON(c, fiber.StatusServiceUnavailable, err)
		}
		return errJSON(c, fiber.StatusInternalServerError, err)
	}

	if err := s.live.Start(c.UserContext(), src); err != nil {
		switch {
		case errors.Is(err, pipeline.ErrAlreadyRunning):
			return errJSON(c, fiber.StatusConflict, err)
		default:
			// Provider init failure: the model could not load. The
			// caller may retry.
			return errJSON(c, fiber.StatusServiceUnavailable, err)
		}
	}

	s.broadcastStatus()
	return c.JSON(fiber.Map{"state": s.live.State().String()})
}

// handleLiveStop ends the live session and releases the device.
func (s *Server) handleLiveStop(c *fiber.Ctx) error {
	if err := s.live.Stop(); err != nil {
		return errJSON(c, fiber.StatusConflict, err)
	}

	s.broadcastStatus()
	return c.JSON(fiber.Map{"state": s.live.State().String()})
}

// handleLiveSnapshot stores the currently displayed frame as a result.
func (s *Server) handleLiveSnapshot(c *fiber.Ctx) error {
	r, err := s.live.Snapshot()
	if err != nil {
		return errJSON(c, fiber.StatusConflict, err)
	}

	s.broadcastStatus()
	return c.JSON(toMeta(r))
}

// handleProcess accepts a multipart upload and runs the batch pipeline
// over every file, sequentially.
func (s *Server) handleProcess(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return errJSON(c, fiber.StatusBadRequest, err)
	}

	files := form.File["files"]
	if len(files) == 0 {
		return errJSON(c, fiber.StatusBadRequest, errors.New("no files uploaded"))
	}

	items := make([]pipeline.Item, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return errJSON(c, fiber.StatusBadRequest, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return errJSON(c, fiber.StatusBadRequest, err)
		}
		items = append(items, pipeline.Item{Name: fh.Filename, Data: data})
	}

	jobID := uuid.NewString()
	log.Info("batch job started", "job", jobID, "items", len(items))

	summary := s.batch.Process(c.UserContext(), items)

	failures := make([]fiber.Map, 0, len(summary.Failures))
	for _, f := range summary.Failures {
		failures = append(failures, fiber.Map{"file": f.Name, "error": f.Err.Error()})
	}

	metas := make([]resultMeta, 0, len(summary.Results))
	for _, r := range summary.Results {
		metas = append(metas, toMeta(r))
	}

	s.broadcastStatus()
	return c.JSON(fiber.Map{
		"job":             jobID,
		"results":         metas,
		"failures":        failures,
		"detect_failures": summary.DetectFailures,
	})
}

// handleListResults returns all stored results, most recent first.
func (s *Server) handleListResults(c *fiber.Ctx) error {
	list := s.store.List()
	metas := make([]resultMeta, 0, len(list))
	for _, r := range list {
		metas = append(metas, toMeta(r))
	}
	return c.JSON(metas)
}

// handleResultImage serves a stored result's overlay-baked JPEG.
func (s *Server) handleResultImage(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return errJSON(c, fiber.StatusBadRequest, err)
	}

	r, ok := s.store.Get(id)
	if !ok {
		return errJSON(c, fiber.StatusNotFound, errors.New("result not found"))
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(r.Image)
}

// handleDeleteResult removes a stored result. Removing an absent ID is
// a no-op.
func (s *Server) handleDeleteResult(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return errJSON(c, fiber.StatusBadRequest, err)
	}

	s.store.Remove(id)
	s.broadcastStatus()
	return c.SendStatus(fiber.StatusNoContent)
}

// handleExportCSV downloads the stored results as CSV. The layout query
// parameter selects the live or batch column order.
func (s *Server) handleExportCSV(c *fiber.Ctx) error {
	layout := c.Query("layout", "live")

	var (
		data []byte
		err  error
	)
	switch layout {
	case "live":
		data, err = export.LiveCSV(s.store.List())
	case "batch":
		data, err = export.BatchCSV(s.store.List())
	default:
		return errJSON(c, fiber.StatusBadRequest, errors.New("layout must be live or batch"))
	}
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="detections_`+layout+`.csv"`)
	return c.Send(data)
}

// handleExportJSON downloads the stored results as pretty-printed JSON.
func (s *Server) handleExportJSON(c *fiber.Ctx) error {
	data, err := export.JSON(s.store.List())
	if err != nil {
		return errJSON(c, fiber.StatusInternalServerError, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="detections.json"`)
	return c.Send(data)
}

// handleStatus returns the current pipeline status.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.statusSnapshot())
}

// handleFramesWS streams rendered live frames as binary JPEG messages.
func (s *Server) handleFramesWS(c *websocket.Conn) {
	hub.NewClient(s.frameHub, c).Run()
}

// handleStatusWS streams pipeline status updates as JSON messages. The
// current status is sent immediately on connect.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	if err := c.WriteJSON(s.statusSnapshot()); err != nil {
		c.Close()
		return
	}
	hub.NewClient(s.statusHub, c).Run()
}
