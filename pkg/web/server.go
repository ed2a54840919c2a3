// Package web exposes the detection pipeline to a browser front end
// over HTTP and websockets.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/objectdeck/objectdeck/internal/log"
	"github.com/objectdeck/objectdeck/pkg/detect"
	"github.com/objectdeck/objectdeck/pkg/hub"
	"github.com/objectdeck/objectdeck/pkg/pipeline"
	"github.com/objectdeck/objectdeck/pkg/results"
	"github.com/objectdeck/objectdeck/pkg/source"
)

// Config wires the server to the pipelines it fronts.
type Config struct {
	Addr     string
	DeviceID int

	Provider *detect.Provider
	Live     *pipeline.Live
	Batch    *pipeline.Batch
	Store    *results.Store
}

// Server is the HTTP/websocket API server.
type Server struct {
	app  *fiber.App
	addr string

	provider *detect.Provider
	live     *pipeline.Live
	batch    *pipeline.Batch
	store    *results.Store

	// OpenSource supplies the frame source for a live session. The
	// default opens the configured capture device; tests swap it out.
	OpenSource func() (source.Source, error)

	// Hubs for websocket broadcast
	frameHub  *hub.Hub
	statusHub *hub.Hub
}

// NewServer creates the API server and wires the live pipeline's frame
// events into the websocket frame hub.
func NewServer(cfg Config) *Server {
	s := &Server{
		addr:     cfg.Addr,
		provider: cfg.Provider,
		live:     cfg.Live,
		batch:    cfg.Batch,
		store:    cfg.Store,
		OpenSource: func() (source.Source, error) {
			return source.OpenWebcam(cfg.DeviceID)
		},
		frameHub:  hub.New("frames"),
		statusHub: hub.New("status"),
	}

	// Rendered frames stream straight to connected viewers.
	s.live.OnFrame = func(jpeg []byte, dets []detect.Detection) {
		s.frameHub.BroadcastBinary(jpeg)
	}

	app := fiber.New(fiber.Config{
		AppName:               "objectdeck",
		DisableStartupMessage: true,
		BodyLimit:             256 * 1024 * 1024, // Video uploads
	})

	// CORS for local development
	app.Use(cors.New())

	// Static front end, when bundled alongside the binary
	app.Static("/", "./web")

	// API routes
	api := app.Group("/api")
	api.Post("/live/start", s.handleLiveStart)
	api.Post("/live/stop", s.handleLiveStop)
	api.Post("/live/snapshot", s.handleLiveSnapshot)
	api.Post("/process", s.handleProcess)
	api.Get("/results", s.handleListResults)
	api.Get("/results/:id/image", s.handleResultImage)
	api.Delete("/results/:id", s.handleDeleteResult)
	api.Get("/export/csv", s.handleExportCSV)
	api.Get("/export/json", s.handleExportJSON)
	api.Get("/status", s.handleStatus)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start runs the hubs and listens on the configured address. It blocks
// until the server shuts down.
func (s *Server) Start() error {
	log.Info("http server listening", "addr", s.addr)

	go s.frameHub.Run()
	go s.statusHub.Run()

	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// statusSnapshot assembles the current pipeline status for /api/status
// and the status websocket.
func (s *Server) statusSnapshot() statusPayload {
	return statusPayload{
		State:         s.live.State().String(),
		DetectorReady: s.provider.Ready(),
		Results:       s.store.Len(),
		Viewers:       s.frameHub.ClientCount(),
	}
}

// broadcastStatus pushes the current status to all status subscribers.
func (s *Server) broadcastStatus() {
	if err := s.statusHub.BroadcastJSON(s.statusSnapshot()); err != nil {
		log.Warn("status broadcast failed", "err", err)
	}
}
