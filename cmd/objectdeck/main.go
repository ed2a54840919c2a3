// objectdeck - object detection server
//
// Serves the live and batch detection pipelines over HTTP and
// websockets for a browser front end.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/objectdeck/objectdeck/internal/config"
	"github.com/objectdeck/objectdeck/internal/log"
	"github.com/objectdeck/objectdeck/pkg/debug"
	"github.com/objectdeck/objectdeck/pkg/detect"
	"github.com/objectdeck/objectdeck/pkg/pipeline"
	"github.com/objectdeck/objectdeck/pkg/results"
	"github.com/objectdeck/objectdeck/pkg/web"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides ADDR env var)")
	model := flag.String("model", "", "ONNX model path (overrides MODEL_PATH env var)")
	device := flag.Int("device", -1, "capture device ID (overrides DEVICE_ID env var)")
	verbose := flag.Bool("debug", false, "enable verbose detector tracing (overrides DEBUG env var)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.InitFromEnv()
		log.Error("configuration error", "err", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *model != "" {
		cfg.ModelPath = *model
	}
	if *device >= 0 {
		cfg.DeviceID = *device
	}
	if *verbose {
		cfg.Debug = true
	}

	log.Init(cfg.LogLevel)
	debug.Enabled = cfg.Debug

	yoloCfg := detect.DefaultYOLOConfig()
	yoloCfg.ModelPath = cfg.ModelPath
	yoloCfg.ConfidenceThresh = float32(cfg.ConfidenceThresh)

	provider := detect.NewProvider(yoloCfg)
	defer provider.Close()

	store := results.NewStore()
	live := pipeline.NewLive(provider, store)
	batch := pipeline.NewBatch(provider, store, cfg.SampleInterval, cfg.VideoStep)

	srv := web.NewServer(web.Config{
		Addr:     cfg.Addr,
		DeviceID: cfg.DeviceID,
		Provider: provider,
		Live:     live,
		Batch:    batch,
		Store:    store,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		if live.State() == pipeline.StateRunning {
			live.Stop()
		}
		srv.Shutdown()
	}()

	if err := srv.Start(); err != nil {
		log.Error("server error", "err", err)
		os.Exit(1)
	}
}
