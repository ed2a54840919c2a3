// detect - batch object detection CLI
//
// Runs the batch pipeline over image and video files and writes CSV and
// JSON reports alongside the annotated frames.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/objectdeck/objectdeck/internal/config"
	"github.com/objectdeck/objectdeck/pkg/debug"
	"github.com/objectdeck/objectdeck/pkg/detect"
	"github.com/objectdeck/objectdeck/pkg/export"
	"github.com/objectdeck/objectdeck/pkg/pipeline"
	"github.com/objectdeck/objectdeck/pkg/results"
)

func main() {
	model := flag.String("model", config.DefaultModelPath, "ONNX model path")
	outDir := flag.String("out", "detections", "output directory for reports and frames")
	interval := flag.Int("interval", config.DefaultSampleInterval, "video frame sampling interval")
	verbose := flag.Bool("debug", false, "enable verbose detector tracing")
	flag.Parse()
	debug.Enabled = *verbose

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: detect [flags] file...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	items := make([]pipeline.Item, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", path, err)
			os.Exit(1)
		}
		items = append(items, pipeline.Item{Name: filepath.Base(path), Data: data})
	}

	yoloCfg := detect.DefaultYOLOConfig()
	yoloCfg.ModelPath = *model

	provider := detect.NewProvider(yoloCfg)
	defer provider.Close()

	store := results.NewStore()
	batch := pipeline.NewBatch(provider, store, *interval, config.DefaultVideoStep)

	fmt.Printf("🔍 Processing %d file(s)...\n", len(items))
	summary := batch.Process(context.Background(), items)

	for _, r := range summary.Results {
		fmt.Printf("  ✅ %s: %d object(s)\n", r.SourceName, len(r.Detections))
	}
	for _, f := range summary.Failures {
		fmt.Printf("  ❌ %s: %v\n", f.Name, f.Err)
	}
	if summary.DetectFailures > 0 {
		fmt.Printf("  ⚠️  %d sampled frame(s) failed detection\n", summary.DetectFailures)
	}

	if len(summary.Results) == 0 {
		fmt.Println("No results to export")
		os.Exit(1)
	}

	if err := writeReports(*outDir, summary.Results); err != nil {
		fmt.Printf("❌ Export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("📄 Reports written to %s/\n", *outDir)
}

// writeReports saves the CSV and JSON reports plus each annotated frame.
func writeReports(dir string, rs []*results.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	csvData, err := export.BatchCSV(rs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "detections.csv"), csvData, 0644); err != nil {
		return err
	}

	jsonData, err := export.JSON(rs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "detections.json"), jsonData, 0644); err != nil {
		return err
	}

	for _, r := range rs {
		name := fmt.Sprintf("%d_%s.jpg", r.ID, r.SourceName)
		if err := os.WriteFile(filepath.Join(dir, name), r.Image, 0644); err != nil {
			return err
		}
	}
	return nil
}
