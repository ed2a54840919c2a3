// watch - live detection stream viewer
//
// Connects to a running objectdeck server, starts the live pipeline,
// and receives the rendered frame stream over the frames websocket.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/objectdeck/objectdeck/internal/httpc"
)

func main() {
	host := flag.String("host", "localhost:8080", "objectdeck server host:port")
	saveDir := flag.String("save", "", "directory to save received frames into (empty: count only)")
	start := flag.Bool("start", true, "start the live pipeline before watching")
	flag.Parse()

	base := "http://" + *host

	status, err := fetchStatus(base)
	if err != nil {
		fmt.Printf("❌ Server unreachable: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("📡 Server state: %s (detector ready: %v, %d result(s))\n",
		status.State, status.DetectorReady, status.Results)

	if *start && status.State != "running" {
		resp, err := httpc.Post(base+"/api/live/start", "application/json", nil)
		if err != nil {
			fmt.Printf("❌ Start failed: %v\n", err)
			os.Exit(1)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != 200 {
			fmt.Printf("❌ Start failed (%d): %s\n", resp.StatusCode, body)
			os.Exit(1)
		}
		fmt.Println("▶️  Live pipeline started")
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+*host+"/ws/frames", nil)
	if err != nil {
		fmt.Printf("❌ Websocket connect failed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	if *saveDir != "" {
		if err := os.MkdirAll(*saveDir, 0755); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
	}

	frameCount := 0
	startTime := time.Now()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		elapsed := time.Since(startTime).Seconds()
		fmt.Printf("\n📊 %d frame(s) in %.1fs (%.1f fps)\n",
			frameCount, elapsed, float64(frameCount)/elapsed)
		os.Exit(0)
	}()

	fmt.Println("🎬 Receiving frames (Ctrl+C to stop)...")
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Printf("\nStream ended: %v\n", err)
			break
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		frameCount++
		fmt.Printf("\r📷 Frame %d: %d bytes     ", frameCount, len(data))

		if *saveDir != "" {
			name := filepath.Join(*saveDir, fmt.Sprintf("frame_%04d.jpg", frameCount))
			if err := os.WriteFile(name, data, 0644); err != nil {
				fmt.Printf("\n❌ Save failed: %v\n", err)
				break
			}
		}
	}
}

type serverStatus struct {
	State         string `json:"state"`
	DetectorReady bool   `json:"detector_ready"`
	Results       int    `json:"results"`
}

// fetchStatus queries /api/status on the target server.
func fetchStatus(base string) (*serverStatus, error) {
	resp, err := httpc.Get(base + "/api/status")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var s serverStatus
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
