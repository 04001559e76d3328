// sweep_vectors.go — standalone script that replays a scripted taste sweep
// against the installation API, standing in for an audience during rehearsal.
//
// Usage:
//
//	go run scripts/sweep_vectors.go -api http://localhost:8700 -frames 120 -fps 10 -client rehearsal
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"
)

type vector struct {
	Sweetness  float64 `json:"sweetness"`
	Acidity    float64 `json:"acidity"`
	Bitterness float64 `json:"bitterness"`
	Intensity  float64 `json:"intensity"`
	Texture    float64 `json:"texture"`
}

// frameAt traces a slow sweep through the taste space. Each axis runs a sine
// at its own frequency so the sweep visits mixed states, not just the axes.
func frameAt(t float64) vector {
	wave := func(freq, phase float64) float64 {
		return 50.0 + 50.0*math.Sin(2*math.Pi*freq*t+phase)
	}
	return vector{
		Sweetness:  wave(0.050, 0),
		Acidity:    wave(0.070, 1.3),
		Bitterness: wave(0.030, 2.6),
		Intensity:  wave(0.090, 3.9),
		Texture:    wave(0.020, 5.2),
	}
}

func main() {
	apiURL := flag.String("api", "http://localhost:8700", "installation API base URL")
	frames := flag.Int("frames", 120, "number of frames to send")
	fps := flag.Float64("fps", 10, "frames per second")
	clientID := flag.String("client", "sweep", "X-Client-ID header value")
	dryRun := flag.Bool("dry-run", false, "print frames without posting")
	flag.Parse()

	interval := time.Duration(float64(time.Second) / *fps)
	client := &http.Client{Timeout: 5 * time.Second}
	sent, failed := 0, 0

	for i := 0; i < *frames; i++ {
		v := frameAt(float64(i) * interval.Seconds())

		if *dryRun {
			fmt.Printf("[%d] S=%.1f A=%.1f B=%.1f I=%.1f T=%.1f\n",
				i+1, v.Sweetness, v.Acidity, v.Bitterness, v.Intensity, v.Texture)
			continue
		}

		body, _ := json.Marshal(v)
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/vector", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", *clientID)

		resp, err := client.Do(req)
		if err != nil {
			failed++
			log.Printf("frame %d: %v", i+1, err)
		} else {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				failed++
				log.Printf("frame %d: status %d", i+1, resp.StatusCode)
			} else {
				sent++
			}
		}

		time.Sleep(interval)
	}

	log.Printf("sweep done: %d sent, %d failed", sent, failed)
}
