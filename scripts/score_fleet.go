// score_fleet.go: standalone script to rank a robot fleet for a task via the Suitability API.
//
// The fleet file is CSV with a header row:
//
//	id,load_history,distance_to_task,total_distance,capabilities
//	r1,2,4.5,12,lift;carry
//
// Usage:
//
//	go run scripts/score_fleet.go -fleet fleet.csv -require lift -api http://localhost:8700
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
)

type candidate struct {
	ID             string   `json:"id"`
	LoadHistory    float64  `json:"load_history"`
	DistanceToTask float64  `json:"distance_to_task"`
	TotalDistance  float64  `json:"total_distance"`
	Capabilities   []string `json:"capabilities,omitempty"`
}

type scoreRequest struct {
	TaskID               string      `json:"task_id,omitempty"`
	RequiredCapabilities []string    `json:"required_capabilities,omitempty"`
	Candidates           []candidate `json:"candidates"`
}

type scoreResponse struct {
	Revision   int `json:"revision"`
	Candidates []struct {
		CandidateID string  `json:"candidate_id"`
		Value       float64 `json:"value"`
		Status      string  `json:"status"`
		Capability  struct {
			Reason string `json:"reason"`
		} `json:"capability"`
	} `json:"candidates"`
}

func main() {
	fleetPath := flag.String("fleet", "fleet.csv", "path to fleet CSV file")
	apiURL := flag.String("api", "http://localhost:8700", "Suitability API base URL")
	taskID := flag.String("task", "", "task ID recorded with each evaluation")
	require := flag.String("require", "", "comma-separated required capabilities")
	dryRun := flag.Bool("dry-run", false, "print candidates without posting")
	flag.Parse()

	f, err := os.Open(*fleetPath)
	if err != nil {
		log.Fatalf("open fleet: %v", err)
	}
	defer f.Close()

	candidates, err := readFleet(f)
	if err != nil {
		log.Fatalf("read fleet: %v", err)
	}
	log.Printf("parsed %d candidates from %s", len(candidates), *fleetPath)

	if *dryRun {
		for i, c := range candidates {
			fmt.Printf("[%d] %s (load=%.2f, distance=%.2f, travelled=%.2f, capabilities=%s)\n",
				i+1, c.ID, c.LoadHistory, c.DistanceToTask, c.TotalDistance, strings.Join(c.Capabilities, ","))
		}
		return
	}

	req := scoreRequest{TaskID: *taskID, Candidates: candidates}
	if *require != "" {
		req.RequiredCapabilities = strings.Split(*require, ",")
	}
	body, _ := json.Marshal(req)

	resp, err := http.Post(*apiURL+"/api/v1/candidates/score", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("score: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		log.Fatalf("score: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("decode response: %v", err)
	}
	log.Printf("ranked with rule base revision %d", out.Revision)
	for i, c := range out.Candidates {
		fmt.Printf("%2d. %-16s %6.3f  %-9s %s\n", i+1, c.CandidateID, c.Value, c.Status, c.Capability.Reason)
	}
}

func readFleet(r io.Reader) ([]candidate, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no candidates")
	}

	var out []candidate
	for i, row := range rows[1:] {
		if len(row) < 4 {
			return nil, fmt.Errorf("line %d: want at least 4 columns, got %d", i+2, len(row))
		}
		c := candidate{ID: row[0]}
		for j, dst := range []*float64{&c.LoadHistory, &c.DistanceToTask, &c.TotalDistance} {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[j+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", i+2, j+2, err)
			}
			*dst = v
		}
		if len(row) > 4 && row[4] != "" {
			c.Capabilities = strings.Split(row[4], ";")
		}
		out = append(out, c)
	}
	return out, nil
}
