// Command simulate drives a running flappyrank instance with synthetic score
// submissions and then fetches the leaderboard to verify the ranking settled.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Default configuration constants.
const (
	defaultNumEvents  = 10000
	defaultNumUsers   = 500
	defaultMaxScore   = 1000
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
	settleDelay       = 2 * time.Second
)

type submission struct {
	Score     int    `json:"score"`
	MongoID   string `json:"mongo_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserID    string `json:"user_id"`
}

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:10000", "Base URL of the service")
		numEvents = flag.Int("events", defaultNumEvents, "Number of score submissions to send")
		numUsers  = flag.Int("users", defaultNumUsers, "Number of distinct users to submit for")
		topN      = flag.Int("top", 10, "Number of top entries to fetch from leaderboard")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	client := &http.Client{Timeout: *timeout}

	fmt.Printf("submitting %d scores for %d users via %d workers to %s\n",
		*numEvents, *numUsers, *workers, *baseURL)

	start := time.Now()
	accepted, failed := submitScores(ctx, client, *baseURL, *numEvents, *numUsers, *workers)
	fmt.Printf("submitted in %s: accepted=%d failed=%d\n", time.Since(start).Round(time.Millisecond), accepted, failed)

	// Persistence is async; give the workers a moment to drain the queue.
	time.Sleep(settleDelay)

	if err := fetchLeaderboard(ctx, client, *baseURL, *topN); err != nil {
		os.Stderr.WriteString("leaderboard fetch failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// submitScores POSTs random score submissions concurrently and returns the
// accepted and failed counts.
func submitScores(ctx context.Context, client *http.Client, baseURL string, numEvents, numUsers, workers int) (int64, int64) {
	var accepted, failed int64
	jobs := make(chan submission, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				if err := postScore(ctx, client, baseURL, sub); err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				atomic.AddInt64(&accepted, 1)
			}
		}()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < numEvents; i++ {
		user := rng.Intn(numUsers)
		jobs <- submission{
			Score:     rng.Intn(defaultMaxScore),
			MongoID:   uuid.NewString(),
			FirstName: fmt.Sprintf("Player%d", user),
			UserID:    fmt.Sprintf("user-%d", user),
		}
	}
	close(jobs)
	wg.Wait()

	return accepted, failed
}

func postScore(ctx context.Context, client *http.Client, baseURL string, sub submission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/scores", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// fetchLeaderboard prints the current top-N so the run can be eyeballed.
func fetchLeaderboard(ctx context.Context, client *http.Client, baseURL string, topN int) error {
	url := fmt.Sprintf("%s/leaderboard?limit=%d", baseURL, topN)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var board struct {
		Entries []struct {
			Rank      int    `json:"rank"`
			UserID    string `json:"user_id"`
			FirstName string `json:"first_name"`
			Score     int    `json:"score"`
		} `json:"entries"`
		TotalUsers int `json:"total_users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return err
	}

	fmt.Printf("leaderboard (%d users total):\n", board.TotalUsers)
	for _, e := range board.Entries {
		fmt.Printf("  %d. %s (%s) - %d\n", e.Rank, e.FirstName, e.UserID, e.Score)
	}
	return nil
}
