package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
)

type SimConfig struct {
	APIBaseURL  string
	Duration    time.Duration
	Workers     int
	BookRatio   float64
	ListRatio   float64
	ExportRatio float64
	ClearRatio  float64
	PastRatio   float64 // share of bookings deliberately placed in the past
	HorizonDays int     // bookings land within this many days from now
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeConflict
	outcomeRejected
	outcomeLimited
	outcomeError
)

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Rejected  int64
	Limited   int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, o outcome) {
	atomic.AddInt64(&om.Total, 1)
	switch o {
	case outcomeSuccess:
		atomic.AddInt64(&om.Success, 1)
	case outcomeConflict:
		atomic.AddInt64(&om.Conflict, 1)
	case outcomeRejected:
		atomic.AddInt64(&om.Rejected, 1)
	case outcomeLimited:
		atomic.AddInt64(&om.Limited, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]

	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Book   OperationMetrics
	List   OperationMetrics
	Export OperationMetrics
	Clear  OperationMetrics
}

type Simulator struct {
	config   SimConfig
	services []string
	metrics  Metrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: duration=%s workers=%d book=%.2f list=%.2f export=%.2f clear=%.2f",
		cfg.Duration, cfg.Workers, cfg.BookRatio, cfg.ListRatio, cfg.ExportRatio, cfg.ClearRatio)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	services, err := fetchServices(ctx, cfg.APIBaseURL)
	if err != nil {
		log.Fatalf("load services: %v", err)
	}
	log.Printf("loaded %d services", len(services))

	sim := &Simulator{config: cfg, services: services}
	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	_ = godotenv.Load()

	cfg := SimConfig{
		APIBaseURL:  strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:    getDuration("SIM_DURATION", 30*time.Second),
		Workers:     getInt("SIM_WORKERS", 10),
		BookRatio:   getFloat("SIM_BOOK_RATIO", 0.6),
		ListRatio:   getFloat("SIM_LIST_RATIO", 0.3),
		ExportRatio: getFloat("SIM_EXPORT_RATIO", 0.08),
		ClearRatio:  getFloat("SIM_CLEAR_RATIO", 0.02),
		PastRatio:   getFloat("SIM_PAST_RATIO", 0.1),
		HorizonDays: getInt("SIM_HORIZON_DAYS", 2),
	}

	total := cfg.BookRatio + cfg.ListRatio + cfg.ExportRatio + cfg.ClearRatio
	if total > 0 {
		cfg.BookRatio /= total
		cfg.ListRatio /= total
		cfg.ExportRatio /= total
		cfg.ClearRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.HorizonDays <= 0 {
		return fmt.Errorf("SIM_HORIZON_DAYS must be > 0")
	}
	return nil
}

func fetchServices(ctx context.Context, baseURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/services", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Services []string `json:"services"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	if len(body.Services) == 0 {
		return nil, fmt.Errorf("no services offered")
	}
	return body.Services, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

// worker plays one booker; its cookie jar keeps it on a single session.
func (s *Simulator) worker(ctx context.Context, workerID int) {
	faker := gofakeit.New(time.Now().UnixNano() + int64(workerID))

	jar, err := cookiejar.New(nil)
	if err != nil {
		log.Printf("worker %d: cookie jar: %v", workerID, err)
		return
	}
	client := &http.Client{Timeout: 10 * time.Second, Jar: jar}

	name := faker.Name()
	email := ""
	if faker.Bool() {
		email = faker.Email()
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := faker.Float64()
			switch {
			case r < s.config.BookRatio:
				s.doBook(ctx, client, faker, name, email)
			case r < s.config.BookRatio+s.config.ListRatio:
				s.doRead(ctx, client, "/appointments", &s.metrics.List)
			case r < s.config.BookRatio+s.config.ListRatio+s.config.ExportRatio:
				s.doRead(ctx, client, "/appointments/export", &s.metrics.Export)
			default:
				s.doClear(ctx, client)
			}
		}
	}
}

func (s *Simulator) doBook(ctx context.Context, client *http.Client, faker *gofakeit.Faker, name, email string) {
	now := time.Now()
	var at time.Time
	if faker.Float64() < s.config.PastRatio {
		at = now.Add(-time.Duration(faker.Number(1, 48)) * time.Hour)
	} else {
		// quarter hour grid so sessions collide on slots now and then
		quarters := faker.Number(1, s.config.HorizonDays*24*4)
		at = now.Truncate(15 * time.Minute).Add(time.Duration(quarters) * 15 * time.Minute)
	}

	body, _ := json.Marshal(map[string]string{
		"name":    name,
		"email":   email,
		"service": s.services[faker.Number(0, len(s.services)-1)],
		"date":    at.Format("2006-01-02"),
		"time":    at.Format("15:04"),
	})

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/appointments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)

	o := outcomeError
	if err == nil {
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		switch resp.StatusCode {
		case http.StatusCreated:
			o = outcomeSuccess
		case http.StatusConflict:
			o = outcomeConflict
		case http.StatusUnprocessableEntity:
			o = outcomeRejected
		case http.StatusTooManyRequests:
			o = outcomeLimited
		}
	} else if ctx.Err() != nil {
		return
	}

	s.metrics.Book.Record(latency, o)
}

func (s *Simulator) doRead(ctx context.Context, client *http.Client, path string, om *OperationMetrics) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+path, nil)

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)

	o := outcomeError
	if err == nil {
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode == http.StatusOK {
			o = outcomeSuccess
		}
	} else if ctx.Err() != nil {
		return
	}

	om.Record(latency, o)
}

func (s *Simulator) doClear(ctx context.Context, client *http.Client) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodDelete, s.config.APIBaseURL+"/appointments", nil)

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)

	o := outcomeError
	if err == nil {
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode == http.StatusOK {
			o = outcomeSuccess
		}
	} else if ctx.Err() != nil {
		return
	}

	s.metrics.Clear.Record(latency, o)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Book", &s.metrics.Book)
	printOperationReport("List", &s.metrics.List)
	printOperationReport("Export", &s.metrics.Export)
	printOperationReport("Clear", &s.metrics.Clear)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	printShare("Success", atomic.LoadInt64(&om.Success), total, true)
	printShare("Slot taken", atomic.LoadInt64(&om.Conflict), total, false)
	printShare("Past time", atomic.LoadInt64(&om.Rejected), total, false)
	printShare("Rate limited", atomic.LoadInt64(&om.Limited), total, false)
	printShare("Errors", atomic.LoadInt64(&om.Error), total, false)
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func printShare(label string, n, total int64, always bool) {
	if n == 0 && !always {
		return
	}
	fmt.Printf("  %s: %d (%.1f%%)\n", label, n, float64(n)/float64(total)*100)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
