package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	idempotencyHeader = "Idempotency-Key"
	apiPrefix         = "/api/v1"
	defaultPrice      = int64(1000)
	defaultQty        = int32(1)
)

type loadMode string

const (
	modeBrowse   loadMode = "browse"
	modeCheckout loadMode = "checkout"
)

type config struct {
	baseURL     string
	total       int
	concurrency int
	timeout     time.Duration
	mode        loadMode
	priceMinor  int64
	qty         int32
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type callReport struct {
	Calls     int64            `json:"calls"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Statuses  map[string]int64 `json:"statuses"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

type report struct {
	StartedAt         time.Time             `json:"started_at"`
	DurationSeconds   float64               `json:"duration_seconds"`
	TotalScenarios    int64                 `json:"total_scenarios"`
	SuccessScenarios  int64                 `json:"success_scenarios"`
	FailedScenarios   int64                 `json:"failed_scenarios"`
	ErrorRate         float64               `json:"error_rate"`
	RPS               float64               `json:"rps"`
	ScenarioLatencyMs latencySummary        `json:"scenario_latency_ms"`
	Calls             map[string]callReport `json:"calls"`
}

type callStats struct {
	calls     int64
	success   int64
	failed    int64
	statuses  map[string]int64
	latencies []float64
}

type collector struct {
	mu    sync.Mutex
	calls map[string]*callStats
}

func newCollector() *collector {
	return &collector{calls: make(map[string]*callStats)}
}

func (c *collector) record(name string, latency time.Duration, status int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.calls[name]
	if !ok {
		stats = &callStats{statuses: make(map[string]int64)}
		c.calls[name] = stats
	}

	stats.calls++
	if status >= 200 && status < 300 {
		stats.success++
	} else {
		stats.failed++
	}
	stats.statuses[strconv.Itoa(status)]++
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		Calls:           make(map[string]callReport, len(c.calls)),
	}

	if scenario := c.calls["scenario"]; scenario != nil {
		result.TotalScenarios = scenario.calls
		result.SuccessScenarios = scenario.success
		result.FailedScenarios = scenario.failed
		result.ErrorRate = ratio(scenario.failed, scenario.calls)
		result.ScenarioLatencyMs = buildLatencySummary(scenario.latencies)
	}
	if duration > 0 {
		result.RPS = float64(result.TotalScenarios) / duration.Seconds()
	}

	for name, stats := range c.calls {
		statuses := make(map[string]int64, len(stats.statuses))
		for status, count := range stats.statuses {
			statuses[status] = count
		}
		result.Calls[name] = callReport{
			Calls:     stats.calls,
			Success:   stats.success,
			Failed:    stats.failed,
			ErrorRate: ratio(stats.failed, stats.calls),
			Statuses:  statuses,
			LatencyMs: buildLatencySummary(stats.latencies),
		}
	}

	return result
}

func parseConfig() (config, error) {
	var cfg config
	var modeValue string
	var qty int

	flag.StringVar(&cfg.baseURL, "base-url", "http://localhost:8080", "shop API base URL")
	flag.IntVar(&cfg.total, "total", 400, "total scenarios to execute")
	flag.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	flag.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.StringVar(&modeValue, "mode", string(modeCheckout), "load mode: browse | checkout")
	flag.Int64Var(&cfg.priceMinor, "price-minor", defaultPrice, "seeded product price in minor units")
	flag.IntVar(&qty, "qty", int(defaultQty), "cart item quantity per scenario")
	flag.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	flag.Parse()

	mode, err := parseMode(modeValue)
	if err != nil {
		return cfg, err
	}
	cfg.mode = mode

	if qty <= 0 || qty > math.MaxInt32 {
		return cfg, errors.New("qty must be a positive int32")
	}
	cfg.qty = int32(qty)

	if strings.TrimSpace(cfg.baseURL) == "" {
		return cfg, errors.New("base-url is required")
	}
	if cfg.total <= 0 {
		return cfg, errors.New("total must be > 0")
	}
	if cfg.concurrency <= 0 {
		return cfg, errors.New("concurrency must be > 0")
	}
	if cfg.timeout <= 0 {
		return cfg, errors.New("timeout must be > 0")
	}
	if cfg.priceMinor <= 0 {
		return cfg, errors.New("price-minor must be > 0")
	}

	cfg.baseURL = strings.TrimRight(cfg.baseURL, "/")
	return cfg, nil
}

func parseMode(value string) (loadMode, error) {
	switch loadMode(strings.TrimSpace(value)) {
	case modeBrowse:
		return modeBrowse, nil
	case modeCheckout:
		return modeCheckout, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

// apiClient — минимальный HTTP клиент поверх магазинного API.
type apiClient struct {
	base string
	http *http.Client
	col  *collector
}

type idResponse struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount_minor"`
}

func (c *apiClient) call(name, method, path string, body any, idempotencyKey string) (int, idResponse, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, idResponse{}, fmt.Errorf("encode %s request: %w", name, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.base+apiPrefix+path, reader)
	if err != nil {
		return 0, idResponse{}, fmt.Errorf("build %s request: %w", name, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set(idempotencyHeader, idempotencyKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.col.record(name, time.Since(start), 0)
		return 0, idResponse{}, fmt.Errorf("%s request failed: %w", name, err)
	}
	defer resp.Body.Close()

	c.col.record(name, time.Since(start), resp.StatusCode)

	var decoded idResponse
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, decoded, fmt.Errorf("%s returned status %d: %s", name, resp.StatusCode, truncate(raw, 200))
	}
	return resp.StatusCode, decoded, nil
}

func truncate(raw []byte, limit int) string {
	s := string(raw)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

// seedProduct создаёт товар, который участвует во всех сценариях прогона.
func seedProduct(client *apiClient, cfg config, runID string) (string, error) {
	_, product, err := client.call("CreateProduct", http.MethodPost, "/products/", map[string]any{
		"name":        fmt.Sprintf("load-product-%s", runID),
		"brand":       "LoadTest",
		"price_minor": cfg.priceMinor,
		"stock":       int32(math.MaxInt32),
	}, "")
	if err != nil {
		return "", err
	}
	if product.ID == "" {
		return "", errors.New("seed product response returned empty id")
	}
	return product.ID, nil
}

func runScenario(client *apiClient, cfg config, productID, runID string, index int) error {
	scenarioStart := time.Now()
	scenarioStatus := http.StatusOK
	defer func() {
		client.col.record("scenario", time.Since(scenarioStart), scenarioStatus)
	}()

	_, user, err := client.call("CreateUser", http.MethodPost, "/users/", map[string]any{
		"email":      fmt.Sprintf("load-%s-%d@example.com", runID, index),
		"first_name": "Load",
		"last_name":  fmt.Sprintf("Test-%d", index),
		"password":   uuid.NewString(),
	}, "")
	if err != nil {
		scenarioStatus = http.StatusInternalServerError
		return err
	}
	if user.ID == "" {
		scenarioStatus = http.StatusInternalServerError
		return errors.New("create user response returned empty id")
	}

	if cfg.mode == modeBrowse {
		if _, _, err := client.call("ListProducts", http.MethodGet, "/products/", nil, ""); err != nil {
			scenarioStatus = http.StatusInternalServerError
			return err
		}
		return nil
	}

	if _, _, err := client.call("AddCartItem", http.MethodPost, "/users/"+user.ID+"/cart/items", map[string]any{
		"product_id": productID,
		"qty":        cfg.qty,
	}, ""); err != nil {
		scenarioStatus = http.StatusInternalServerError
		return err
	}

	orderKey := fmt.Sprintf("lt-order-%s-%d", runID, index)
	_, order, err := client.call("PlaceOrder", http.MethodPost, "/orders/", map[string]any{
		"user_id": user.ID,
	}, orderKey)
	if err != nil {
		scenarioStatus = http.StatusInternalServerError
		return err
	}
	if order.ID == "" {
		scenarioStatus = http.StatusInternalServerError
		return errors.New("place order response returned empty id")
	}

	want := cfg.priceMinor * int64(cfg.qty)
	if order.AmountMinor != want {
		scenarioStatus = http.StatusInternalServerError
		return fmt.Errorf("unexpected order amount: got=%d want=%d", order.AmountMinor, want)
	}

	return nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	startedAt := time.Now()
	runID := fmt.Sprintf("%d-%d", startedAt.UnixNano(), os.Getpid())
	col := newCollector()
	client := &apiClient{
		base: cfg.baseURL,
		http: &http.Client{Timeout: cfg.timeout},
		col:  col,
	}

	productID := ""
	if cfg.mode == modeCheckout {
		productID, err = seedProduct(client, cfg, runID)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to seed product: %v\n", err)
			os.Exit(1)
		}
	}

	jobs := make(chan int, cfg.concurrency*2)
	var failures int64
	var wg sync.WaitGroup

	for workerID := 0; workerID < cfg.concurrency; workerID++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				if err := runScenario(client, cfg, productID, runID, index); err != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		}()
	}

	for i := 0; i < cfg.total; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	duration := time.Since(startedAt)
	result := col.buildReport(startedAt, duration)
	if result.FailedScenarios == 0 && failures > 0 {
		result.FailedScenarios = failures
		result.ErrorRate = ratio(result.FailedScenarios, result.TotalScenarios)
	}

	printReport(result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedScenarios > 0 {
		os.Exit(1)
	}
}

func writeJSONReport(path string, result report) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}

	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(result report, cfg config) {
	fmt.Println("Load test summary")
	fmt.Printf("mode=%s total=%d success=%d failed=%d error_rate=%.4f\n",
		cfg.mode,
		result.TotalScenarios,
		result.SuccessScenarios,
		result.FailedScenarios,
		result.ErrorRate,
	)
	fmt.Printf("duration=%.2fs rps=%.2f\n", result.DurationSeconds, result.RPS)
	fmt.Printf("scenario latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.ScenarioLatencyMs.Min,
		result.ScenarioLatencyMs.Avg,
		result.ScenarioLatencyMs.P50,
		result.ScenarioLatencyMs.P95,
		result.ScenarioLatencyMs.P99,
		result.ScenarioLatencyMs.Max,
	)

	names := make([]string, 0, len(result.Calls))
	for name := range result.Calls {
		if name == "scenario" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		stats := result.Calls[name]
		fmt.Printf("%s: calls=%d success=%d failed=%d error_rate=%.4f p95=%.2fms\n",
			name,
			stats.Calls,
			stats.Success,
			stats.Failed,
			stats.ErrorRate,
			stats.LatencyMs.P95,
		)
	}
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
