package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL     = flag.String("api-url", "http://localhost:3002", "cinescrape API base URL")
	listingCSV = flag.String("listing", "", "Comma-separated catalog page URLs to benchmark against POST /all")
	detailsCSV = flag.String("details", "", "Comma-separated movie detail URLs to benchmark against POST /movie_details")
	runs       = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output     = flag.String("output", "benchmark-results.json", "JSON output file path")
)

type target struct {
	Endpoint string
	URL      string
}

// --- Benchmark result types ---

type runResult struct {
	Run          int    `json:"run"`
	TotalMs      int64  `json:"total_ms"`
	StatusCode   int    `json:"status_code"`
	Items        int    `json:"items,omitempty"`
	Fields       int    `json:"fields,omitempty"`
	HasStreaming bool   `json:"has_streaming,omitempty"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

type urlAverages struct {
	TotalMs float64 `json:"total_ms"`
	Items   float64 `json:"items"`
	Fields  float64 `json:"fields"`
}

type urlResult struct {
	Endpoint string       `json:"endpoint"`
	URL      string       `json:"url"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()

	targets := append(splitTargets("/all", *listingCSV), splitTargets("/movie_details", *detailsCSV)...)
	if len(targets) == 0 {
		fmt.Fprintln(os.Stderr, "Error: pass at least one URL with -listing or -details")
		flag.Usage()
		os.Exit(2)
	}

	fmt.Println("=== cinescrape Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure cinescrape is running (e.g. make run)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerURL: *runs,
	}

	client := &http.Client{Timeout: 180 * time.Second}
	for _, t := range targets {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Endpoint, t.URL)
		ur := urlResult{Endpoint: t.Endpoint, URL: t.URL}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(client, t, i)
			if rr.Success {
				fmt.Printf("OK  %dms\n", rr.TotalMs)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func splitTargets(endpoint, csv string) []target {
	var out []target
	for _, u := range strings.Split(csv, ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, target{Endpoint: endpoint, URL: u})
		}
	}
	return out
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkURL(client *http.Client, t target, run int) runResult {
	rr := runResult{Run: run}

	bodyBytes, err := json.Marshal(map[string]string{"url": t.URL})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+t.Endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	rr.TotalMs = time.Since(start).Milliseconds()
	rr.StatusCode = resp.StatusCode
	if err != nil {
		rr.Error = fmt.Sprintf("read error: %v", err)
		return rr
	}

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.Unmarshal(body, &e)
		rr.Error = fmt.Sprintf("HTTP %d %s %s", resp.StatusCode, e.Code, e.Error)
		return rr
	}

	if t.Endpoint == "/all" {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			rr.Error = fmt.Sprintf("decode error: %v", err)
			return rr
		}
		rr.Items = len(items)
	} else {
		var info map[string]json.RawMessage
		if err := json.Unmarshal(body, &info); err != nil {
			rr.Error = fmt.Sprintf("decode error: %v", err)
			return rr
		}
		_, rr.HasStreaming = info["streamingUrl"]
		rr.Fields = len(info)
	}

	rr.Success = true
	return rr
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		avg.Items += float64(r.Items)
		avg.Fields += float64(r.Fields)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.TotalMs /= n
	avg.Items /= n
	avg.Fields /= n
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Endpoint\tURL\tAvg Latency\tItems/Fields\tStreaming\n")
	fmt.Fprintf(w, "────────\t───\t───────────\t────────────\t─────────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\t%s\tFAILED\t-\t-\n", r.Endpoint, truncateURL(r.URL, 40))
			continue
		}

		count := r.Averages.Items
		streaming := "-"
		if r.Endpoint == "/movie_details" {
			count = r.Averages.Fields
			streaming = fmt.Sprintf("%d/%d", streamingHits(r.Runs), len(r.Runs))
		}

		fmt.Fprintf(w, "%s\t%s\t%dms\t%.1f\t%s\n",
			r.Endpoint,
			truncateURL(r.URL, 40),
			int64(r.Averages.TotalMs),
			count,
			streaming,
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func streamingHits(runs []runResult) int {
	n := 0
	for _, r := range runs {
		if r.HasStreaming {
			n++
		}
	}
	return n
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
