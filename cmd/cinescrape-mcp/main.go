package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/cinescrape/models"
)

// fixedDetailKeys are printed first, in this order.
var fixedDetailKeys = []string{"description", "watchUrl", "streamingUrl", "largeThumbnail"}

func main() {
	apiURL := os.Getenv("CINESCRAPE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3002"
	}
	apiURL = strings.TrimRight(apiURL, "/")

	s := server.NewMCPServer(
		"cinescrape",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	listTool := mcp.NewTool("list_movies",
		mcp.WithDescription("List the movies on a catalog page of the movie site. Returns each movie's page URL, title and thumbnail."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute URL of a catalog or listing page"),
		),
	)
	s.AddTool(listTool, handleListMovies(apiURL))

	detailsTool := mcp.NewTool("movie_details",
		mcp.WithDescription("Scrape a movie detail page: description, cast, genres and other labelled fields, plus the direct video URL from its watch page when one can be found."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute URL of a movie detail page"),
		),
	)
	s.AddTool(detailsTool, handleMovieDetails(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends {"url": pageURL} to path and returns the body of a 200
// response. Any other status is turned into an error carrying the API's
// error message.
func apiPost(ctx context.Context, client *http.Client, apiURL, path, pageURL string) ([]byte, error) {
	body, err := json.Marshal(models.PageRequest{URL: pageURL})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr models.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Code != "" {
				return nil, fmt.Errorf("[%s] %s", apiErr.Code, apiErr.Error)
			}
			return nil, fmt.Errorf("%s (HTTP %d)", apiErr.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("API returned HTTP %d", resp.StatusCode)
	}
	return respBody, nil
}

func handleListMovies(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, "/all", url)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var items []models.ListingItem
		if err := json.Unmarshal(respBody, &items); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		return mcp.NewToolResultText(formatListing(url, items)), nil
	}
}

func handleMovieDetails(apiURL string) server.ToolHandlerFunc {
	// Detail scrapes visit two pages and wait for the player.
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, "/movie_details", url)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var info map[string]any
		if err := json.Unmarshal(respBody, &info); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		return mcp.NewToolResultText(formatDetails(url, info)), nil
	}
}

func formatListing(pageURL string, items []models.ListingItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Movies on %s\n\n", pageURL)
	if len(items) == 0 {
		sb.WriteString("No movies found on this page.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Found %d movies:\n\n", len(items))
	for i, it := range items {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, it.Title, it.URL)
		if it.Img != "" {
			fmt.Fprintf(&sb, "   thumbnail: %s\n", it.Img)
		}
	}
	return sb.String()
}

func formatDetails(pageURL string, info map[string]any) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Movie details: %s\n\n", pageURL)

	for _, k := range fixedDetailKeys {
		if v, ok := info[k]; ok {
			fmt.Fprintf(&sb, "**%s:** %s\n", k, formatValue(v))
		}
	}
	if _, ok := info["streamingUrl"]; !ok {
		sb.WriteString("**streamingUrl:** not found\n")
	}

	var labels []string
	for k := range info {
		if !isFixedDetailKey(k) {
			labels = append(labels, k)
		}
	}
	sort.Strings(labels)
	if len(labels) > 0 {
		sb.WriteString("\n")
	}
	for _, k := range labels {
		fmt.Fprintf(&sb, "- %s: %s\n", k, formatValue(info[k]))
	}
	return sb.String()
}

func isFixedDetailKey(k string) bool {
	for _, f := range fixedDetailKeys {
		if k == f {
			return true
		}
	}
	return false
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
