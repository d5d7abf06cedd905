// Package main provides a standalone health check command for Pastaboard.
// It is meant for container health checks and monitoring scripts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pastaboard/pastaboard/internal/infrastructure/config"
	"github.com/pastaboard/pastaboard/pkg/healthcheck"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

// Options holds command-line configuration
type Options struct {
	URL            string
	ConfigPath     string
	Timeout        time.Duration
	Verbose        bool
	OutputFormat   string
	ExpectedStatus string
	RetryCount     int
	RetryDelay     time.Duration
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	opts, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(out, "%v\n", err)
		return exitCodeError
	}

	if opts.URL == "" {
		opts.URL, err = urlFromConfig(opts.ConfigPath)
		if err != nil {
			fmt.Fprintf(out, "Failed to load configuration: %v\n", err)
			return exitCodeError
		}
	}

	return runRemoteHealthCheck(opts, out)
}

// parseFlags parses command-line flags
func parseFlags(args []string) (Options, error) {
	opts := Options{}

	fs := flag.NewFlagSet("health-check", flag.ContinueOnError)
	fs.StringVar(&opts.URL, "url", os.Getenv("HEALTH_CHECK_URL"), "Health check endpoint URL (default: derived from the config)")
	fs.StringVar(&opts.ConfigPath, "config", "", "Configuration file path")
	fs.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "Request timeout")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Verbose output")
	fs.StringVar(&opts.OutputFormat, "format", "text", "Output format: text, json, compact")
	fs.StringVar(&opts.ExpectedStatus, "expect", "healthy", "Expected status: healthy, degraded")
	fs.IntVar(&opts.RetryCount, "retry", 0, "Number of retries on failure")
	fs.DurationVar(&opts.RetryDelay, "retry-delay", time.Second, "Delay between retries")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

// urlFromConfig points at the health endpoint of the locally configured server
func urlFromConfig(path string) (string, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return "", err
	}

	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d/health", host, cfg.Server.Port), nil
}

// runRemoteHealthCheck performs a remote health check via HTTP
func runRemoteHealthCheck(opts Options, out io.Writer) int {
	client := &http.Client{Timeout: opts.Timeout}

	var lastError error
	for attempt := 0; attempt <= opts.RetryCount; attempt++ {
		if attempt > 0 {
			if opts.Verbose {
				fmt.Fprintf(out, "Retrying in %v... (attempt %d/%d)\n", opts.RetryDelay, attempt, opts.RetryCount)
			}
			time.Sleep(opts.RetryDelay)
		}

		response, err := fetch(client, opts.URL)
		if err != nil {
			lastError = err
			if opts.Verbose {
				fmt.Fprintf(out, "Request failed: %v\n", err)
			}
			continue
		}

		return outputResult(response, opts, out)
	}

	fmt.Fprintf(out, "Health check failed after %d attempts: %v\n", opts.RetryCount+1, lastError)
	return exitCodeError
}

// healthResponse mirrors healthcheck.Response on the wire
type healthResponse struct {
	Status        healthcheck.Status `json:"status"`
	Version       string             `json:"version"`
	Timestamp     time.Time          `json:"timestamp"`
	TotalDuration float64            `json:"total_duration_ms"`
	Checks        []struct {
		Name     string             `json:"name"`
		Status   healthcheck.Status `json:"status"`
		Message  string             `json:"message"`
		Duration float64            `json:"duration_ms"`
	} `json:"checks"`
}

func fetch(client *http.Client, url string) (*healthResponse, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var response healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	return &response, nil
}

// outputResult prints the response and maps its status to an exit code
func outputResult(r *healthResponse, opts Options, out io.Writer) int {
	switch opts.OutputFormat {
	case "json":
		data, _ := json.MarshalIndent(r, "", "  ")
		fmt.Fprintln(out, string(data))
	case "compact":
		data, _ := json.Marshal(r)
		fmt.Fprintln(out, string(data))
	default:
		fmt.Fprintf(out, "Status: %s\n", r.Status)
		fmt.Fprintf(out, "Version: %s\n", r.Version)
		fmt.Fprintf(out, "Duration: %.0fms\n", r.TotalDuration)
		if opts.Verbose && len(r.Checks) > 0 {
			fmt.Fprintln(out, "\nChecks:")
			for _, check := range r.Checks {
				fmt.Fprintf(out, "  %s: %s", check.Name, check.Status)
				if check.Message != "" {
					fmt.Fprintf(out, " (%s)", check.Message)
				}
				fmt.Fprintf(out, " [%.0fms]\n", check.Duration)
			}
		}
	}

	switch {
	case r.Status == healthcheck.Status(opts.ExpectedStatus):
		return exitCodeSuccess
	case r.Status == healthcheck.StatusHealthy:
		return exitCodeSuccess
	default:
		return exitCodeFailure
	}
}
