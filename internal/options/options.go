// Copyright 2018-2019 VMware, Inc. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package options

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// SmokeRunOptions configures one smoke-runner invocation. Every flag
// has an environment fallback so the runner can be driven from a
// container environment without a command line.
type SmokeRunOptions struct {
	Version bool

	BackendURL   string
	AppURL       string
	ScenarioFile string

	// Path to the instrumentation agent artifact mounted into the
	// application. The runner only checks that it exists.
	AgentPath string

	// Optional YAML file with HTTP client settings (timeout, TLS,
	// bearer token) for talking to the backend and application.
	HTTPConfigFile string

	MaxAttempts    int
	PollInterval   time.Duration
	RequestTimeout time.Duration

	HealthAttempts int
	HealthInterval time.Duration

	LogLevel string
}

func NewSmokeRunOptions() *SmokeRunOptions {
	return &SmokeRunOptions{}
}

func (opts *SmokeRunOptions) Parse(fs *pflag.FlagSet, args []string) error {
	fs.BoolVar(&opts.Version, "version", false, "print version info and exit")
	fs.StringVar(&opts.BackendURL, "backend", envOr("SMOKE_BACKEND_URL", "http://localhost:8080"), "base URL of the fake telemetry backend")
	fs.StringVar(&opts.AppURL, "app", envOr("SMOKE_APP_URL", "http://localhost:8081"), "base URL of the instrumented application")
	fs.StringVar(&opts.ScenarioFile, "scenario-file", envOr("SMOKE_SCENARIO_FILE", ""), "required scenario configuration file")
	fs.StringVar(&opts.AgentPath, "agent-path", envOr("SMOKE_AGENT_PATH", ""), "optional path to the instrumentation agent artifact, checked for existence")
	fs.StringVar(&opts.HTTPConfigFile, "http-config", envOr("SMOKE_HTTP_CONFIG", ""), "optional YAML file with HTTP client settings (timeout, TLS, bearer token)")
	fs.IntVar(&opts.MaxAttempts, "max-attempts", 20, "max poll attempts against the backend per scenario")
	fs.DurationVar(&opts.PollInterval, "poll-interval", 100*time.Millisecond, "delay between poll attempts")
	fs.DurationVar(&opts.RequestTimeout, "request-timeout", 10*time.Second, "per-request timeout for backend and application reads")
	fs.IntVar(&opts.HealthAttempts, "health-attempts", 30, "attempts waiting for the backend to become healthy")
	fs.DurationVar(&opts.HealthInterval, "health-interval", time.Second, "delay between backend health checks")
	fs.StringVar(&opts.LogLevel, "log-level", "info", "one of info, debug or trace")

	if err := fs.Parse(args); err != nil {
		return err
	}
	return opts.validate()
}

func (opts *SmokeRunOptions) validate() error {
	if opts.Version {
		return nil
	}
	if opts.ScenarioFile == "" {
		return fmt.Errorf("--scenario-file is required")
	}
	if opts.AgentPath != "" {
		if _, err := os.Stat(opts.AgentPath); err != nil {
			return fmt.Errorf("agent artifact not found at %q: %v", opts.AgentPath, err)
		}
	}
	if opts.HTTPConfigFile != "" {
		if _, err := os.Stat(opts.HTTPConfigFile); err != nil {
			return fmt.Errorf("http configuration not found at %q: %v", opts.HTTPConfigFile, err)
		}
	}
	if opts.MaxAttempts <= 0 {
		return fmt.Errorf("--max-attempts must be positive")
	}
	return nil
}

func Parse() *SmokeRunOptions {
	opts := NewSmokeRunOptions()
	fs := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	if err := opts.Parse(fs, os.Args[1:]); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return opts
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
