package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/telemetryhq/trace-smoke/internal/backend"
	"github.com/telemetryhq/trace-smoke/internal/httputil"
	"github.com/telemetryhq/trace-smoke/internal/options"
	"github.com/telemetryhq/trace-smoke/internal/poller"
	"github.com/telemetryhq/trace-smoke/internal/scenario"
)

var (
	version string
	commit  string
)

func main() {
	opt := options.Parse()

	if opt.Version {
		fmt.Println(fmt.Sprintf("version: %s\ncommit: %s", version, commit))
		os.Exit(0)
	}

	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stdout)
	if level, err := log.ParseLevel(opt.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	if opt.AgentPath != "" {
		log.Infof("using instrumentation agent artifact at %s", opt.AgentPath)
	}

	cfg, err := scenario.FromFile(opt.ScenarioFile)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}

	clientCfg := httputil.ClientConfig{Timeout: opt.RequestTimeout}
	if opt.HTTPConfigFile != "" {
		clientCfg, err = httputil.FromFile(opt.HTTPConfigFile)
		if err != nil {
			log.Error(err.Error())
			os.Exit(1)
		}
		if clientCfg.Timeout <= 0 {
			clientCfg.Timeout = opt.RequestTimeout
		}
	}

	client, err := httputil.NewClient(clientCfg)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}

	sink := backend.NewClient(opt.BackendURL, client)
	p := poller.New(sink, opt.MaxAttempts, opt.PollInterval)
	runner := scenario.NewRunner(opt.AppURL, client, sink, p)

	ctx := context.Background()
	if !runner.WaitForBackend(ctx, opt.HealthAttempts, opt.HealthInterval) {
		log.Errorf("backend at %s never became healthy", opt.BackendURL)
		os.Exit(1)
	}

	reports, passed := runner.RunAll(ctx, cfg)
	log.Infof("ran %d scenario(s)", len(reports))
	poller.LogCounters(metrics.DefaultRegistry)
	if !passed {
		os.Exit(1)
	}
}
