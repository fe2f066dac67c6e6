package scenario

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/telemetryhq/trace-smoke/internal/backend"
	"github.com/telemetryhq/trace-smoke/internal/poller"
	"github.com/telemetryhq/trace-smoke/internal/util"
	"github.com/telemetryhq/trace-smoke/internal/verify"
)

// Runner drives scenarios against an instrumented application and
// verifies the trace data it exports to the backend. The freshness
// threshold is captured at construction time, before any triggering
// request goes out, so trace ids minted by this run always decode
// strictly later.
type Runner struct {
	appURL    string
	appClient *http.Client
	sink      *backend.Client
	poller    *poller.Poller

	startEpochSecs uint32
}

func NewRunner(appURL string, appClient *http.Client, sink *backend.Client, p *poller.Poller) *Runner {
	return &Runner{
		appURL:         strings.TrimSuffix(appURL, "/"),
		appClient:      appClient,
		sink:           sink,
		poller:         p,
		startEpochSecs: uint32(time.Now().Unix()),
	}
}

// WaitForBackend blocks until the backend answers its health endpoint,
// retrying on the given cadence.
func (r *Runner) WaitForBackend(ctx context.Context, attempts int, interval time.Duration) bool {
	return util.RetryUntil(func() bool {
		return r.sink.Healthy(ctx)
	}, interval, attempts, ctx.Done())
}

// Run executes one scenario: trigger the application, check the
// response, poll the backend for exported spans and evaluate the
// scenario's expectations over them. The backend is cleared afterwards
// regardless of outcome so scenarios don't see each other's traces.
func (r *Runner) Run(ctx context.Context, sc *Scenario) *verify.Report {
	report := verify.NewReport(sc.Name)
	defer func() {
		if err := r.sink.ClearRequests(ctx); err != nil {
			log.Warnf("unable to clear backend after scenario %q: %v", sc.Name, err)
		}
	}()

	log.Infof("running scenario %q: GET %s", sc.Name, sc.Trigger.Path)

	status, body, err := r.trigger(ctx, sc.Trigger.Path)
	if err != nil {
		report.Addf("trigger request", "%v", err)
		return report
	}
	if status < 200 || status >= 300 {
		report.Addf("trigger status", "expected a success status but got %d", status)
	}
	if body != sc.Trigger.ExpectBody {
		report.Addf("trigger body", "expected %q but got %q", sc.Trigger.ExpectBody, body)
	}

	spans, err := r.poller.FetchSpans(ctx)
	if err != nil {
		// covers ErrNoTracesObserved; span expectations are not
		// evaluated without data
		report.Addf("exported traces", "%v", err)
		return report
	}

	verify.Spans(report, spans, sc.Expectations(), r.startEpochSecs)
	return report
}

// RunAll executes every scenario in order and reports whether all of
// them passed.
func (r *Runner) RunAll(ctx context.Context, cfg *Config) ([]*verify.Report, bool) {
	reports := make([]*verify.Report, 0, len(cfg.Scenarios))
	passed := true
	for _, sc := range cfg.Scenarios {
		report := r.Run(ctx, sc)
		if report.Failed() {
			passed = false
			for _, failure := range report.Failures {
				log.Errorf("scenario %q: %s: %s", sc.Name, failure.Expectation, failure.Detail)
			}
		} else {
			log.Infof("scenario %q passed", sc.Name)
		}
		reports = append(reports, report)
	}
	return reports, passed
}

func (r *Runner) trigger(ctx context.Context, path string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.appURL+path, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := r.appClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("triggering %s: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("reading trigger response: %v", err)
	}
	return resp.StatusCode, string(body), nil
}
