package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemetryhq/trace-smoke/internal/otlp"
)

var sampleConf = `
scenarios:
  - name: spring-boot-hello
    trigger:
      path: /hello
      expectBody: "Hi there!"
    expectedSpans:
      - kind: SERVER
        name: /hello
      - kind: INTERNAL
        name: AppController.*
`

func TestFromYAML(t *testing.T) {
	cfg, err := FromYAML([]byte(sampleConf))
	require.NoError(t, err)
	require.Len(t, cfg.Scenarios, 1)

	sc := cfg.Scenarios[0]
	assert.Equal(t, "spring-boot-hello", sc.Name)
	assert.Equal(t, "/hello", sc.Trigger.Path)
	assert.Equal(t, "Hi there!", sc.Trigger.ExpectBody)

	expectations := sc.Expectations()
	require.Len(t, expectations, 2)
	assert.Equal(t, otlp.SpanKindServer, expectations[0].Kind)
	assert.Equal(t, "/hello", expectations[0].Name)
	assert.Equal(t, otlp.SpanKindInternal, expectations[1].Kind)

	// glob patterns are compiled and usable
	assert.True(t, expectations[1].Matches(&otlp.Span{
		Name: "AppController.hello",
		Kind: otlp.SpanKindInternal,
	}))
}

func TestFromYAMLErrors(t *testing.T) {
	for name, conf := range map[string]string{
		"empty":            `scenarios: []`,
		"missing name":     "scenarios:\n  - trigger: {path: /hello}\n    expectedSpans: [{kind: SERVER, name: x}]",
		"relative path":    "scenarios:\n  - name: s\n    trigger: {path: hello}\n    expectedSpans: [{kind: SERVER, name: x}]",
		"no expectations":  "scenarios:\n  - name: s\n    trigger: {path: /hello}\n    expectedSpans: []",
		"unknown kind":     "scenarios:\n  - name: s\n    trigger: {path: /hello}\n    expectedSpans: [{kind: BOGUS, name: x}]",
		"nameless span":    "scenarios:\n  - name: s\n    trigger: {path: /hello}\n    expectedSpans: [{kind: SERVER}]",
		"bad glob":         "scenarios:\n  - name: s\n    trigger: {path: /hello}\n    expectedSpans: [{kind: SERVER, name: '['}]",
		"unknown yaml key": "scenarios:\n  - name: s\n    bogus: true\n    trigger: {path: /hello}\n    expectedSpans: [{kind: SERVER, name: x}]",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromYAML([]byte(conf))
			assert.Error(t, err)
		})
	}
}
