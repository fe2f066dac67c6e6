package main

import (
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/telemetryhq/trace-smoke/internal/backend"
	"github.com/telemetryhq/trace-smoke/internal/util"
)

var listenAddr = ":8080"
var logLevel = log.InfoLevel.String()
var statusInterval = 1 * time.Minute

func init() {
	pflag.StringVar(&listenAddr, "listen", listenAddr, "host and port for the fake telemetry backend to listen on")
	pflag.StringVar(&logLevel, "log-level", logLevel, "change log level. Default is \"info\", use \"debug\" for request logging")
	pflag.DurationVar(&statusInterval, "status-interval", statusInterval, "how often to log the number of buffered export requests")
}

func main() {
	pflag.Parse()

	log.SetFormatter(&log.TextFormatter{})
	if level, err := log.ParseLevel(logLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	log.SetOutput(os.Stdout)

	store := backend.NewStore()
	mux := http.NewServeMux()
	backend.RegisterHandlers(mux, store)

	go util.Retry(func() {
		log.Infof("store holds %d export request(s), %d bad payload(s)", len(store.Requests()), len(store.BadPayloads()))
	}, statusInterval, util.NeverStop)

	log.Infof("fake telemetry backend listening on %s", listenAddr)
	if err := serve(listenAddr, mux); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func serve(addr string, handler http.Handler) error {
	defer util.HandleCrash()
	return http.ListenAndServe(addr, handler)
}
