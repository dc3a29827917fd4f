package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sdko-org/areacheck/internal/geometry"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	CheckPath string
	Region    geometry.Region
	Limiter   *RateLimiter
	Sink      AccessLogSink
}

// NewRouter mounts check on CheckPath for every method; the pipeline itself
// answers non-POST requests.
func NewRouter(logger *logrus.Logger, cfg RouterConfig, check http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware(logger, cfg.Sink))

	r.HandleFunc("/healthz", HandleHealth).Methods("GET")
	r.Handle("/region", RegionHandler(cfg.Region)).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	if cfg.Limiter != nil {
		check = cfg.Limiter.Middleware(check)
	}
	r.Handle(cfg.CheckPath, check)

	return r
}
