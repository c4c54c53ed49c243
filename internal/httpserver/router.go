package httpserver

import (
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var errNoSessions = errors.New("httpserver: session store is required")

// Deps are the collaborators of the router.
type Deps struct {
	Sessions    SessionStore
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	SessionTTL  time.Duration
}

// buildRouter wires routes for the storefront host.
func buildRouter(logger *log.Entry, deps Deps) (*gin.Engine, error) {
	if deps.Sessions == nil {
		return nil, errNoSessions
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	h := &pageHandler{
		sessions: deps.Sessions,
		ttl:      deps.SessionTTL,
		logger:   logger.WithField("component", "page"),
	}

	router.GET("/healthz", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.GET("/", h.index)
	router.GET("/products/:id", h.product)
	router.POST("/actions/click", h.click)
	router.POST("/actions/input", h.input)

	return router, nil
}
