package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/lspgroup/fleetopt-go/internal/application/common"
	"github.com/lspgroup/fleetopt-go/internal/application/optimizer"
	"github.com/lspgroup/fleetopt-go/internal/infrastructure/config"
)

// Server is the HTTP surface of the optimizer: CSV upload and import,
// algorithm runs over the stored dataset, and stored-run queries.
type Server struct {
	router   *gin.Engine
	mediator common.Mediator
	datasets common.DatasetRepository
	runs     optimizer.RunRepository
	cfg      *config.Config
	logger   common.Logger
	metrics  http.Handler
	limiter  *rate.Limiter
}

// NewServer creates the API server. metricsHandler may be nil; the default
// prometheus handler serves /metrics then.
func NewServer(
	cfg *config.Config,
	mediator common.Mediator,
	datasets common.DatasetRepository,
	runs optimizer.RunRepository,
	metricsHandler http.Handler,
	logger common.Logger,
) *Server {
	router := gin.Default()

	// Configure CORS
	corsCfg := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) == 1 && cfg.Server.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsCfg))

	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	if logger == nil {
		logger = common.NopLogger()
	}

	server := &Server{
		router:   router,
		mediator: mediator,
		datasets: datasets,
		runs:     runs,
		cfg:      cfg,
		logger:   logger,
		metrics:  metricsHandler,
		limiter:  rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.root)
	s.router.GET("/health", s.health)
	s.router.GET("/db/info", s.dbInfo)
	s.router.GET("/metrics", gin.WrapH(s.metrics))

	// Upload endpoints carry whole CSV files; they get the token bucket.
	upload := s.router.Group("/upload")
	upload.Use(RateLimit(s.limiter))
	upload.POST("/validate", s.uploadValidate)
	upload.POST("/import", s.uploadImport)

	algorithm := s.router.Group("/algorithm")
	algorithm.POST("/placement", s.runPlacement)
	algorithm.POST("/assignment", s.runAssignment)
	algorithm.POST("/run", s.runFull)

	s.router.GET("/runs/:id", s.getRun)
	s.router.GET("/runs/:id/assignments", s.listRunAssignments)
}

// Handler exposes the router for tests and custom http.Server setups.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server on the configured host and port.
func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port))
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Fleet Optimization API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"health":   "/health",
			"database": "/db/info",
			"metrics":  "/metrics",
			"upload": gin.H{
				"validate": "/upload/validate - validate a single CSV file (multipart: file + type)",
				"import":   "/upload/import - import the five CSV files as a new dataset",
			},
			"algorithm": gin.H{
				"placement":  "/algorithm/placement - run placement only",
				"assignment": "/algorithm/assignment - run assignment only",
				"full":       "/algorithm/run - run placement + assignment and persist the run",
			},
			"runs": gin.H{
				"summary":     "/runs/:id",
				"assignments": "/runs/:id/assignments?offset=&limit=",
			},
		},
	})
}

func (s *Server) health(c *gin.Context) {
	if _, err := s.datasets.Counts(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"database": "down",
			"error":    err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "up",
	})
}

func (s *Server) dbInfo(c *gin.Context) {
	counts, err := s.datasets.Counts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"driver": s.cfg.Database.Driver,
		"tables": counts,
	})
}
