package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"sunstrip/internal/renderer"
	"sunstrip/internal/storage"
)

type Server struct {
	router   *gin.Engine
	server   *http.Server
	renderer *renderer.Renderer
	db       *storage.Database
	port     int
}

type ServerConfig struct {
	Port     int
	Renderer *renderer.Renderer
	Database *storage.Database
}

func NewServer(cfg ServerConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:   router,
		renderer: cfg.Renderer,
		db:       cfg.Database,
		port:     cfg.Port,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.healthHandler)

	// API routes
	api := s.router.Group("/api/v1")
	{
		api.GET("/status", s.statusHandler)
		api.GET("/sun", s.sunHandler)
		api.GET("/sun/latest", s.sunLatestHandler)
		api.GET("/sun/history", s.sunHistoryHandler)
		api.GET("/frame", s.frameHandler)
	}
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	log.Printf("API server starting on port %d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"rendering": s.renderer.IsRunning(),
		"timestamp": time.Now(),
	})
}

func (s *Server) statusHandler(c *gin.Context) {
	data := s.renderer.GetSunData()
	mapping := s.renderer.Mapping()

	c.JSON(http.StatusOK, gin.H{
		"rendering":         s.renderer.IsRunning(),
		"current_pixel":     s.renderer.CurrentPixel(),
		"pixels":            mapping.Pixels(),
		"seconds_per_pixel": mapping.SecondsPerPixel(),
		"sun":               data,
	})
}

func (s *Server) sunHandler(c *gin.Context) {
	data := s.renderer.GetSunData()
	if data.FetchedAt.IsZero() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "No sun data available yet",
		})
		return
	}
	c.JSON(http.StatusOK, data)
}

// sunLatestHandler returns the last persisted fetch, which survives restarts
// unlike the renderer's in-memory cache.
func (s *Server) sunLatestHandler(c *gin.Context) {
	reading, err := s.db.GetLatestReading()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No sun readings recorded yet"})
		return
	}
	c.JSON(http.StatusOK, reading)
}

func (s *Server) sunHistoryHandler(c *gin.Context) {
	fromStr := c.Query("from")
	toStr := c.Query("to")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if err != nil || limit <= 0 || limit > 1000 {
		limit = 30
	}

	if fromStr != "" && toStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date format"})
			return
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date format"})
			return
		}

		readings, err := s.db.GetReadingsByRange(from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, readings)
		return
	}

	readings, err := s.db.GetReadingsWithLimit(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, readings)
}

func (s *Server) frameHandler(c *gin.Context) {
	frame := s.renderer.GetLatestFrame()
	if frame == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "No frame rendered yet",
		})
		return
	}

	colors := make([]string, len(frame))
	for i, px := range frame {
		colors[i] = fmt.Sprintf("#%02x%02x%02x", px.R, px.G, px.B)
	}
	c.JSON(http.StatusOK, gin.H{
		"pixels": colors,
		"lit":    frame.LitCount(),
	})
}
