package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"stock-forecaster/src/favorites"
	"stock-forecaster/src/interfaces"
	"stock-forecaster/src/logger"
	"stock-forecaster/src/metrics"
	"stock-forecaster/src/models"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// runTimeout bounds one pipeline run started by a websocket command.
const runTimeout = 2 * time.Minute

// -----------------------------------------------------------------------------
// FastAPIServer
// -----------------------------------------------------------------------------

type FastAPIServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Pages     interfaces.IPageBuilder
	Favorites *favorites.Store
	Metrics   *metrics.Recorder
	engine    *gin.Engine
	srv       *http.Server

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan interface{}
	direct     chan directMessage
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	stopOnce   sync.Once

	// last status pushed, sent to new sessions
	latestStatus interface{}
	stateMutex   sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewFastAPIServer(
	cfg *models.MConfig,
	pages interfaces.IPageBuilder,
	favs *favorites.Store,
	rec *metrics.Recorder,
	log *logger.Logger,
) *FastAPIServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &FastAPIServer{
		Config:     cfg,
		Logger:     log,
		Pages:      pages,
		Favorites:  favs,
		Metrics:    rec,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan interface{}, 64),
		direct:     make(chan directMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}

	s.engine.SetHTMLTemplate(template.Must(template.New("").ParseFS(templateFS, "templates/*.html")))
	s.engine.Use(gin.Recovery(), s.requestLogger(), s.cors())

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *FastAPIServer) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger times every request for the logs and the HTTP histogram.
func (s *FastAPIServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(started)

		s.Metrics.RecordHTTP(route, c.Request.Method, strconv.Itoa(status), elapsed.Seconds())
		s.Logger.Debug("%s %s -> %d in %v", c.Request.Method, c.Request.URL.Path, status, elapsed)
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *FastAPIServer) setupRoutes() {
	s.engine.GET("/", s.getIndex)

	api := s.engine.Group("/api")
	api.GET("/forecast", s.getForecast)
	api.GET("/instruments", s.getInstruments)
	api.GET("/favorites", s.getFavorites)
	api.POST("/favorites", s.postFavorites)
	api.GET("/health", s.getHealth)

	s.engine.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the router, mainly for tests.
func (s *FastAPIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start blocks serving HTTP until Stop is called.
func (s *FastAPIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on http://%s", addr)

	go s.handleWebsockets()

	hs := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	s.stateMutex.Lock()
	s.srv = hs
	s.stateMutex.Unlock()

	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.quit)
		s.stateMutex.RLock()
		hs := s.srv
		s.stateMutex.RUnlock()
		if hs == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = hs.Shutdown(ctx)
	})
	return err
}
