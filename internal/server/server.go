package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apihttp "github.com/zhangjie25/VideoBoard-Develop/internal/api/http"
	"github.com/zhangjie25/VideoBoard-Develop/internal/api/middleware"
	"github.com/zhangjie25/VideoBoard-Develop/internal/api/ws"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/canvas"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/content"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/graph"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/palette"
	"github.com/zhangjie25/VideoBoard-Develop/internal/domain/tabs"
	"github.com/zhangjie25/VideoBoard-Develop/internal/infrastructure/config"
	"github.com/zhangjie25/VideoBoard-Develop/internal/infrastructure/logging"
	"github.com/zhangjie25/VideoBoard-Develop/internal/infrastructure/monitoring"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/id"
	"github.com/zhangjie25/VideoBoard-Develop/internal/shared/types"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	workspace  *canvas.Workspace
	stream     *ws.Handler
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a new server instance. Initial nodes seed the canvas.
func NewServer(cfg *config.Config, logger *logging.Logger, nodes ...types.Node) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Info("Initializing Canvas Server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("id_strategy", cfg.Editor.IDStrategy),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	pal := palette.Default()
	if cfg.Palette.File != "" {
		loaded, err := palette.Load(cfg.Palette.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load palette: %w", err)
		}
		pal = loaded
		logger.Info("Palette loaded",
			zap.String("file", cfg.Palette.File),
			zap.Int("items", len(pal.Items)))
	}

	workspace := canvas.New(graph.NewMemoryStore(nodes...), canvas.Options{
		Tabs: tabs.Options{
			PersistDelay:      cfg.Editor.PersistDelay,
			AnimationDuration: cfg.Editor.AnimationDuration,
		},
		Content:     content.Options{TextDelay: cfg.Editor.TextDelay},
		SpawnMargin: cfg.Editor.SpawnMargin,
		IDs:         id.NewGenerator(id.ParseStrategy(cfg.Editor.IDStrategy)),
		Palette:     pal,
		Metrics:     metrics,
		Logger:      logger.Logger,
	})

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	// Register routes
	handlers := apihttp.NewHandlers(workspace, metrics, logger.Logger)
	handlers.Register(router)

	stream := ws.NewHandler(workspace, metrics, logger.Logger)
	router.GET("/stream", stream.HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:    cfg.Server.Addr(),
			Handler: router,
		},
		workspace: workspace,
		stream:    stream,
		logger:    logger,
		config:    cfg,
		metrics:   metrics,
	}, nil
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Workspace returns the editing session served
func (s *Server) Workspace() *canvas.Workspace {
	return s.workspace
}

// Run serves until ctx is cancelled or the listener fails, then shuts down
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return s.Close()
	})

	return g.Wait()
}

// Close gracefully shuts down the server. Pending edits are committed first.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(err))
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	s.stream.Close()

	s.workspace.Flush()
	s.workspace.Close()
	s.logger.Info("Workspace closed", zap.Int("nodes", len(s.workspace.Nodes())))

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
