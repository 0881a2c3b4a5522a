// Package admin owns the optional HTTP surface of the daemon: health,
// readiness, metrics, the status snapshot, run history, and
// operator-triggered actions.
package admin

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/rotorlabs/rotorctl/internal/journal"
	"github.com/rotorlabs/rotorctl/internal/observability"
	"github.com/rotorlabs/rotorctl/internal/schedule"
)

var ErrActionNotFound = errors.New("action not found")

// Action is an operator-triggered operation exposed over the admin API.
type Action func(ctx context.Context) (string, error)

// HistoryFunc reads recent runs from the journal. A nil func means no
// journal is configured and the history route is not registered.
type HistoryFunc func(ctx context.Context, limit int) ([]journal.Run, error)

// Options configures the admin surface.
type Options struct {
	Addr        string
	AuthToken   string
	CorsOrigins []string
	Status      func() schedule.Status
	Actions     map[string]Action
	History     HistoryFunc
}

type Server struct {
	addr      string
	authToken string
	appeared  time.Time
	status    func() schedule.Status
	actions   map[string]Action
	history   HistoryFunc
	router    *gin.Engine
}

func New(opts Options) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(opts.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		addr:      opts.Addr,
		authToken: opts.AuthToken,
		appeared:  time.Now(),
		status:    opts.Status,
		actions:   opts.Actions,
		history:   opts.History,
		router:    r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) Serve() error {
	return s.router.Run(s.addr)
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.appeared).String(),
			"service": "rotorctl",
			"version": "0.1.0",
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		st := s.status()
		code := http.StatusOK
		if !st.Ready {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"ready":   st.Ready,
			"uptime":  time.Since(s.appeared).String(),
			"service": "rotorctl",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.status())
	})

	if s.history != nil {
		s.router.GET("/history", func(c *gin.Context) {
			limit := 20
			if raw := c.Query("limit"); raw != "" {
				if n, err := strconv.Atoi(raw); err == nil && n > 0 {
					limit = n
				}
			}
			runs, err := s.history(c.Request.Context(), limit)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			items := make([]gin.H, 0, len(runs))
			for _, r := range runs {
				items = append(items, gin.H{
					"id":         r.ID,
					"kind":       string(r.Kind),
					"started":    r.Started.Format(time.RFC3339),
					"duration":   r.Duration.String(),
					"ok":         r.OK,
					"exit_code":  r.ExitCode,
					"detail":     r.Detail,
					"output_sha": r.OutputSHA,
				})
			}
			c.JSON(http.StatusOK, gin.H{"runs": items})
		})
	}

	s.router.GET("/actions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actions": s.ListActions()})
	})

	s.router.POST("/actions/:action", requireToken(s.authToken), func(c *gin.Context) {
		name := c.Param("action")

		out, err := s.ExecuteAction(c.Request.Context(), name)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrActionNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "output": out})
	})
}

func (s *Server) ExecuteAction(ctx context.Context, name string) (string, error) {
	action, ok := s.actions[name]
	if !ok {
		return "", ErrActionNotFound
	}

	out, err := action(ctx)
	if err != nil {
		log.Error().
			Str("action", name).
			Err(err).
			Msg("admin action failed")
		return "", err
	}

	log.Info().
		Str("action", name).
		Msg("admin action executed")
	return out, nil
}

// ListActions names every registered action, sorted for stable output.
func (s *Server) ListActions() []string {
	names := make([]string, 0, len(s.actions))
	for name := range s.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
