// Package stub is a stand-in bridge backend. It answers the same endpoints as
// the real one and acknowledges commands without running anything.
package stub

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Probe decides whether the bridge is online
type Probe func(ctx context.Context) (bool, error)

// DefaultCommands maps known command keys to the acknowledgement message
var DefaultCommands = map[string]string{
	"bridge_up": "Bridge activated",
	"terraform": "Deployment started! Check your Proxmox console.",
}

type server struct {
	probe    Probe
	commands map[string]string
	log      *zap.Logger
}

// Option configures the router
type Option func(*server)

// WithProbe replaces the status probe
func WithProbe(p Probe) Option {
	return func(s *server) {
		if p != nil {
			s.probe = p
		}
	}
}

// WithCommands replaces the command table
func WithCommands(cmds map[string]string) Option {
	return func(s *server) {
		s.commands = cmds
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewRouter constructs a Gin engine with the bridge routes registered.
func NewRouter(opts ...Option) *gin.Engine {
	s := &server{
		probe:    InterfaceProbe("vmbr1", "10.10.10.1"),
		commands: DefaultCommands,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog(), cors())

	r.GET("/", s.handleRoot)
	r.GET("/status", s.handleStatus)
	r.POST("/run-task", s.handleRunTask)
	return r
}

type taskRequest struct {
	Command string `json:"command"`
}

func (s *server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"Hello": "World"})
}

// handleStatus GET /status
func (s *server) handleStatus(c *gin.Context) {
	online, err := s.probe(c.Request.Context())
	if err != nil {
		s.log.Warn("status probe failed", zap.Error(err))
		online = false
	}
	c.JSON(http.StatusOK, gin.H{"online": online})
}

// handleRunTask POST /run-task
// Expects: {"command": "<key>"}
// Returns: {"message": "..."}; 400 on a missing command, 404 on an unknown one
func (s *server) handleRunTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Command) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "command is required"})
		return
	}

	msg, ok := s.commands[req.Command]
	if !ok {
		s.log.Info("unknown command", zap.String("command", req.Command))
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown command: " + req.Command})
		return
	}

	s.log.Info("command acknowledged", zap.String("command", req.Command))
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (s *server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

// cors allows any origin, method and header
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// InterfaceProbe reports online when iface carries an address containing
// match. A missing interface is offline, not an error.
func InterfaceProbe(iface, match string) Probe {
	return func(ctx context.Context) (bool, error) {
		ifi, err := net.InterfaceByName(iface)
		if err != nil {
			return false, nil
		}
		addrs, err := ifi.Addrs()
		if err != nil {
			return false, err
		}
		for _, a := range addrs {
			if strings.Contains(a.String(), match) {
				return true, nil
			}
		}
		return false, nil
	}
}

// StaticProbe always answers with online
func StaticProbe(online bool) Probe {
	return func(context.Context) (bool, error) {
		return online, nil
	}
}
