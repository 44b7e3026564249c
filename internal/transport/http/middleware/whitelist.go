package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HubertYGuan/FEINT/internal/core/port"
	appLogger "github.com/HubertYGuan/FEINT/internal/infra/logger"
)

const whitelistCacheTTL = 30 * time.Second

// IPWhitelist rejects requests from client IPs that are not present in the
// whitelist table. The allowed set is cached briefly to keep the check off
// the database hot path.
type IPWhitelist struct {
	repo   port.WhitelistRepository
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	allowed   map[string]struct{}
	refreshed time.Time
}

// NewIPWhitelist constructs the whitelist middleware helper.
func NewIPWhitelist(repo port.WhitelistRepository, logger *zap.Logger) *IPWhitelist {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IPWhitelist{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Handler returns a Gin middleware enforcing the whitelist.
func (w *IPWhitelist) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, err := w.isAllowed(c, ip)
		if err != nil {
			w.logger.Error("whitelist lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				newErrorResponse(c, "service unavailable"))
			return
		}

		if !allowed {
			w.logger.Warn("request from non-whitelisted address",
				zap.String("client_ip", appLogger.MaskIP(ip)))
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "forbidden"))
			return
		}

		c.Next()
	}
}

func (w *IPWhitelist) isAllowed(c *gin.Context, ip string) (bool, error) {
	now := w.now()

	w.mu.RLock()
	if w.allowed != nil && now.Sub(w.refreshed) < whitelistCacheTTL {
		_, ok := w.allowed[ip]
		w.mu.RUnlock()
		return ok, nil
	}
	w.mu.RUnlock()

	ips, err := w.repo.ListIPs(c.Request.Context())
	if err != nil {
		return false, err
	}

	set := make(map[string]struct{}, len(ips))
	for _, entry := range ips {
		set[entry] = struct{}{}
	}

	w.mu.Lock()
	w.allowed = set
	w.refreshed = now
	w.mu.Unlock()

	_, ok := set[ip]
	return ok, nil
}
