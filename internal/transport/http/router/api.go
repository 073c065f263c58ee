package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-user-center/internal/feature/authx"
	"go-user-center/internal/feature/user"
	mdw "go-user-center/internal/transport/http/middleware"
)

func NewAPIEngine(l *zap.Logger, db *gorm.DB, rsv *authx.Resolver, svc *user.Service) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		cors.Default(),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	reg := &Registry{}
	reg.Register(&authModule{db: db, rsv: rsv, svc: svc})
	reg.Register(&userModule{db: db, rsv: rsv, svc: svc})
	reg.MountAll(api)

	return r
}
