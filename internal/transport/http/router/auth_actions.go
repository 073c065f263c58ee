package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-user-center/internal/domain"
	"go-user-center/internal/feature/authx"
	"go-user-center/internal/feature/user"
	httpez "go-user-center/internal/transport/http/ez"
)

type authModule struct {
	db  *gorm.DB
	rsv *authx.Resolver
	svc *user.Service
}

func (m *authModule) Priority() int { return 10 }

func (m *authModule) MountAPI(api *gin.RouterGroup) {
	e := httpez.New(api)

	httpez.RegisterAction(e, m.db, m.rsv, httpez.Action[user.LoginIn, user.TokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Auth:   httpez.AuthOpen,
		UseTx:  true,
		Handler: func(c *gin.Context, ac *authx.Context, in *user.LoginIn) (user.TokenOut, error) {
			return m.svc.Login(c, ac, *in, c.ClientIP())
		},
	})

	httpez.RegisterAction(e, m.db, m.rsv, httpez.Action[user.RegisterIn, domain.UserOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: httpez.BindJSON,
		Auth:   httpez.AuthOpen,
		UseTx:  true,
		Handler: func(c *gin.Context, ac *authx.Context, in *user.RegisterIn) (domain.UserOut, error) {
			return m.svc.Register(c, ac, *in)
		},
	})
}
