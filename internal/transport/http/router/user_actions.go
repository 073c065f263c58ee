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

type userModule struct {
	db  *gorm.DB
	rsv *authx.Resolver
	svc *user.Service
}

func (m *userModule) MountAPI(api *gin.RouterGroup) {
	e := httpez.New(api)

	httpez.RegisterAction(e, m.db, m.rsv, httpez.Action[user.ListParams, httpez.Counted]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Auth:   httpez.AuthAdmin,
		Perms:  []string{"system.user.list"},
		UseTx:  true,
		Handler: func(c *gin.Context, ac *authx.Context, in *user.ListParams) (httpez.Counted, error) {
			items, total, err := m.svc.GetUsers(c, ac, *in)
			if err != nil {
				return httpez.Counted{}, err
			}
			return httpez.Counted{Items: items, Count: total}, nil
		},
	})

	httpez.RegisterAction(e, m.db, m.rsv, httpez.Action[struct{}, domain.UserOut]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Auth:   httpez.AuthAdmin,
		Perms:  []string{"system.user.get"},
		UseTx:  true,
		Handler: func(c *gin.Context, ac *authx.Context, _ *struct{}) (domain.UserOut, error) {
			id, err := httpez.PathID(c)
			if err != nil {
				return domain.UserOut{}, err
			}
			return m.svc.GetUser(c, ac, id)
		},
	})

	httpez.RegisterAction(e, m.db, m.rsv, httpez.Action[user.UpdateIn, domain.UserOut]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Auth:   httpez.AuthAdmin,
		Perms:  []string{"system.user.update"},
		UseTx:  true,
		Handler: func(c *gin.Context, ac *authx.Context, in *user.UpdateIn) (domain.UserOut, error) {
			id, err := httpez.PathID(c)
			if err != nil {
				return domain.UserOut{}, err
			}
			return m.svc.UpdateUser(c, ac, id, *in)
		},
	})

	httpez.RegisterAction(e, m.db, m.rsv, httpez.Action[user.DeleteParams, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: httpez.BindQuery,
		Auth:   httpez.AuthAdmin,
		Perms:  []string{"system.user.delete"},
		UseTx:  true,
		Handler: func(c *gin.Context, ac *authx.Context, in *user.DeleteParams) (gin.H, error) {
			id, err := httpez.PathID(c)
			if err != nil {
				return nil, err
			}
			if err := m.svc.DeleteUser(c, ac, id, in.Hard); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	httpez.RegisterAction(e, m.db, m.rsv, httpez.Action[user.StatusIn, domain.UserOut]{
		Method: http.MethodPut,
		Path:   "/users/:id/status",
		Binder: httpez.BindJSON,
		Auth:   httpez.AuthAdmin,
		Perms:  []string{"system.user.status"},
		UseTx:  true,
		Handler: func(c *gin.Context, ac *authx.Context, in *user.StatusIn) (domain.UserOut, error) {
			id, err := httpez.PathID(c)
			if err != nil {
				return domain.UserOut{}, err
			}
			return m.svc.UpdateStatus(c, ac, id, *in)
		},
	})

	httpez.RegisterAction(e, m.db, m.rsv, httpez.Action[user.ResetPasswordIn, domain.UserOut]{
		Method: http.MethodPut,
		Path:   "/users/:id/password/reset",
		Binder: httpez.BindJSON,
		Auth:   httpez.AuthAdmin,
		Perms:  []string{"system.user.reset"},
		UseTx:  true,
		Handler: func(c *gin.Context, ac *authx.Context, in *user.ResetPasswordIn) (domain.UserOut, error) {
			id, err := httpez.PathID(c)
			if err != nil {
				return domain.UserOut{}, err
			}
			return m.svc.ResetPassword(c, ac, id, *in)
		},
	})

	// 自助改密：任意登录用户
	httpez.RegisterAction(e, m.db, m.rsv, httpez.Action[user.ChangePasswordIn, domain.UserOut]{
		Method: http.MethodPut,
		Path:   "/users/password",
		Binder: httpez.BindJSON,
		Auth:   httpez.AuthUser,
		UseTx:  true,
		Handler: func(c *gin.Context, ac *authx.Context, in *user.ChangePasswordIn) (domain.UserOut, error) {
			return m.svc.ChangePassword(c, ac, *in)
		},
	})
}
