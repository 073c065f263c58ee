package ez

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-user-center/internal/core/errs"
	"go-user-center/internal/feature/authx"
	resp "go-user-center/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 入参绑定方式
type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none"
)

// 认证强度
type AuthMode int

const (
	AuthNone  AuthMode = iota // 不认证
	AuthOpen                  // 开放：失败按匿名放行
	AuthUser                  // 任意登录用户
	AuthAdmin                 // 特权：状态校验 + 数据范围 + 权限交集
)

// Counted 列表出参，count 提升到响应外层
type Counted struct {
	Items any
	Count int64
}

// Action 一行注册一个接口：I 入参，O 出参。
// UseTx 时绑定之后的认证与业务都跑在同一事务里，
// 出错整体回滚，这是多步操作的原子边界。
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Auth    AuthMode
	Perms   []string // AuthAdmin 时要求的权限集
	UseTx   bool
	Handler func(c *gin.Context, ac *authx.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, db *gorm.DB, rsv *authx.Resolver, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			c.JSON(http.StatusUnprocessableEntity, resp.Error(resp.CodeValidation, bindErr.Error()))
			return
		}

		run := func(tx *gorm.DB) (O, error) {
			ac, err := resolveAuth(c, rsv, tx, a.Auth, a.Perms)
			if err != nil {
				var zero O
				return zero, err
			}
			return a.Handler(c, ac, &in)
		}

		var out O
		var err error
		if a.UseTx {
			err = db.WithContext(c).Transaction(func(tx *gorm.DB) error {
				o, e := run(tx)
				out = o
				return e
			})
		} else {
			out, err = run(db.WithContext(c))
		}
		if err != nil {
			WriteError(c, err)
			return
		}
		if ct, ok := any(out).(Counted); ok {
			c.JSON(http.StatusOK, resp.OKCount(ct.Items, ct.Count))
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

func resolveAuth(c *gin.Context, rsv *authx.Resolver, tx *gorm.DB, mode AuthMode, perms []string) (*authx.Context, error) {
	tok := BearerToken(c)
	switch mode {
	case AuthOpen:
		return rsv.ResolveOpen(c, tx, tok), nil
	case AuthUser:
		return rsv.ResolveUser(c, tx, tok)
	case AuthAdmin:
		return rsv.ResolveAdmin(c, tx, tok, rawBody(c), perms...)
	default:
		return &authx.Context{DB: tx}, nil
	}
}

// BearerToken 取凭证：优先 Authorization: Bearer，退回 token 头
func BearerToken(c *gin.Context) string {
	ah := c.GetHeader("Authorization")
	if strings.HasPrefix(ah, "Bearer ") {
		return strings.TrimPrefix(ah, "Bearer ")
	}
	return c.GetHeader("token")
}

// rawBody 审计用的请求体读取，读完放回去
func rawBody(c *gin.Context) authx.BodyFunc {
	return func() ([]byte, error) {
		if c.Request.Body == nil {
			return nil, nil
		}
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(b))
		return b, nil
	}
}

// PathID 解析路径里的 :id
func PathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.New(http.StatusUnprocessableEntity, resp.CodeValidation, "无效的 id")
	}
	return id, nil
}

// WriteError 统一错误出口：业务错误带自身状态码，其余一律 500
func WriteError(c *gin.Context, err error) {
	var be *errs.BizError
	if errors.As(err, &be) {
		c.JSON(be.Status, resp.Error(be.Code, be.Error()))
		return
	}
	c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, err.Error()))
}
