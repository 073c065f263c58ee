package authx

import (
	"context"

	"gorm.io/gorm"

	"go-user-center/internal/core/auth"
	"go-user-center/internal/core/errs"
	"go-user-center/internal/dal"
	"go-user-center/internal/domain"
)

// 数据范围级别
const (
	RangeSelf     = 0 // 仅本人
	RangeDept     = 1 // 本部门
	RangeDeptTree = 2 // 本部门及以下
	RangeCustom   = 3 // 自定义部门集合
	RangeAll      = 4 // 全部
)

// AuditInfo 审计信息，随上下文显式传递给日志方
type AuditInfo struct {
	UserID   int64
	Username string
	Fullname string
	Body     []byte
}

// Context 单次请求的认证上下文，User 为 nil 表示匿名。
// 随请求创建随请求销毁，不跨请求共享。
type Context struct {
	User      *domain.UserModel
	DB        *gorm.DB
	DataRange int
	DeptIDs   []string
	Audit     AuditInfo
}

func (c *Context) Authenticated() bool { return c.User != nil }

// BodyFunc 读取原始请求体，尽力而为，失败不影响请求
type BodyFunc func() ([]byte, error)

// ScopePolicy 数据范围策略，可替换
type ScopePolicy interface {
	DataRange(ctx context.Context, tx *gorm.DB, u *domain.UserModel) (int, []string, error)
}

// AllDataPolicy 默认策略：全部数据权限
type AllDataPolicy struct{}

func (AllDataPolicy) DataRange(context.Context, *gorm.DB, *domain.UserModel) (int, []string, error) {
	return RangeAll, []string{"*"}, nil
}

// Permissions 用户权限集合。目前所有用户放开全部权限。
func Permissions(u *domain.UserModel) map[string]struct{} {
	return map[string]struct{}{"*.*.*": {}}
}

type Resolver struct {
	JWT     *auth.JWTer
	Scope   ScopePolicy
	Enabled bool // 关闭后所有接口按匿名放行
}

func NewResolver(j *auth.JWTer, enabled bool) *Resolver {
	return &Resolver{JWT: j, Scope: AllDataPolicy{}, Enabled: enabled}
}

// ResolveOpen 开放认证：永不失败，token 无效则返回匿名上下文
func (r *Resolver) ResolveOpen(ctx context.Context, tx *gorm.DB, token string) *Context {
	ac, err := r.ResolveUser(ctx, tx, token)
	if err != nil {
		return &Context{DB: tx}
	}
	return ac
}

// ResolveUser 要求合法且未过期的 token，解析出用户，不做权限过滤
func (r *Resolver) ResolveUser(ctx context.Context, tx *gorm.DB, token string) (*Context, error) {
	if !r.Enabled {
		return &Context{DB: tx}, nil
	}
	claims, err := r.validateToken(token)
	if err != nil {
		return nil, err
	}
	u, err := r.lookup(ctx, tx, claims.Username)
	if err != nil {
		return nil, err
	}
	return r.validateUser(ctx, tx, u, true, nil)
}

// ResolveAdmin 特权认证：合法 token + 启用状态用户 + 数据范围；
// 声明了 perms 时要求用户权限集与之有交集
func (r *Resolver) ResolveAdmin(ctx context.Context, tx *gorm.DB, token string, body BodyFunc, perms ...string) (*Context, error) {
	if !r.Enabled {
		return &Context{DB: tx}, nil
	}
	claims, err := r.validateToken(token)
	if err != nil {
		return nil, err
	}
	u, err := r.lookup(ctx, tx, claims.Username)
	if err != nil {
		return nil, err
	}
	ac, err := r.validateUser(ctx, tx, u, false, body)
	if err != nil {
		return nil, err
	}
	owned := Permissions(u)
	if _, all := owned["*.*.*"]; !all && len(perms) > 0 {
		hit := false
		for _, p := range perms {
			if _, ok := owned[p]; ok {
				hit = true
				break
			}
		}
		if !hit {
			return nil, errs.Forbidden("无权限操作")
		}
	}
	return ac, nil
}

// validateToken 过期与其它解码失败分开映射（403 / 401，沿用既有约定）
func (r *Resolver) validateToken(token string) (*auth.Claims, error) {
	if token == "" {
		return nil, errs.Forbidden("请您先登录")
	}
	claims, err := r.JWT.Parse(token)
	if err != nil {
		if err == auth.ErrTokenExpired {
			return nil, errs.Forbidden("认证已过期，请您重新登录")
		}
		return nil, errs.Unauthorized("无效认证，请您重新登录")
	}
	return claims, nil
}

func (r *Resolver) lookup(ctx context.Context, tx *gorm.DB, username string) (*domain.UserModel, error) {
	return dal.New[domain.UserModel](tx).FetchOne(ctx, 0, dal.Query{
		Filters: map[string]dal.Filter{"username": dal.Eq(username)},
	}, true)
}

func (r *Resolver) validateUser(ctx context.Context, tx *gorm.DB, u *domain.UserModel, isAll bool, body BodyFunc) (*Context, error) {
	if u == nil {
		return nil, errs.Unauthorized("未认证，请您重新登录")
	}
	if u.Status == domain.StatusDisable {
		return nil, errs.Unauthorized("用户已被冻结")
	}
	audit := AuditInfo{UserID: u.ID, Username: u.Username, Fullname: u.Fullname}
	if body != nil {
		if b, err := body(); err == nil {
			audit.Body = b
		} else {
			audit.Body = []byte("获取失败")
		}
	}
	if isAll {
		return &Context{User: u, DB: tx, Audit: audit}, nil
	}
	dataRange, deptIDs, err := r.Scope.DataRange(ctx, tx, u)
	if err != nil {
		return nil, err
	}
	return &Context{User: u, DB: tx, DataRange: dataRange, DeptIDs: deptIDs, Audit: audit}, nil
}
