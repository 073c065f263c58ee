package user

import (
	"context"
	"fmt"
	"time"

	"go-user-center/internal/core/auth"
	"go-user-center/internal/core/cache"
	"go-user-center/internal/core/errs"
	"go-user-center/internal/dal"
	"go-user-center/internal/domain"
	"go-user-center/internal/feature/authx"
	"go-user-center/pkg/utils"
)

const profileCacheTTL = 5 * time.Minute

// Service 用户域服务：登录注册 + 档案 CRUD + 密码流程。
// 数据访问走当前请求事务（ac.DB），Cache 可为 nil。
type Service struct {
	JWT   *auth.JWTer
	Cache *cache.Cache
}

func NewService(j *auth.JWTer, c *cache.Cache) *Service {
	return &Service{JWT: j, Cache: c}
}

func userDal(ac *authx.Context) *dal.Dal[domain.UserModel] {
	return dal.New[domain.UserModel](ac.DB)
}

func byUsername(username string) dal.Query {
	return dal.Query{Filters: map[string]dal.Filter{"username": dal.Eq(username)}}
}

// Login 用户不存在 / 密码错误 / 已禁用分开报错（沿用既有契约），
// 成功后在本事务内记录登录时间与 IP，再签发 token
func (s *Service) Login(ctx context.Context, ac *authx.Context, in LoginIn, clientIP string) (TokenOut, error) {
	d := userDal(ac)
	u, err := d.FetchOne(ctx, 0, byUsername(in.Username), true)
	if err != nil {
		return TokenOut{}, err
	}
	if u == nil {
		return TokenOut{}, errs.BadRequest("用户不存在")
	}
	if !utils.CheckPassword(in.Password, u.Password) {
		return TokenOut{}, errs.BadRequest("密码错误")
	}
	if u.Status != domain.StatusEnable {
		return TokenOut{}, errs.BadRequest("用户已被禁用")
	}
	now := time.Now()
	if _, err := d.UpdateOne(ctx, u.ID, map[string]any{
		"last_login_time": now,
		"last_login_ip":   clientIP,
	}); err != nil {
		return TokenOut{}, err
	}
	token, err := s.JWT.Issue(u.ID, u.Username)
	if err != nil {
		return TokenOut{}, errs.Internal("签发 token 失败", err)
	}
	return TokenOut{Token: token}, nil
}

// Register 用户名查重与插入在同一事务内串行化
func (s *Service) Register(ctx context.Context, ac *authx.Context, in RegisterIn) (domain.UserOut, error) {
	d := userDal(ac)
	exist, err := d.FetchOne(ctx, 0, byUsername(in.Username), true)
	if err != nil {
		return domain.UserOut{}, err
	}
	if exist != nil {
		return domain.UserOut{}, errs.BadRequest("用户已存在")
	}
	u := domain.UserModel{
		Username: in.Username,
		Fullname: in.Fullname,
		Password: utils.HashPassword(in.Password),
		Status:   domain.StatusEnable,
	}
	if err := d.CreateOne(ctx, &u); err != nil {
		return domain.UserOut{}, err
	}
	return domain.ToUserOut(&u), nil
}

func (s *Service) GetUsers(ctx context.Context, ac *authx.Context, p ListParams) ([]domain.UserOut, int64, error) {
	var status any
	if p.Status != nil {
		status = *p.Status
	}
	q := dal.Query{
		Filters: map[string]dal.Filter{
			"fullname": dal.Like(p.Fullname),
			"username": dal.Like(p.Username),
			"status":   dal.Eq(status),
		},
		Order:      "desc",
		OrderField: "id",
	}
	items, total, err := userDal(ac).FetchMany(ctx, q, p.Page, p.PageSize, true)
	if err != nil {
		return nil, 0, err
	}
	outs := make([]domain.UserOut, 0, len(items))
	for i := range items {
		outs = append(outs, domain.ToUserOut(&items[i]))
	}
	return outs, total, nil
}

// GetUser 档案读取走缓存，变更操作负责失效
func (s *Service) GetUser(ctx context.Context, ac *authx.Context, id int64) (domain.UserOut, error) {
	load := func(ctx context.Context) (*domain.UserOut, error) {
		u, err := userDal(ac).FetchOne(ctx, id, dal.Query{}, false)
		if err != nil {
			return nil, err
		}
		out := domain.ToUserOut(u)
		return &out, nil
	}
	if s.Cache == nil {
		out, err := load(ctx)
		if err != nil {
			return domain.UserOut{}, err
		}
		return *out, nil
	}
	out, err := cache.GetOrLoadJSON(s.Cache, ctx, profileKey(id), profileCacheTTL, load)
	if err != nil {
		return domain.UserOut{}, err
	}
	return *out, nil
}

func (s *Service) UpdateUser(ctx context.Context, ac *authx.Context, id int64, in UpdateIn) (domain.UserOut, error) {
	u, err := userDal(ac).UpdateOne(ctx, id, map[string]any{
		"fullname": in.Fullname,
		"email":    in.Email,
		"mobile":   in.Mobile,
		"gender":   in.Gender,
	})
	if err != nil {
		return domain.UserOut{}, err
	}
	s.invalidate(ctx, id)
	return domain.ToUserOut(u), nil
}

func (s *Service) DeleteUser(ctx context.Context, ac *authx.Context, id int64, hard bool) error {
	if _, err := userDal(ac).FetchOne(ctx, id, dal.Query{}, false); err != nil {
		return err
	}
	if err := userDal(ac).DeleteMany(ctx, []int64{id}, !hard); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// UpdateStatus 不允许修改自己的状态
func (s *Service) UpdateStatus(ctx context.Context, ac *authx.Context, id int64, in StatusIn) (domain.UserOut, error) {
	d := userDal(ac)
	u, err := d.FetchOne(ctx, id, dal.Query{}, true)
	if err != nil {
		return domain.UserOut{}, err
	}
	if u == nil {
		return domain.UserOut{}, errs.BadRequest("用户不存在")
	}
	if ac.User != nil && id == ac.User.ID {
		return domain.UserOut{}, errs.Forbidden("不能修改自己的状态")
	}
	updated, err := d.UpdateOne(ctx, id, map[string]any{"status": in.Status})
	if err != nil {
		return domain.UserOut{}, err
	}
	s.invalidate(ctx, id)
	return domain.ToUserOut(updated), nil
}

// ResetPassword 管理员重置，不校验旧密码
func (s *Service) ResetPassword(ctx context.Context, ac *authx.Context, id int64, in ResetPasswordIn) (domain.UserOut, error) {
	u, err := userDal(ac).UpdateOne(ctx, id, map[string]any{
		"password": utils.HashPassword(in.Password),
	})
	if err != nil {
		return domain.UserOut{}, err
	}
	s.invalidate(ctx, id)
	return domain.ToUserOut(u), nil
}

// ChangePassword 自助改密：规则全部通过前不做任何写入，首条失败即返回
func (s *Service) ChangePassword(ctx context.Context, ac *authx.Context, in ChangePasswordIn) (domain.UserOut, error) {
	if in.NewPassword == in.OldPassword {
		return domain.UserOut{}, errs.BadRequest("新密码不能与旧密码相同")
	}
	if in.NewPassword != in.ConfirmPassword {
		return domain.UserOut{}, errs.BadRequest("两次输入的密码不一致")
	}
	d := userDal(ac)
	u, err := d.FetchOne(ctx, ac.User.ID, dal.Query{}, false)
	if err != nil {
		return domain.UserOut{}, err
	}
	if !utils.CheckPassword(in.OldPassword, u.Password) {
		return domain.UserOut{}, errs.BadRequest("旧密码错误")
	}
	updated, err := d.UpdateOne(ctx, u.ID, map[string]any{
		"password": utils.HashPassword(in.NewPassword),
	})
	if err != nil {
		return domain.UserOut{}, err
	}
	s.invalidate(ctx, u.ID)
	return domain.ToUserOut(updated), nil
}

func profileKey(id int64) string { return fmt.Sprintf("user:profile:%d", id) }

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.Cache == nil {
		return
	}
	_ = s.Cache.Del(ctx, profileKey(id))
}
