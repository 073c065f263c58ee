package user_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-user-center/internal/core/auth"
	"go-user-center/internal/core/errs"
	"go-user-center/internal/domain"
	"go-user-center/internal/feature/authx"
	"go-user-center/internal/feature/user"
	"go-user-center/pkg/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.UserModel{}))
	return db
}

func newService() *user.Service {
	j := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "go-user-center", TTL: time.Hour}
	return user.NewService(j, nil)
}

func anonCtx(db *gorm.DB) *authx.Context { return &authx.Context{DB: db} }

func seedUser(t *testing.T, db *gorm.DB, username, password string, status int8) *domain.UserModel {
	t.Helper()
	u := &domain.UserModel{
		Username: username,
		Fullname: "测试用户",
		Password: utils.HashPassword(password),
		Status:   status,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func assertBizMsg(t *testing.T, err error, msg string) {
	t.Helper()
	var be *errs.BizError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, msg, be.Msg)
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newService()
	ctx := context.Background()
	seedUser(t, db, "zhangsan", "secret123", domain.StatusEnable)
	seedUser(t, db, "frozen", "secret123", domain.StatusDisable)

	_, err := svc.Login(ctx, anonCtx(db), user.LoginIn{Username: "nobody", Password: "secret123"}, "1.2.3.4")
	assertBizMsg(t, err, "用户不存在")

	_, err = svc.Login(ctx, anonCtx(db), user.LoginIn{Username: "zhangsan", Password: "wrongpw"}, "1.2.3.4")
	assertBizMsg(t, err, "密码错误")

	_, err = svc.Login(ctx, anonCtx(db), user.LoginIn{Username: "frozen", Password: "secret123"}, "1.2.3.4")
	assertBizMsg(t, err, "用户已被禁用")

	out, err := svc.Login(ctx, anonCtx(db), user.LoginIn{Username: "zhangsan", Password: "secret123"}, "1.2.3.4")
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)

	// 成功登录后记录时间与 IP
	var u domain.UserModel
	require.NoError(t, db.Where("username = ?", "zhangsan").Take(&u).Error)
	require.NotNil(t, u.LastLoginTime)
	assert.Equal(t, "1.2.3.4", u.LastLoginIP)
}

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	svc := newService()
	ctx := context.Background()

	out, err := svc.Register(ctx, anonCtx(db), user.RegisterIn{
		Fullname: "李四", Username: "lisi", Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "lisi", out.Username)
	assert.Equal(t, domain.StatusEnable, out.Status)

	// 密码必须哈希落库
	var u domain.UserModel
	require.NoError(t, db.Where("username = ?", "lisi").Take(&u).Error)
	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, utils.CheckPassword("secret123", u.Password))

	_, err = svc.Register(ctx, anonCtx(db), user.RegisterIn{
		Fullname: "李四二号", Username: "lisi", Password: "secret456",
	})
	assertBizMsg(t, err, "用户已存在")
}

func TestGetUsers(t *testing.T) {
	db := newTestDB(t)
	svc := newService()
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		u := seedUser(t, db, fmt.Sprintf("user%02d", i), "secret123", domain.StatusEnable)
		if i%3 == 0 {
			require.NoError(t, db.Model(u).Update("status", domain.StatusDisable).Error)
		}
	}

	// 默认分页，倒序
	items, total, err := svc.GetUsers(ctx, anonCtx(db), user.ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
	require.Len(t, items, 10)
	assert.Greater(t, items[0].ID, items[9].ID)

	// status 精确过滤
	disabled := domain.StatusDisable
	items, total, err = svc.GetUsers(ctx, anonCtx(db), user.ListParams{Status: &disabled, Page: 1, PageSize: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	for _, it := range items {
		assert.Equal(t, domain.StatusDisable, it.Status)
	}

	// username 模糊匹配
	_, total, err = svc.GetUsers(ctx, anonCtx(db), user.ListParams{Username: "user0", Page: 1, PageSize: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 10, total)
}

func TestGetUserAndUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := newService()
	ctx := context.Background()
	u := seedUser(t, db, "wangwu", "secret123", domain.StatusEnable)

	out, err := svc.GetUser(ctx, anonCtx(db), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "wangwu", out.Username)

	_, err = svc.GetUser(ctx, anonCtx(db), 9999)
	var be *errs.BizError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 404, be.Status)

	out, err = svc.UpdateUser(ctx, anonCtx(db), u.ID, user.UpdateIn{
		Fullname: "王五改", Email: "wangwu@example.com", Mobile: "13800000000", Gender: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "王五改", out.Fullname)
	assert.Equal(t, "wangwu@example.com", out.Email)
	// 未更新字段保持不变
	assert.Equal(t, "wangwu", out.Username)
}

func TestDeleteUser(t *testing.T) {
	db := newTestDB(t)
	svc := newService()
	ctx := context.Background()

	soft := seedUser(t, db, "softdel", "secret123", domain.StatusEnable)
	require.NoError(t, svc.DeleteUser(ctx, anonCtx(db), soft.ID, false))
	_, err := svc.GetUser(ctx, anonCtx(db), soft.ID)
	require.Error(t, err)
	// 软删：行还在，标记置位
	var raw domain.UserModel
	require.NoError(t, db.Unscoped().Where("id = ?", soft.ID).Take(&raw).Error)
	assert.EqualValues(t, 1, raw.IsDelete)
	require.NotNil(t, raw.DeleteTime)

	hard := seedUser(t, db, "harddel", "secret123", domain.StatusEnable)
	require.NoError(t, svc.DeleteUser(ctx, anonCtx(db), hard.ID, true))
	var n int64
	require.NoError(t, db.Model(&domain.UserModel{}).Where("id = ?", hard.ID).Count(&n).Error)
	assert.EqualValues(t, 0, n)

	err = svc.DeleteUser(ctx, anonCtx(db), 9999, false)
	var be *errs.BizError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 404, be.Status)
}

func TestUpdateStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newService()
	ctx := context.Background()
	admin := seedUser(t, db, "opadmin", "secret123", domain.StatusEnable)
	target := seedUser(t, db, "target", "secret123", domain.StatusEnable)
	ac := &authx.Context{DB: db, User: admin}

	out, err := svc.UpdateStatus(ctx, ac, target.ID, user.StatusIn{Status: domain.StatusDisable})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDisable, out.Status)

	// 不能改自己的状态
	_, err = svc.UpdateStatus(ctx, ac, admin.ID, user.StatusIn{Status: domain.StatusDisable})
	var be *errs.BizError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 403, be.Status)

	_, err = svc.UpdateStatus(ctx, ac, 9999, user.StatusIn{Status: domain.StatusDisable})
	assertBizMsg(t, err, "用户不存在")
}

func TestResetPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newService()
	ctx := context.Background()
	u := seedUser(t, db, "resetme", "oldsecret", domain.StatusEnable)

	_, err := svc.ResetPassword(ctx, anonCtx(db), u.ID, user.ResetPasswordIn{Password: "newsecret"})
	require.NoError(t, err)

	var raw domain.UserModel
	require.NoError(t, db.Where("id = ?", u.ID).Take(&raw).Error)
	assert.True(t, utils.CheckPassword("newsecret", raw.Password))
	assert.False(t, utils.CheckPassword("oldsecret", raw.Password))
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := newService()
	ctx := context.Background()
	u := seedUser(t, db, "selfchange", "oldsecret", domain.StatusEnable)
	ac := &authx.Context{DB: db, User: u}

	// 规则按序校验，任一失败不写库
	_, err := svc.ChangePassword(ctx, ac, user.ChangePasswordIn{
		OldPassword: "oldsecret", NewPassword: "oldsecret", ConfirmPassword: "oldsecret",
	})
	assertBizMsg(t, err, "新密码不能与旧密码相同")

	_, err = svc.ChangePassword(ctx, ac, user.ChangePasswordIn{
		OldPassword: "oldsecret", NewPassword: "newsecret", ConfirmPassword: "mismatch1",
	})
	assertBizMsg(t, err, "两次输入的密码不一致")

	_, err = svc.ChangePassword(ctx, ac, user.ChangePasswordIn{
		OldPassword: "wrongold1", NewPassword: "newsecret", ConfirmPassword: "newsecret",
	})
	assertBizMsg(t, err, "旧密码错误")

	var raw domain.UserModel
	require.NoError(t, db.Where("id = ?", u.ID).Take(&raw).Error)
	assert.True(t, utils.CheckPassword("oldsecret", raw.Password))

	_, err = svc.ChangePassword(ctx, ac, user.ChangePasswordIn{
		OldPassword: "oldsecret", NewPassword: "newsecret", ConfirmPassword: "newsecret",
	})
	require.NoError(t, err)
	require.NoError(t, db.Where("id = ?", u.ID).Take(&raw).Error)
	assert.True(t, utils.CheckPassword("newsecret", raw.Password))
}
