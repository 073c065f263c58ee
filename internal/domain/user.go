package domain

import "time"

const (
	GenderUnknown int8 = 0
	GenderMale    int8 = 1
	GenderFemale  int8 = 2

	UserTypeStandard int8 = 0
	UserTypeAdmin    int8 = 1

	StatusEnable  int8 = 1
	StatusDisable int8 = 2
)

// UserModel 用户表。username 唯一性只约束未软删行，
// 由注册事务保证，库层暂无唯一索引（见 DESIGN.md）。
type UserModel struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username      string     `gorm:"size:50;not null;default:''" json:"username"`
	Password      string     `gorm:"size:255;not null;default:''" json:"-"`
	Fullname      string     `gorm:"size:255;not null;default:''" json:"fullname"`
	Email         string     `gorm:"size:255;not null;default:''" json:"email"`
	Mobile        string     `gorm:"size:255;not null;default:''" json:"mobile"`
	Gender        int8       `gorm:"not null;default:0" json:"gender"`
	UserType      int8       `gorm:"not null;default:0" json:"user_type"`
	Status        int8       `gorm:"not null;default:1" json:"status"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `gorm:"size:255;not null;default:''" json:"last_login_ip"`
	IsDelete      int8       `gorm:"not null;default:0;index" json:"-"`
	DeleteTime    *time.Time `json:"-"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string { return "system_user" }

// UserOut 对外投影，永远不带密码哈希
type UserOut struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	Fullname      string     `json:"fullname"`
	Email         string     `json:"email"`
	Mobile        string     `json:"mobile"`
	Gender        int8       `json:"gender"`
	UserType      int8       `json:"user_type"`
	Status        int8       `json:"status"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func ToUserOut(u *UserModel) UserOut {
	return UserOut{
		ID:            u.ID,
		Username:      u.Username,
		Fullname:      u.Fullname,
		Email:         u.Email,
		Mobile:        u.Mobile,
		Gender:        u.Gender,
		UserType:      u.UserType,
		Status:        u.Status,
		LastLoginTime: u.LastLoginTime,
		LastLoginIP:   u.LastLoginIP,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
