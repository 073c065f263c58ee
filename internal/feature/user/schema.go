package user

type LoginIn struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=50"`
}

type RegisterIn struct {
	Fullname string `json:"fullname" binding:"required,min=2,max=50"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=50"`
}

type TokenOut struct {
	Token string `json:"token"`
}

type UpdateIn struct {
	Fullname string `json:"fullname" binding:"required,max=255"`
	Email    string `json:"email" binding:"omitempty,email"`
	Mobile   string `json:"mobile" binding:"omitempty,len=11,numeric"`
	Gender   int8   `json:"gender" binding:"oneof=0 1 2"`
}

type StatusIn struct {
	Status int8 `json:"status" binding:"required,oneof=1 2"`
}

type ResetPasswordIn struct {
	Password string `json:"password" binding:"required,min=6,max=50"`
}

type ChangePasswordIn struct {
	OldPassword     string `json:"old_password" binding:"required,min=6,max=50"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=50"`
	ConfirmPassword string `json:"confirm_password" binding:"required,min=6,max=50"`
}

// ListParams 列表筛选：fullname/username 模糊，status 精确，空值不参与过滤
type ListParams struct {
	Fullname string `form:"fullname"`
	Username string `form:"username"`
	Status   *int8  `form:"status"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=10"`
}

type DeleteParams struct {
	Hard bool `form:"hard"` // 默认软删
}
