package dto

// RegisterRequest HTTP层注册请求
// 说明：HTTP层的DTO，包含参数验证tag
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email" example:"reader@example.com"`
	Password    string `json:"password" binding:"required,min=8,max=20" example:"secret123"`
	Nickname    string `json:"nickname" binding:"required,min=2,max=50" example:"reader"`
	Age         int    `json:"age" binding:"required,min=1,max=150" example:"25"`
	AcceptTerms bool   `json:"accept_terms" example:"true"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest 修改资料,省略的字段不修改
type UpdateProfileRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Nickname *string `json:"nickname" binding:"omitempty,min=2,max=50"`
}
