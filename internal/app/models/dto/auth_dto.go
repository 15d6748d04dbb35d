package dto

// LoginRequest authenticates an operator account.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterRequest creates a new operator account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName" binding:"required,min=2,max=150"`
	RoleType string `json:"roleType" binding:"required,oneof=ADMIN INSTRUCTOR"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn" example:"3600"`
	UserID      int64  `json:"userId"`
	RoleType    string `json:"roleType"`
}
