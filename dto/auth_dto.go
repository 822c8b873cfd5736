package dto

import "time"

type AdminLoginBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SocioLoginBody struct {
	Rut      string `json:"rut" binding:"required,rut"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	Credentials Credentials `json:"credentials"`
}

type SetPasswordBody struct {
	Password string `json:"password" binding:"required,min=8,max=72"`
}
