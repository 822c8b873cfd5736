package dto

import (
	"time"

	"github.com/portal-apr/portal-apr-backend/models"
)

type User struct {
	UserId    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func AdaptUserDto(user models.User) User {
	return User{
		UserId:    user.Id,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role.String(),
		CreatedAt: user.CreatedAt,
	}
}

type CreateUser struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=ADMIN OPERADOR"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

func AdaptCreateUser(dto CreateUser) models.CreateUser {
	return models.CreateUser{
		Email:    dto.Email,
		Name:     dto.Name,
		Role:     models.RoleFromString(dto.Role),
		Password: dto.Password,
	}
}
