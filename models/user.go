package models

import "time"

type User struct {
	Id           string
	Email        string
	Name         string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	DeletedAt    *time.Time
}

func (u User) IntoCredentials() Credentials {
	return Credentials{
		ActorIdentity: Identity{
			UserId: u.Id,
			Email:  u.Email,
			Name:   u.Name,
		},
		Role: u.Role,
	}
}

type CreateUser struct {
	Email    string
	Name     string
	Role     Role
	Password string
}
