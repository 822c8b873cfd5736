package dto

import (
	"github.com/portal-apr/portal-apr-backend/models"
)

type Identity struct {
	UserId  string `json:"user_id,omitempty"`
	SocioId string `json:"socio_id,omitempty"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}

type Credentials struct {
	Role          string   `json:"role"`
	ActorIdentity Identity `json:"actor_identity"`
}

func AdaptCredentialDto(creds models.Credentials) Credentials {
	return Credentials{
		Role: creds.Role.String(),
		ActorIdentity: Identity{
			UserId:  creds.ActorIdentity.UserId,
			SocioId: creds.ActorIdentity.SocioId,
			Email:   creds.ActorIdentity.Email,
			Name:    creds.ActorIdentity.Name,
		},
	}
}

func AdaptCredential(dto Credentials) models.Credentials {
	return models.Credentials{
		Role: models.RoleFromString(dto.Role),
		ActorIdentity: models.Identity{
			UserId:  dto.ActorIdentity.UserId,
			SocioId: dto.ActorIdentity.SocioId,
			Email:   dto.ActorIdentity.Email,
			Name:    dto.ActorIdentity.Name,
		},
	}
}
