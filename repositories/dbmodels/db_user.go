package dbmodels

import (
	"time"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type DBUser struct {
	Id           string     `db:"id"`
	Email        string     `db:"email"`
	Name         string     `db:"name"`
	Role         string     `db:"role"`
	PasswordHash string     `db:"password_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

const TABLE_USERS = "users"

var UserFields = utils.ColumnList[DBUser]()

func AdaptUser(db DBUser) (models.User, error) {
	return models.User{
		Id:           db.Id,
		Email:        db.Email,
		Name:         db.Name,
		Role:         models.RoleFromString(db.Role),
		PasswordHash: db.PasswordHash,
		CreatedAt:    db.CreatedAt,
		DeletedAt:    db.DeletedAt,
	}, nil
}
