package repositories

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories/dbmodels"
)

func (repo *PortalDbRepository) CreateUser(ctx context.Context, exec Executor, user models.CreateUser, passwordHash string) (models.User, error) {
	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_USERS).
			Columns("email", "name", "role", "password_hash").
			Values(strings.ToLower(user.Email), user.Name, user.Role.String(), passwordHash).
			Suffix("RETURNING "+strings.Join(dbmodels.UserFields, ",")),
		dbmodels.AdaptUser,
	)
}

func (repo *PortalDbRepository) UserById(ctx context.Context, exec Executor, userId string) (models.User, error) {
	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.UserFields...).
			From(dbmodels.TABLE_USERS).
			Where(squirrel.Eq{"id": userId}).
			Where("deleted_at IS NULL"),
		dbmodels.AdaptUser,
	)
}

func (repo *PortalDbRepository) UserByEmail(ctx context.Context, exec Executor, email string) (*models.User, error) {
	return SqlToOptionalModel(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.UserFields...).
			From(dbmodels.TABLE_USERS).
			Where(squirrel.Eq{"lower(email)": strings.ToLower(email)}).
			Where("deleted_at IS NULL"),
		dbmodels.AdaptUser,
	)
}

func (repo *PortalDbRepository) ListUsers(ctx context.Context, exec Executor) ([]models.User, error) {
	return SqlToListOfModels(
		ctx,
		exec,
		NewQueryBuilder().
			Select(dbmodels.UserFields...).
			From(dbmodels.TABLE_USERS).
			Where("deleted_at IS NULL").
			OrderBy("email"),
		dbmodels.AdaptUser,
	)
}

func (repo *PortalDbRepository) UpdateUserPassword(ctx context.Context, exec Executor, userId, passwordHash string) error {
	affected, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_USERS).
			Set("password_hash", passwordHash).
			Where(squirrel.Eq{"id": userId}).
			Where("deleted_at IS NULL"),
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.NotFoundError
	}
	return nil
}

func (repo *PortalDbRepository) DeleteUser(ctx context.Context, exec Executor, userId string) error {
	_, err := ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_USERS).
			Set("deleted_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": userId}),
	)
	return err
}
