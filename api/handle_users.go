package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portal-apr/portal-apr-backend/dto"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/usecases"
)

func handleGetAllUsers(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usecase := usecasesWithCreds(ctx, uc).NewUserUseCase()
		users, err := usecase.ListUsers(ctx)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"users": pure_utils.Map(users, dto.AdaptUserDto),
		})
	}
}

func handlePostUser(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var data dto.CreateUser
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewUserUseCase()
		createdUser, err := usecase.AddUser(ctx, dto.AdaptCreateUser(data))
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"user": dto.AdaptUserDto(createdUser),
		})
	}
}

func handleSetUserPassword(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userId, err := requiredUuidParam(c, "user_id")
		if presentError(c, err) {
			return
		}
		var body dto.SetPasswordBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewUserUseCase()
		if presentError(c, usecase.SetUserPassword(ctx, userId, body.Password)) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleDeleteUser(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userId, err := requiredUuidParam(c, "user_id")
		if presentError(c, err) {
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewUserUseCase()
		if presentError(c, usecase.DeleteUser(ctx, userId)) {
			return
		}
		c.Status(http.StatusNoContent)
	}
}
