package api

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/portal-apr/portal-apr-backend/dto"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/usecases"
	"github.com/portal-apr/portal-apr-backend/utils"
)

func handleListChatMessages(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var query dto.ChatConversationQuery
		var pagination dto.PaginationAndSorting
		if err := c.ShouldBindQuery(&query); err != nil {
			presentBindingError(c, err)
			return
		}
		if err := c.ShouldBindQuery(&pagination); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewChatUsecase()
		messages, err := usecase.ListMessages(ctx, query.SocioId, dto.AdaptPaginationAndSorting(pagination))
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"messages": pure_utils.Map(messages, dto.AdaptChatMessageDto),
		})
	}
}

func handleListChatConversations(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usecase := usecasesWithCreds(ctx, uc).NewChatUsecase()
		conversations, err := usecase.ListConversations(ctx)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"conversations": pure_utils.Map(conversations, dto.AdaptChatConversationDto),
		})
	}
}

func handlePostChatMessage(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.SendChatMessageBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewChatUsecase()
		message, err := usecase.SendMessage(ctx, body.SocioId, body.Body)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": dto.AdaptChatMessageDto(message),
		})
	}
}

func handleMarkChatRead(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var body dto.MarkChatReadBody
		if err := c.ShouldBindJSON(&body); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewChatUsecase()
		count, err := usecase.MarkRead(ctx, body.SocioId)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"marked": count,
		})
	}
}

func chatUpgrader(conf Configuration) websocket.Upgrader {
	allowed := corsOption(context.Background(), conf).AllowOrigins
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			return slices.Contains(allowed, u.Scheme+"://"+u.Host)
		},
	}
}

// handleChatWebsocket upgrades the request and pumps the connection until it closes. Staff
// connections join every conversation, unless they pass socio_id.
func handleChatWebsocket(uc usecases.Usecases, conf Configuration) func(c *gin.Context) {
	upgrader := chatUpgrader(conf)
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var query dto.ChatConversationQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			presentBindingError(c, err)
			return
		}

		usecase := usecasesWithCreds(ctx, uc).NewChatUsecase()
		rooms, err := usecase.ChatRooms(query.SocioId)
		if presentError(c, err) {
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// the upgrader already answered the client
			utils.LoggerFromContext(ctx).InfoContext(ctx, "chat websocket upgrade failed", "error", err.Error())
			return
		}
		usecase.ServeChat(ctx, conn, rooms)
	}
}
