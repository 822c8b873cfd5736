package repositories

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories/dbmodels"
)

func (repo *PortalDbRepository) CreateChatMessage(ctx context.Context, exec Executor, message models.ChatMessageToCreate) (models.ChatMessage, error) {
	return SqlToModel(
		ctx,
		exec,
		NewQueryBuilder().
			Insert(dbmodels.TABLE_CHAT_MESSAGES).
			Columns("socio_id", "sender", "author_id", "author_name", "body").
			Values(message.SocioId, message.Sender, message.AuthorId, message.AuthorName, message.Body).
			Suffix("RETURNING "+strings.Join(dbmodels.ChatMessageFields, ",")),
		dbmodels.AdaptChatMessage,
	)
}

func (repo *PortalDbRepository) ListChatMessages(
	ctx context.Context,
	exec Executor,
	socioId string,
	pagination models.PaginationAndSorting,
) ([]models.ChatMessage, error) {
	return SqlToListOfModels(
		ctx,
		exec,
		applyPagination(
			NewQueryBuilder().
				Select(dbmodels.ChatMessageFields...).
				From(dbmodels.TABLE_CHAT_MESSAGES).
				Where(squirrel.Eq{"socio_id": socioId}),
			"created_at",
			pagination,
		),
		dbmodels.AdaptChatMessage,
	)
}

// MarkChatRead marks as read the messages of the conversation sent by the other side
func (repo *PortalDbRepository) MarkChatRead(ctx context.Context, exec Executor, socioId string, readBy models.ChatSender) (int64, error) {
	return ExecBuilder(
		ctx,
		exec,
		NewQueryBuilder().
			Update(dbmodels.TABLE_CHAT_MESSAGES).
			Set("read_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"socio_id": socioId}).
			Where(squirrel.NotEq{"sender": readBy}).
			Where("read_at IS NULL"),
	)
}

// ListChatConversations returns one line per socio who has messages, with the count of
// socio messages the staff has not read yet
func (repo *PortalDbRepository) ListChatConversations(ctx context.Context, exec Executor) ([]models.ChatConversation, error) {
	return SqlToListOfModels(
		ctx,
		exec,
		NewQueryBuilder().
			Select(
				"m.socio_id",
				"s.nombres || ' ' || s.apellidos AS socio_nombre",
				"MAX(m.created_at) AS last_message_at",
			).
			Column("COUNT(*) FILTER (WHERE m.read_at IS NULL AND m.sender = ?) AS unread", models.ChatSenderSocio).
			From(dbmodels.TABLE_CHAT_MESSAGES+" AS m").
			Join(dbmodels.TABLE_SOCIOS+" AS s ON s.id = m.socio_id").
			GroupBy("m.socio_id", "s.nombres", "s.apellidos").
			OrderBy("last_message_at DESC"),
		dbmodels.AdaptChatConversation,
	)
}
