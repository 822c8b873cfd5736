package tracking

import (
	"context"

	"github.com/segmentio/analytics-go/v3"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

// userIdOfCredentials is the segment user id: the staff user id, or "socio:<id>" for socios
func userIdOfCredentials(creds models.Credentials) string {
	if creds.ActorIdentity.UserId != "" {
		return creds.ActorIdentity.UserId
	}
	return SocioUserId(creds.ActorIdentity.SocioId)
}

func SocioUserId(socioId string) string {
	if socioId == "" {
		return ""
	}
	return "socio:" + socioId
}

func TrackEvent(ctx context.Context, event models.AnalyticsEvent, properties map[string]any) {
	creds, found := utils.CredentialsFromCtx(ctx)
	if !found {
		return
	}
	TrackEventWithUserId(ctx, event, userIdOfCredentials(creds), properties)
}

func TrackEventWithUserId(ctx context.Context, event models.AnalyticsEvent, userId string, properties map[string]any) {
	client := utils.SegmentClientFromContext(ctx)
	if client == nil || userId == "" {
		return
	}

	segmentProperties := analytics.NewProperties()
	for k, v := range properties {
		segmentProperties.Set(k, v)
	}
	if err := client.Enqueue(analytics.Track{
		Event:      string(event),
		UserId:     userId,
		Properties: segmentProperties,
	}); err != nil {
		utils.LoggerFromContext(ctx).WarnContext(ctx, "could not enqueue segment event", "event", event, "error", err.Error())
	}
}

func Identify(ctx context.Context, creds models.Credentials) {
	client := utils.SegmentClientFromContext(ctx)
	userId := userIdOfCredentials(creds)
	if client == nil || userId == "" {
		return
	}

	traits := analytics.NewTraits().
		SetEmail(creds.ActorIdentity.Email).
		SetName(creds.ActorIdentity.Name).
		Set("role", creds.Role.String())
	if err := client.Enqueue(analytics.Identify{
		UserId: userId,
		Traits: traits,
	}); err != nil {
		utils.LoggerFromContext(ctx).WarnContext(ctx, "could not enqueue segment identify", "error", err.Error())
	}
}
