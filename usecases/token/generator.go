package token

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/repositories/clock"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/usecases/tracking"
)

var errInvalidLogin = errors.Wrap(models.UnAuthorizedError, "invalid login or password")

type accountRepository interface {
	UserByEmail(ctx context.Context, exec repositories.Executor, email string) (*models.User, error)
	GetSocioByRut(ctx context.Context, exec repositories.Executor, rut string) (*models.Socio, error)
}

type encoder interface {
	EncodeToken(expirationTime time.Time, creds models.Credentials) (string, error)
}

type Generator struct {
	executorFactory executor_factory.ExecutorFactory
	repository      accountRepository
	encoder         encoder
	clock           clock.Clock
	tokenLifetime   time.Duration
}

func NewGenerator(
	executorFactory executor_factory.ExecutorFactory,
	repository accountRepository,
	encoder encoder,
	tokenLifetime int,
) *Generator {
	return &Generator{
		executorFactory: executorFactory,
		repository:      repository,
		encoder:         encoder,
		clock:           clock.New(),
		tokenLifetime:   time.Duration(tokenLifetime) * time.Minute,
	}
}

func (g *Generator) encodeToken(ctx context.Context, credentials models.Credentials) (string, time.Time, error) {
	expirationTime := g.clock.Now().Add(g.tokenLifetime)

	token, err := g.encoder.EncodeToken(expirationTime, credentials)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "encoder.EncodeToken error")
	}

	tracking.Identify(ctx, credentials)
	tracking.TrackEvent(ctx, models.AnalyticsTokenCreated, map[string]any{"role": credentials.Role.String()})
	return token, expirationTime, nil
}

func (g *Generator) AdminLogin(ctx context.Context, email, password string) (string, time.Time, models.Credentials, error) {
	user, err := g.repository.UserByEmail(ctx, g.executorFactory.NewExecutor(), email)
	if err != nil {
		return "", time.Time{}, models.Credentials{}, errors.Wrap(err, "repository.UserByEmail error")
	}

	hash := ""
	if user != nil {
		hash = user.PasswordHash
	}
	if !checkPassword(hash, password) || user == nil {
		return "", time.Time{}, models.Credentials{}, errInvalidLogin
	}

	credentials := user.IntoCredentials()
	token, expiresAt, err := g.encodeToken(ctx, credentials)
	return token, expiresAt, credentials, err
}

func (g *Generator) SocioLogin(ctx context.Context, rut, password string) (string, time.Time, models.Credentials, error) {
	normalized, err := pure_utils.NormalizeRut(rut)
	if err != nil {
		return "", time.Time{}, models.Credentials{}, errInvalidLogin
	}

	socio, err := g.repository.GetSocioByRut(ctx, g.executorFactory.NewExecutor(), normalized)
	if err != nil {
		return "", time.Time{}, models.Credentials{}, errors.Wrap(err, "repository.GetSocioByRut error")
	}

	hash := ""
	if socio != nil {
		hash = socio.PasswordHash
	}
	if !checkPassword(hash, password) || socio == nil {
		return "", time.Time{}, models.Credentials{}, errInvalidLogin
	}
	if socio.Estado == models.SocioRetirado {
		return "", time.Time{}, models.Credentials{}, errors.Wrap(models.ErrSocioNotActive, "socio is retired")
	}

	credentials := socio.IntoCredentials()
	token, expiresAt, err := g.encodeToken(ctx, credentials)
	return token, expiresAt, credentials, err
}
