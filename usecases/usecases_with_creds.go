package usecases

import (
	"context"
	"log/slog"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories/clock"
	"github.com/portal-apr/portal-apr-backend/usecases/security"
)

type UsecasesWithCreds struct {
	Usecases
	Credentials models.Credentials
	Logger      *slog.Logger
	Context     context.Context
}

func (usecases *UsecasesWithCreds) NewEnforceSecurity() *security.EnforceSecurityImpl {
	return security.NewEnforceSecurity(usecases.Credentials)
}

func (usecases *UsecasesWithCreds) NewSocioUsecase() SocioUsecase {
	return SocioUsecase{
		enforceSecurity:    usecases.NewEnforceSecurity(),
		executorFactory:    usecases.NewExecutorFactory(),
		transactionFactory: usecases.NewTransactionFactory(),
		repository:         usecases.Repositories.PortalDbRepository,
	}
}

func (usecases *UsecasesWithCreds) NewTarifaUsecase() TarifaUsecase {
	return TarifaUsecase{
		enforceSecurity:    usecases.NewEnforceSecurity(),
		executorFactory:    usecases.NewExecutorFactory(),
		transactionFactory: usecases.NewTransactionFactory(),
		repository:         usecases.Repositories.PortalDbRepository,
		activeTarifa:       usecases.activeTarifa,
	}
}

func (usecases *UsecasesWithCreds) NewLecturaUsecase() LecturaUsecase {
	return LecturaUsecase{
		enforceSecurity: usecases.NewEnforceSecurity(),
		executorFactory: usecases.NewExecutorFactory(),
		repository:      usecases.Repositories.PortalDbRepository,
		clock:           clock.New(),
	}
}

func (usecases *UsecasesWithCreds) NewBoletaUsecase() BoletaUsecase {
	return BoletaUsecase{
		enforceSecurity:    usecases.NewEnforceSecurity(),
		executorFactory:    usecases.NewExecutorFactory(),
		transactionFactory: usecases.NewTransactionFactory(),
		repository:         usecases.Repositories.PortalDbRepository,
		issuer:             usecases.NewIssuer(),
		exporter:           usecases.NewExporter(),
		taskQueue:          usecases.Repositories.TaskQueueRepository,
	}
}

func (usecases *UsecasesWithCreds) NewPagoUsecase() PagoUsecase {
	return usecases.newPagoUsecase(usecases.Credentials)
}

func (usecases *UsecasesWithCreds) NewReconciliationUsecase() ReconciliationUsecase {
	return ReconciliationUsecase{
		enforceSecurity: usecases.NewEnforceSecurity(),
		executorFactory: usecases.NewExecutorFactory(),
		repository:      usecases.Repositories.PortalDbRepository,
		reconciler:      usecases.NewReconciler(),
	}
}

func (usecases *UsecasesWithCreds) NewChatUsecase() ChatUsecase {
	return ChatUsecase{
		enforceSecurity: usecases.NewEnforceSecurity(),
		executorFactory: usecases.NewExecutorFactory(),
		repository:      usecases.Repositories.PortalDbRepository,
		hub:             usecases.chatHub,
	}
}

func (usecases *UsecasesWithCreds) NewUserUseCase() UserUseCase {
	return UserUseCase{
		enforceUserSecurity: usecases.NewEnforceSecurity(),
		executorFactory:     usecases.NewExecutorFactory(),
		userRepository:      usecases.Repositories.PortalDbRepository,
	}
}
