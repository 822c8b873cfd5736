package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
)

type PortalDbRepository struct {
	mock.Mock
}

// socios

func (m *PortalDbRepository) CreateSocio(ctx context.Context, exec repositories.Executor, input models.CreateSocioInput) (models.Socio, error) {
	args := m.Called(ctx, exec, input)
	return args.Get(0).(models.Socio), args.Error(1)
}

func (m *PortalDbRepository) GetSocioById(ctx context.Context, exec repositories.Executor, socioId string) (models.Socio, error) {
	args := m.Called(ctx, exec, socioId)
	return args.Get(0).(models.Socio), args.Error(1)
}

func (m *PortalDbRepository) GetSocioByRut(ctx context.Context, exec repositories.Executor, rut string) (*models.Socio, error) {
	args := m.Called(ctx, exec, rut)
	return args.Get(0).(*models.Socio), args.Error(1)
}

func (m *PortalDbRepository) ListSocios(ctx context.Context, exec repositories.Executor, filters models.SocioFilters,
	pagination models.PaginationAndSorting,
) ([]models.Socio, error) {
	args := m.Called(ctx, exec, filters, pagination)
	return args.Get(0).([]models.Socio), args.Error(1)
}

func (m *PortalDbRepository) UpdateSocio(ctx context.Context, exec repositories.Executor, input models.UpdateSocioInput) error {
	args := m.Called(ctx, exec, input)
	return args.Error(0)
}

func (m *PortalDbRepository) UpdateSocioPassword(ctx context.Context, exec repositories.Executor, socioId, passwordHash string) error {
	args := m.Called(ctx, exec, socioId, passwordHash)
	return args.Error(0)
}

// tarifas

func (m *PortalDbRepository) CreateTarifa(ctx context.Context, exec repositories.Executor, input models.CreateTarifaInput) (string, error) {
	args := m.Called(ctx, exec, input)
	return args.String(0), args.Error(1)
}

func (m *PortalDbRepository) GetTarifa(ctx context.Context, exec repositories.Executor, tarifaId string) (models.Tarifa, error) {
	args := m.Called(ctx, exec, tarifaId)
	return args.Get(0).(models.Tarifa), args.Error(1)
}

func (m *PortalDbRepository) ListTarifas(ctx context.Context, exec repositories.Executor) ([]models.Tarifa, error) {
	args := m.Called(ctx, exec)
	return args.Get(0).([]models.Tarifa), args.Error(1)
}

func (m *PortalDbRepository) UpdateTarifa(ctx context.Context, exec repositories.Executor, input models.UpdateTarifaInput) error {
	args := m.Called(ctx, exec, input)
	return args.Error(0)
}

func (m *PortalDbRepository) ReplaceEscalones(ctx context.Context, exec repositories.Executor, tarifaId string,
	escalones []models.EscalonInput,
) error {
	args := m.Called(ctx, exec, tarifaId, escalones)
	return args.Error(0)
}

func (m *PortalDbRepository) ActivateTarifa(ctx context.Context, exec repositories.Transaction, tarifaId string) error {
	args := m.Called(ctx, exec, tarifaId)
	return args.Error(0)
}

// lecturas

func (m *PortalDbRepository) CreateLectura(ctx context.Context, exec repositories.Executor, lectura models.Lectura) (models.Lectura, error) {
	args := m.Called(ctx, exec, lectura)
	return args.Get(0).(models.Lectura), args.Error(1)
}

func (m *PortalDbRepository) LastLecturaBefore(ctx context.Context, exec repositories.Executor, socioId string,
	periodo models.Periodo,
) (*models.Lectura, error) {
	args := m.Called(ctx, exec, socioId, periodo)
	return args.Get(0).(*models.Lectura), args.Error(1)
}

func (m *PortalDbRepository) ListLecturas(ctx context.Context, exec repositories.Executor, filters models.LecturaFilters,
	pagination models.PaginationAndSorting,
) ([]models.Lectura, error) {
	args := m.Called(ctx, exec, filters, pagination)
	return args.Get(0).([]models.Lectura), args.Error(1)
}

// boletas

func (m *PortalDbRepository) GetBoletaById(ctx context.Context, exec repositories.Executor, boletaId string, forUpdate bool) (models.Boleta, error) {
	args := m.Called(ctx, exec, boletaId, forUpdate)
	return args.Get(0).(models.Boleta), args.Error(1)
}

func (m *PortalDbRepository) ListBoletas(ctx context.Context, exec repositories.Executor, filters models.BoletaFilters,
	pagination models.PaginationAndSorting,
) ([]models.Boleta, error) {
	args := m.Called(ctx, exec, filters, pagination)
	return args.Get(0).([]models.Boleta), args.Error(1)
}

func (m *PortalDbRepository) ListBoletasByIds(ctx context.Context, exec repositories.Executor, boletaIds []string,
	forUpdate bool,
) ([]models.Boleta, error) {
	args := m.Called(ctx, exec, boletaIds, forUpdate)
	return args.Get(0).([]models.Boleta), args.Error(1)
}

func (m *PortalDbRepository) SetBoletaEstado(ctx context.Context, exec repositories.Executor, boletaId string,
	estado models.BoletaEstado,
) error {
	args := m.Called(ctx, exec, boletaId, estado)
	return args.Error(0)
}

func (m *PortalDbRepository) AddSocioSaldoFavor(ctx context.Context, exec repositories.Executor, socioId string, amount int64) error {
	args := m.Called(ctx, exec, socioId, amount)
	return args.Error(0)
}

func (m *PortalDbRepository) MarkPagoBoletasCredited(ctx context.Context, exec repositories.Executor, pagoId string, boletaIds []string) error {
	args := m.Called(ctx, exec, pagoId, boletaIds)
	return args.Error(0)
}

func (m *PortalDbRepository) MarkBoletasPagadas(ctx context.Context, exec repositories.Executor, boletaIds []string,
	pagadaAt time.Time,
) error {
	args := m.Called(ctx, exec, boletaIds, pagadaAt)
	return args.Error(0)
}

// pagos

func (m *PortalDbRepository) PendingPagosOnBoletas(ctx context.Context, exec repositories.Executor, boletaIds []string,
	createdAfter time.Time,
) ([]models.Pago, error) {
	args := m.Called(ctx, exec, boletaIds, createdAfter)
	return args.Get(0).([]models.Pago), args.Error(1)
}

func (m *PortalDbRepository) CreatePago(ctx context.Context, exec repositories.Transaction, pago models.PagoToCreate) error {
	args := m.Called(ctx, exec, pago)
	return args.Error(0)
}

func (m *PortalDbRepository) GetPagoById(ctx context.Context, exec repositories.Executor, pagoId string, forUpdate bool) (models.Pago, error) {
	args := m.Called(ctx, exec, pagoId, forUpdate)
	return args.Get(0).(models.Pago), args.Error(1)
}

func (m *PortalDbRepository) ListPagos(ctx context.Context, exec repositories.Executor, filters models.PagoFilters,
	pagination models.PaginationAndSorting,
) ([]models.Pago, error) {
	args := m.Called(ctx, exec, filters, pagination)
	return args.Get(0).([]models.Pago), args.Error(1)
}

func (m *PortalDbRepository) SetPagoGatewayToken(ctx context.Context, exec repositories.Executor, pagoId, token string) error {
	args := m.Called(ctx, exec, pagoId, token)
	return args.Error(0)
}

func (m *PortalDbRepository) ResolvePago(ctx context.Context, exec repositories.Executor, pagoId string,
	resolution models.PagoResolution,
) (bool, error) {
	args := m.Called(ctx, exec, pagoId, resolution)
	return args.Bool(0), args.Error(1)
}

func (m *PortalDbRepository) AnnulPago(ctx context.Context, exec repositories.Executor, pagoId string, motivo string) error {
	args := m.Called(ctx, exec, pagoId, motivo)
	return args.Error(0)
}

func (m *PortalDbRepository) ApprovedPagoExistsForBoleta(ctx context.Context, exec repositories.Executor, boletaId string) (bool, error) {
	args := m.Called(ctx, exec, boletaId)
	return args.Bool(0), args.Error(1)
}

// chat

func (m *PortalDbRepository) CreateChatMessage(ctx context.Context, exec repositories.Executor,
	message models.ChatMessageToCreate,
) (models.ChatMessage, error) {
	args := m.Called(ctx, exec, message)
	return args.Get(0).(models.ChatMessage), args.Error(1)
}

func (m *PortalDbRepository) ListChatMessages(ctx context.Context, exec repositories.Executor, socioId string,
	pagination models.PaginationAndSorting,
) ([]models.ChatMessage, error) {
	args := m.Called(ctx, exec, socioId, pagination)
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

func (m *PortalDbRepository) MarkChatRead(ctx context.Context, exec repositories.Executor, socioId string,
	readBy models.ChatSender,
) (int64, error) {
	args := m.Called(ctx, exec, socioId, readBy)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PortalDbRepository) ListChatConversations(ctx context.Context, exec repositories.Executor) ([]models.ChatConversation, error) {
	args := m.Called(ctx, exec)
	return args.Get(0).([]models.ChatConversation), args.Error(1)
}

// reconciliation

func (m *PortalDbRepository) ListReconciliationRuns(ctx context.Context, exec repositories.Executor,
	pagination models.PaginationAndSorting,
) ([]models.ReconciliationRun, error) {
	args := m.Called(ctx, exec, pagination)
	return args.Get(0).([]models.ReconciliationRun), args.Error(1)
}
