package models

import (
	"slices"
	"time"
)

type PagoEstado string

const (
	PagoPendiente PagoEstado = "pendiente"
	PagoAprobado  PagoEstado = "aprobado"
	PagoRechazado PagoEstado = "rechazado"
	PagoExpirado  PagoEstado = "expirado"
	PagoAnulado   PagoEstado = "anulado"
)

func PagoEstadoFrom(s string) PagoEstado {
	switch e := PagoEstado(s); e {
	case PagoPendiente, PagoAprobado, PagoRechazado, PagoExpirado, PagoAnulado:
		return e
	}
	return ""
}

func (e PagoEstado) IsFinal() bool {
	return e != PagoPendiente
}

type MetodoPago string

const (
	MetodoWebpay        MetodoPago = "webpay"
	MetodoFlow          MetodoPago = "flow"
	MetodoMercadoPago   MetodoPago = "mercadopago"
	MetodoPaypal        MetodoPago = "paypal"
	MetodoEfectivo      MetodoPago = "efectivo"
	MetodoTransferencia MetodoPago = "transferencia"
	// in-memory gateway, only registered in development
	MetodoFake MetodoPago = "fake"
)

func MetodoPagoFrom(s string) MetodoPago {
	switch m := MetodoPago(s); m {
	case MetodoWebpay, MetodoFlow, MetodoMercadoPago, MetodoPaypal, MetodoEfectivo, MetodoTransferencia, MetodoFake:
		return m
	}
	return ""
}

// IsManual is true for payments registered at the office by staff
func (m MetodoPago) IsManual() bool {
	return m == MetodoEfectivo || m == MetodoTransferencia
}

type Pago struct {
	Id                   string
	SocioId              string
	Monto                int64
	Metodo               MetodoPago
	Estado               PagoEstado
	BuyOrder             string
	GatewayToken         string
	GatewayTransactionId string
	BoletaIds            []string
	// boletas that were no longer payable when the pago was approved: their amount went to the
	// saldo a favor of the socio instead
	CreditedBoletaIds []string
	RegistradoPor     string
	MotivoRechazo     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ConfirmadoAt      *time.Time
}

// AppliedBoletaIds are the boletas the pago actually pays
func (p Pago) AppliedBoletaIds() []string {
	if len(p.CreditedBoletaIds) == 0 {
		return p.BoletaIds
	}
	applied := make([]string, 0, len(p.BoletaIds))
	for _, id := range p.BoletaIds {
		if !slices.Contains(p.CreditedBoletaIds, id) {
			applied = append(applied, id)
		}
	}
	return applied
}

type PagoToCreate struct {
	Id            string
	SocioId       string
	Monto         int64
	Metodo        MetodoPago
	Estado        PagoEstado
	BuyOrder      string
	BoletaIds     []string
	RegistradoPor string
}

type PagoFilters struct {
	SocioId string
	Estado  PagoEstado
	Metodo  MetodoPago
}

type CheckoutInput struct {
	SocioId   string
	BoletaIds []string
	Metodo    MetodoPago
}

type Checkout struct {
	Pago        Pago
	RedirectUrl string
}

type ManualPaymentInput struct {
	SocioId   string
	BoletaIds []string
	Metodo    MetodoPago
	Monto     int64
}

// PagoResolution is the final state a pending pago is moved to
type PagoResolution struct {
	Estado               PagoEstado
	GatewayTransactionId string
	Motivo               string
}
