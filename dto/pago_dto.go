package dto

import (
	"time"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

type Pago struct {
	Id                   string     `json:"id"`
	SocioId              string     `json:"socio_id"`
	Monto                int64      `json:"monto"`
	MontoFormateado      string     `json:"monto_formateado"`
	Metodo               string     `json:"metodo"`
	Estado               string     `json:"estado"`
	BuyOrder             string     `json:"buy_order"`
	GatewayTransactionId string     `json:"gateway_transaction_id,omitempty"`
	BoletaIds            []string   `json:"boleta_ids"`
	CreditedBoletaIds    []string   `json:"credited_boleta_ids,omitempty"`
	RegistradoPor        string     `json:"registrado_por,omitempty"`
	MotivoRechazo        string     `json:"motivo_rechazo,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	ConfirmadoAt         *time.Time `json:"confirmado_at"`
}

func AdaptPagoDto(p models.Pago) Pago {
	boletaIds := p.BoletaIds
	if boletaIds == nil {
		boletaIds = []string{}
	}
	return Pago{
		Id:                   p.Id,
		SocioId:              p.SocioId,
		Monto:                p.Monto,
		MontoFormateado:      utils.FormatCLP(p.Monto),
		Metodo:               string(p.Metodo),
		Estado:               string(p.Estado),
		BuyOrder:             p.BuyOrder,
		GatewayTransactionId: p.GatewayTransactionId,
		BoletaIds:            boletaIds,
		CreditedBoletaIds:    p.CreditedBoletaIds,
		RegistradoPor:        p.RegistradoPor,
		MotivoRechazo:        p.MotivoRechazo,
		CreatedAt:            p.CreatedAt,
		ConfirmadoAt:         p.ConfirmadoAt,
	}
}

type PagoFilters struct {
	SocioId string `form:"socio_id" binding:"omitempty,uuid"`
	Estado  string `form:"estado" binding:"omitempty,oneof=pendiente aprobado rechazado expirado anulado"`
	Metodo  string `form:"metodo"`
}

func AdaptPagoFilters(filters PagoFilters) models.PagoFilters {
	return models.PagoFilters{
		SocioId: filters.SocioId,
		Estado:  models.PagoEstadoFrom(filters.Estado),
		Metodo:  models.MetodoPagoFrom(filters.Metodo),
	}
}

type CheckoutBody struct {
	BoletaIds []string `json:"boleta_ids" binding:"required,min=1,max=24,dive,uuid"`
	Metodo    string   `json:"metodo" binding:"required"`
}

type CheckoutResponse struct {
	Pago        Pago   `json:"pago"`
	RedirectUrl string `json:"redirect_url"`
}

func AdaptCheckoutDto(c models.Checkout) CheckoutResponse {
	return CheckoutResponse{
		Pago:        AdaptPagoDto(c.Pago),
		RedirectUrl: c.RedirectUrl,
	}
}

type ManualPaymentBody struct {
	SocioId   string   `json:"socio_id" binding:"required,uuid"`
	BoletaIds []string `json:"boleta_ids" binding:"required,min=1,dive,uuid"`
	Metodo    string   `json:"metodo" binding:"required,oneof=efectivo transferencia"`
	// optional, checked against the total of the boletas
	Monto int64 `json:"monto" binding:"min=0"`
}

func AdaptManualPaymentInput(body ManualPaymentBody) models.ManualPaymentInput {
	return models.ManualPaymentInput{
		SocioId:   body.SocioId,
		BoletaIds: body.BoletaIds,
		Metodo:    models.MetodoPagoFrom(body.Metodo),
		Monto:     body.Monto,
	}
}

type AnnulPagoBody struct {
	Motivo string `json:"motivo" binding:"required,max=500"`
}
