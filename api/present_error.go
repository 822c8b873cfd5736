package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/portal-apr/portal-apr-backend/dto"
	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
	"github.com/portal-apr/portal-apr-backend/utils"
)

var errorCodes = []struct {
	err  error
	code dto.ErrorCode
}{
	{models.ErrNoActiveTarifa, dto.NoActiveTarifa},
	{models.ErrMissingLectura, dto.MissingLectura},
	{models.ErrBoletaAlreadyIssued, dto.BoletaAlreadyIssued},
	{models.ErrBoletaPendingCheckout, dto.BoletaPendingPayment},
	{models.ErrBoletaNotPayable, dto.BoletaNotPayable},
	{models.ErrBoletaAlreadyPaid, dto.BoletaNotPayable},
	{models.ErrSocioNotActive, dto.SocioNotActive},
	{models.ErrUnknownUser, dto.UnknownUser},
	{models.ErrGatewayUnavailable, dto.PaymentGatewayUnavailable},
	{models.ErrGatewayRejected, dto.PaymentGatewayRejected},
}

func errorCode(err error) dto.ErrorCode {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

func presentError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	ctx := c.Request.Context()
	logger := utils.LoggerFromContext(ctx)
	errorResponse := dto.APIErrorResponse{
		Message:   err.Error(),
		ErrorCode: errorCode(err),
	}

	var validationErrors validator.ValidationErrors
	var unmarshalTypeError *json.UnmarshalTypeError
	var fieldErrors models.FieldValidationError

	switch {
	case errors.As(err, &validationErrors):
		errorResponse.ErrorCode = dto.InvalidPayload
		errorResponse.Messages = pure_utils.Map(validationErrors, adaptFieldValidationError)
		c.JSON(http.StatusBadRequest, errorResponse)
	case errors.As(err, &unmarshalTypeError):
		errorResponse.ErrorCode = dto.InvalidPayload
		c.JSON(http.StatusBadRequest, errorResponse)
	case errors.As(err, &fieldErrors):
		errorResponse.ErrorCode = dto.InvalidPayload
		for field, message := range fieldErrors {
			errorResponse.Messages = append(errorResponse.Messages, "field `"+field+"` "+message)
		}
		c.JSON(http.StatusBadRequest, errorResponse)
	case errors.Is(err, models.BadParameterError):
		logger.InfoContext(ctx, "BadParameterError", "error", err.Error())
		c.JSON(http.StatusBadRequest, errorResponse)
	case errors.Is(err, models.UnAuthorizedError):
		logger.InfoContext(ctx, "UnAuthorizedError", "error", err.Error())
		c.JSON(http.StatusUnauthorized, errorResponse)
	case errors.Is(err, models.ForbiddenError):
		logger.InfoContext(ctx, "ForbiddenError", "error", err.Error())
		c.JSON(http.StatusForbidden, errorResponse)
	case errors.Is(err, models.NotFoundError):
		logger.InfoContext(ctx, "NotFoundError", "error", err.Error())
		c.JSON(http.StatusNotFound, errorResponse)
	case errors.Is(err, models.ConflictError):
		logger.InfoContext(ctx, "ConflictError", "error", err.Error())
		c.JSON(http.StatusConflict, errorResponse)
	case errors.Is(err, models.UnprocessableEntityError):
		logger.InfoContext(ctx, "UnprocessableEntityError", "error", err.Error())
		c.JSON(http.StatusUnprocessableEntity, errorResponse)
	case errors.Is(err, models.ErrGatewayUnavailable), errors.Is(err, models.ErrGatewayRejected):
		logger.WarnContext(ctx, "payment gateway error", "error", err.Error())
		c.JSON(http.StatusBadGateway, errorResponse)
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		utils.LogAndReportSentryError(ctx, err)
		c.JSON(http.StatusInternalServerError, dto.APIErrorResponse{
			Message: "An unexpected error occurred. Please try again later, or contact support if the problem persists.",
		})
	}
	_ = c.Error(err)
	return true
}

// presentBindingError renders the errors of ShouldBind*. Malformed bodies are bad parameters.
func presentBindingError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	var unmarshalTypeError *json.UnmarshalTypeError
	if errors.As(err, &validationErrors) || errors.As(err, &unmarshalTypeError) {
		presentError(c, err)
		return
	}
	presentError(c, errors.Wrap(models.BadParameterError, err.Error()))
}
