package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/usecases"
	"github.com/portal-apr/portal-apr-backend/utils"
)

// maximum size of a gateway callback body
const maxGatewayPayloadSize = 64 * 1024

// callbackPayload flattens the query string and the form body of a gateway callback. Gateways
// send either, and webpay sends both on aborted payments.
func callbackPayload(c *gin.Context) map[string]string {
	payload := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			payload[key] = values[0]
		}
	}
	if c.Request.Method == http.MethodPost &&
		strings.HasPrefix(c.ContentType(), "application/x-www-form-urlencoded") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxGatewayPayloadSize)
		if err := c.Request.ParseForm(); err == nil {
			for key, values := range c.Request.PostForm {
				if len(values) > 0 {
					payload[key] = values[0]
				}
			}
		}
	}
	return payload
}

func callbackMetodo(c *gin.Context) (models.MetodoPago, bool) {
	metodo := models.MetodoPagoFrom(c.Param("gateway"))
	if metodo == "" || metodo.IsManual() {
		c.Status(http.StatusNotFound)
		return "", false
	}
	return metodo, true
}

// handleGatewayReturn is where the browser of the socio lands after paying. The payment is
// confirmed with the gateway, then the socio is redirected to the result page of the portal.
func handleGatewayReturn(uc usecases.Usecases, conf Configuration) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		metodo, ok := callbackMetodo(c)
		if !ok {
			return
		}

		usecase := uc.NewGatewayCallbackUsecase()
		pago, err := usecase.ConfirmGatewayPayment(ctx, metodo, callbackPayload(c))
		if err != nil {
			utils.LoggerFromContext(ctx).WarnContext(ctx, "could not confirm the payment on return",
				"gateway", metodo, "error", err.Error())
			query := url.Values{"estado": {"error"}}
			c.Redirect(http.StatusSeeOther,
				strings.TrimSuffix(conf.PortalAppUrl, "/")+"/pagos/resultado?"+query.Encode())
			return
		}
		c.Redirect(http.StatusSeeOther, usecase.ResultUrl(pago))
	}
}

// handleGatewayNotify receives the server to server notifications. Any error status makes the
// gateway retry the notification later.
func handleGatewayNotify(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		metodo, ok := callbackMetodo(c)
		if !ok {
			return
		}

		payload := callbackPayload(c)
		if strings.HasPrefix(c.ContentType(), "application/json") {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxGatewayPayloadSize)
			raw, err := c.GetRawData()
			if err != nil || !gjson.ValidBytes(raw) {
				presentError(c, errors.Wrap(models.BadParameterError, "invalid json notification"))
				return
			}
			flattenJson(payload, "", gjson.ParseBytes(raw))
		}

		usecase := uc.NewGatewayCallbackUsecase()
		pago, err := usecase.ConfirmGatewayPayment(ctx, metodo, payload)
		if presentError(c, err) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"estado": pago.Estado,
		})
	}
}

// flattenJson adds the scalar leaves of a json notification to the payload, with dotted keys
// ("data.id"). Query parameters win over the body.
func flattenJson(payload map[string]string, prefix string, value gjson.Result) {
	value.ForEach(func(key, child gjson.Result) bool {
		name := key.String()
		if prefix != "" {
			name = prefix + "." + name
		}
		switch {
		case child.IsObject():
			flattenJson(payload, name, child)
		case child.IsArray():
		default:
			if _, ok := payload[name]; !ok {
				payload[name] = child.String()
			}
		}
		return true
	})
}
