package api

import (
	"net/http"
	"time"

	limits "github.com/gin-contrib/size"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	timeout "github.com/vearne/gin-timeout"

	"github.com/portal-apr/portal-apr-backend/usecases"
	"github.com/portal-apr/portal-apr-backend/utils"
)

const (
	maxBodySize      = 1 * 1024 * 1024 // 1MB
	maxBatchBodySize = 8 * 1024 * 1024 // 8MB
)

func timeoutMiddleware(duration time.Duration) gin.HandlerFunc {
	return timeout.Timeout(
		timeout.WithTimeout(duration),
		timeout.WithErrorHttpCode(http.StatusRequestTimeout),
		timeout.WithDefaultMsg("Request timeout"),
	)
}

func addRoutes(r *gin.Engine, conf Configuration, uc usecases.Usecases, auth utils.Authentication) {
	tom := timeoutMiddleware(conf.DefaultTimeout)
	paymentTom := timeoutMiddleware(conf.PaymentTimeout)
	body := limits.RequestSizeLimiter(maxBodySize)

	r.GET("/liveness", tom, handleLivenessProbe(uc))
	if conf.EnablePrometheus {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.POST("/auth/admin/login", tom, body, handleAdminLogin(uc))
	r.POST("/auth/socio/login", tom, body, handleSocioLogin(uc))

	// gateway callbacks are not authenticated: their outcome is read back from the gateway
	r.GET("/gateways/:gateway/return", paymentTom, handleGatewayReturn(uc, conf))
	r.POST("/gateways/:gateway/return", paymentTom, handleGatewayReturn(uc, conf))
	r.POST("/gateways/:gateway/notify", paymentTom, handleGatewayNotify(uc))

	// browsers cannot set headers on websocket upgrades, and the timeout middleware cannot
	// hijack connections
	r.GET("/chat/ws", auth.AuthedBy(utils.BearerToken, utils.QueryToken), handleChatWebsocket(uc, conf))

	router := r.Group("", auth.AuthedBy(utils.BearerToken), body)

	router.GET("/credentials", tom, handleGetCredentials())

	router.GET("/socios", tom, handleListSocios(uc))
	router.POST("/socios", tom, handlePostSocio(uc))
	router.GET("/socios/:socio_id", tom, handleGetSocio(uc))
	router.PATCH("/socios/:socio_id", tom, handlePatchSocio(uc))
	router.POST("/socios/:socio_id/password", tom, handleSetSocioPassword(uc))

	router.GET("/tarifas", tom, handleListTarifas(uc))
	router.POST("/tarifas", tom, handlePostTarifa(uc))
	router.GET("/tarifas/active", tom, handleGetActiveTarifa(uc))
	router.POST("/tarifas/simulate", tom, handleSimulateTarifa(uc))
	router.GET("/tarifas/:tarifa_id", tom, handleGetTarifa(uc))
	router.PATCH("/tarifas/:tarifa_id", tom, handlePatchTarifa(uc))
	router.POST("/tarifas/:tarifa_id/activate", tom, handleActivateTarifa(uc))

	router.GET("/lecturas", tom, handleListLecturas(uc))
	router.POST("/lecturas", tom, handlePostLectura(uc))
	r.POST("/lecturas/batch", auth.AuthedBy(utils.BearerToken), limits.RequestSizeLimiter(maxBatchBodySize),
		paymentTom, handlePostLecturasBatch(uc))

	router.GET("/boletas", tom, handleListBoletas(uc))
	router.POST("/boletas/issue", tom, handleIssueBoletas(uc))
	router.POST("/boletas/export", paymentTom, handleExportBoletas(uc))
	router.GET("/boletas/:boleta_id", tom, handleGetBoleta(uc))
	router.POST("/boletas/:boleta_id/annul", tom, handleAnnulBoleta(uc))

	router.GET("/pagos", tom, handleListPagos(uc))
	router.GET("/pagos/metodos", tom, handleListMetodosPago(uc))
	router.POST("/pagos/checkout", paymentTom, handleCheckout(uc))
	router.POST("/pagos/manual", tom, handleManualPayment(uc))
	router.GET("/pagos/:pago_id", tom, handleGetPago(uc))
	router.POST("/pagos/:pago_id/annul", tom, handleAnnulPago(uc))

	router.POST("/admin/reconciliation/run", paymentTom, handleRunReconciliation(uc))
	router.GET("/admin/reconciliation/runs", tom, handleListReconciliationRuns(uc))

	router.GET("/chat/messages", tom, handleListChatMessages(uc))
	router.POST("/chat/messages", tom, handlePostChatMessage(uc))
	router.POST("/chat/read", tom, handleMarkChatRead(uc))
	router.GET("/chat/conversations", tom, handleListChatConversations(uc))

	router.GET("/admin/users", tom, handleGetAllUsers(uc))
	router.POST("/admin/users", tom, handlePostUser(uc))
	router.POST("/admin/users/:user_id/password", tom, handleSetUserPassword(uc))
	router.DELETE("/admin/users/:user_id", tom, handleDeleteUser(uc))
}
