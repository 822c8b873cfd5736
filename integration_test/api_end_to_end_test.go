package integration

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/require"

	"github.com/portal-apr/portal-apr-backend/repositories"
)

func newExpect(t *testing.T) *httpexpect.Expect {
	return httpexpect.WithConfig(httpexpect.Config{
		BaseURL:  testServer.URL,
		Reporter: httpexpect.NewAssertReporter(t),
		Printers: []httpexpect.Printer{httpexpect.NewCompactPrinter(t)},
	})
}

func login(e *httpexpect.Expect, path string, body map[string]any) string {
	return e.POST(path).WithJSON(body).
		Expect().Status(http.StatusOK).
		JSON().Object().Value("access_token").String().NotEmpty().Raw()
}

// TestBillingCycle runs one month of the committee: tarifa, socio, reading, boleta, online
// payment through the fake gateway, reconciliation.
func TestBillingCycle(t *testing.T) {
	skipWithoutDb(t)
	e := newExpect(t)

	e.GET("/liveness").Expect().Status(http.StatusOK).
		JSON().Path("$.schema_version").Number().IsEqual(repositories.LatestMigrationVersion())
	e.GET("/socios").Expect().Status(http.StatusUnauthorized)

	adminToken := login(e, "/auth/admin/login", map[string]any{
		"email":    adminEmail,
		"password": adminPassword,
	})
	admin := e.Builder(func(req *httpexpect.Request) {
		req.WithHeader("Authorization", "Bearer "+adminToken)
	})

	admin.GET("/credentials").Expect().Status(http.StatusOK).
		JSON().Path("$.credentials.role").String().IsEqual("ADMIN")

	// wrong password
	e.POST("/auth/admin/login").WithJSON(map[string]any{
		"email":    adminEmail,
		"password": "not-the-password",
	}).Expect().Status(http.StatusUnauthorized)

	admin.POST("/tarifas").WithJSON(map[string]any{
		"nombre":     "Tarifa 2025",
		"cargo_fijo": 3000,
		"modo":       "progresivo",
		"activa":     true,
		"escalones": []map[string]any{
			{"desde_m3": 0, "hasta_m3": 10, "precio_m3": 500},
			{"desde_m3": 10, "precio_m3": 800},
		},
	}).Expect().Status(http.StatusCreated).
		JSON().Path("$.tarifa.activa").Boolean().IsTrue()

	admin.POST("/tarifas/simulate").WithJSON(map[string]any{"consumo_m3": 15}).
		Expect().Status(http.StatusOK).
		JSON().Path("$.cargos.total").Number().IsEqual(12000)

	socioId := admin.POST("/socios").WithJSON(map[string]any{
		"numero_socio": 1,
		"rut":          "12.345.678-5",
		"nombres":      "María",
		"apellidos":    "González",
	}).Expect().Status(http.StatusCreated).
		JSON().Path("$.socio.id").String().NotEmpty().Raw()

	// same rut twice
	admin.POST("/socios").WithJSON(map[string]any{
		"numero_socio": 2,
		"rut":          "12345678-5",
		"nombres":      "Otra",
		"apellidos":    "Persona",
	}).Expect().Status(http.StatusConflict)

	admin.POST("/socios/{id}/password", socioId).
		WithJSON(map[string]any{"password": "socio-password"}).
		Expect().Status(http.StatusNoContent)

	admin.POST("/lecturas").WithJSON(map[string]any{
		"socio_id":         socioId,
		"periodo":          "2025-03",
		"lectura_anterior": 100,
		"lectura_actual":   115,
	}).Expect().Status(http.StatusCreated).
		JSON().Path("$.lectura.consumo_m3").Number().IsEqual(15)

	boleta := admin.POST("/boletas/issue").WithJSON(map[string]any{
		"periodo":  "2025-03",
		"socio_id": socioId,
	}).Expect().Status(http.StatusCreated).
		JSON().Path("$.boleta").Object()
	boleta.Value("total").Number().IsEqual(12000)
	boleta.Value("estado").String().IsEqual("pendiente")
	boletaId := boleta.Value("id").String().Raw()

	// a boleta is issued once per socio and periodo
	admin.POST("/boletas/issue").WithJSON(map[string]any{
		"periodo":  "2025-03",
		"socio_id": socioId,
	}).Expect().Status(http.StatusConflict)

	socioToken := login(e, "/auth/socio/login", map[string]any{
		"rut":      "12345678-5",
		"password": "socio-password",
	})
	socio := e.Builder(func(req *httpexpect.Request) {
		req.WithHeader("Authorization", "Bearer "+socioToken)
	})

	// socios only see their own data and cannot manage the committee
	socio.GET("/boletas").Expect().Status(http.StatusOK).
		JSON().Path("$.boletas").Array().Length().IsEqual(1)
	socio.POST("/tarifas").WithJSON(map[string]any{
		"nombre":    "x",
		"escalones": []map[string]any{{"desde_m3": 0, "precio_m3": 1}},
	}).Expect().Status(http.StatusForbidden)

	checkout := socio.POST("/pagos/checkout").WithJSON(map[string]any{
		"boleta_ids": []string{boletaId},
		"metodo":     "fake",
	}).Expect().Status(http.StatusCreated).JSON().Object()
	checkout.Path("$.pago.estado").String().IsEqual("pendiente")
	checkout.Path("$.pago.monto").Number().IsEqual(12000)
	pagoId := checkout.Path("$.pago.id").String().Raw()

	redirect, err := url.Parse(checkout.Value("redirect_url").String().Raw())
	require.NoError(t, err)

	// the browser of the socio comes back from the gateway
	location := e.GET(redirect.Path).WithQueryString(redirect.RawQuery).
		WithRedirectPolicy(httpexpect.DontFollowRedirects).
		Expect().Status(http.StatusSeeOther).
		Header("Location").Raw()
	resultUrl, err := url.Parse(location)
	require.NoError(t, err)
	require.Equal(t, "aprobado", resultUrl.Query().Get("estado"))
	require.Equal(t, "/pagos/"+pagoId, resultUrl.Path)

	socio.GET("/boletas/{id}", boletaId).Expect().Status(http.StatusOK).
		JSON().Path("$.boleta.estado").String().IsEqual("pagada")
	socio.GET("/pagos/{id}", pagoId).Expect().Status(http.StatusOK).
		JSON().Path("$.pago.estado").String().IsEqual("aprobado")

	// the same return cannot settle the payment twice
	e.GET(redirect.Path).WithQueryString(redirect.RawQuery).
		WithRedirectPolicy(httpexpect.DontFollowRedirects).
		Expect().Status(http.StatusSeeOther)
	admin.GET("/pagos").WithQuery("socio_id", socioId).Expect().Status(http.StatusOK).
		JSON().Path("$.pagos").Array().Length().IsEqual(1)

	socio.POST("/admin/reconciliation/run").Expect().Status(http.StatusForbidden)
	admin.POST("/admin/reconciliation/run").Expect().Status(http.StatusOK).
		JSON().Path("$.run.errors").Array().IsEmpty()
	admin.GET("/admin/reconciliation/runs").Expect().Status(http.StatusOK).
		JSON().Path("$.runs").Array().NotEmpty()
}

func TestIssueWithoutLectura(t *testing.T) {
	skipWithoutDb(t)
	e := newExpect(t)

	adminToken := login(e, "/auth/admin/login", map[string]any{
		"email":    adminEmail,
		"password": adminPassword,
	})
	admin := e.Builder(func(req *httpexpect.Request) {
		req.WithHeader("Authorization", "Bearer "+adminToken)
	})

	socioId := admin.POST("/socios").WithJSON(map[string]any{
		"numero_socio": 50,
		"rut":          "11.111.111-1",
		"nombres":      "Pedro",
		"apellidos":    "Soto",
	}).Expect().Status(http.StatusCreated).
		JSON().Path("$.socio.id").String().Raw()

	admin.POST("/boletas/issue").WithJSON(map[string]any{
		"periodo":  "2025-04",
		"socio_id": socioId,
	}).Expect().Status(http.StatusUnprocessableEntity)
}
