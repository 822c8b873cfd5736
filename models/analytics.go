package models

// product analytics events sent to segment
type AnalyticsEvent string

const (
	AnalyticsTokenCreated          AnalyticsEvent = "Created a Token"
	AnalyticsCheckoutStarted       AnalyticsEvent = "Started a checkout"
	AnalyticsPagoApproved          AnalyticsEvent = "Pago approved"
	AnalyticsPagoRejected          AnalyticsEvent = "Pago rejected"
	AnalyticsManualPagoRegistered  AnalyticsEvent = "Registered a manual pago"
	AnalyticsPagoAnnulled          AnalyticsEvent = "Annulled a pago"
	AnalyticsBoletasIssued         AnalyticsEvent = "Issued boletas"
	AnalyticsBoletaAnnulled        AnalyticsEvent = "Annulled a boleta"
	AnalyticsTarifaActivated       AnalyticsEvent = "Activated a tarifa"
	AnalyticsChatMessageSent       AnalyticsEvent = "Sent a chat message"
	AnalyticsReconciliationStarted AnalyticsEvent = "Started a reconciliation"
)
