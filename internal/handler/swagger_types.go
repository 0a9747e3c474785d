package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"media store not reachable"`
}

// Health probe status values.
const (
	HealthStatusOK          = "ok"
	HealthStatusUnavailable = "unavailable"
)
