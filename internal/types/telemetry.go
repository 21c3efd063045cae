package types

// Telemetry metric names for CloudWatch.
const (
	MetricAPILatency         = "APILatency"
	MetricAPIRequestCount    = "APIRequestCount"
	MetricExternalAPIFailure = "ExternalAPIFailure"

	DimEndpoint  = "Endpoint"
	DimStatus    = "Status"
	DimMethod    = "Method"
	DimOperation = "Operation"

	MetricNamespace = "Skyglass"
)
