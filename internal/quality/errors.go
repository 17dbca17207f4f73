package quality

import "fmt"

// ValidationError reports invalid user input caught before any network call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConnectivityError reports an unreachable server or a non-2xx response with
// no parseable detail body.
type ConnectivityError struct {
	Endpoint string
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("no se pudo conectar con el servidor (%s): %v", e.Endpoint, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// InitializationError reports a failed initialize call. Detail prefers the
// server-provided message.
type InitializationError struct {
	Detail string
}

func (e *InitializationError) Error() string { return e.Detail }

// LoadError reports a failed load_data call.
type LoadError struct {
	Detail string
}

func (e *LoadError) Error() string { return e.Detail }

// MetricFetchError reports a failed score fetch for one criterion.
type MetricFetchError struct {
	Criterion Criterion
	Err       error
}

func (e *MetricFetchError) Error() string {
	return fmt.Sprintf("error al obtener %s: %v", e.Criterion, e.Err)
}

func (e *MetricFetchError) Unwrap() error { return e.Err }

// AnalysisUnavailableError reports a failed narrative generation. The caller
// decides whether to fall back to the plain summary.
type AnalysisUnavailableError struct {
	Err error
}

func (e *AnalysisUnavailableError) Error() string {
	return fmt.Sprintf("análisis de IA no disponible: %v", e.Err)
}

func (e *AnalysisUnavailableError) Unwrap() error { return e.Err }

// RenderError reports a document assembly failure after data was available.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("error al generar el reporte: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
