// Package quality defines the ISO/IEC 25012-style data model shared by the
// analyzer, the dashboard and the report renderer.
package quality

// Criterion identifies one quality criterion evaluated by the scoring backend.
// The string value doubles as the backend endpoint path segment.
type Criterion string

// Fast criteria are fetched as one concurrent batch. Completitud is fetched
// separately in the background because the backend computes it over the full
// record set.
const (
	Actualidad       Criterion = "actualidad"
	Confidencialidad Criterion = "confidencialidad"
	Unicidad         Criterion = "unicidad"
	Accesibilidad    Criterion = "accesibilidad"
	Conformidad      Criterion = "conformidad"
	Portabilidad     Criterion = "portabilidad"
	Disponibilidad   Criterion = "disponibilidad"
	Trazabilidad     Criterion = "trazabilidad"
	Credibilidad     Criterion = "credibilidad"
	Recuperabilidad  Criterion = "recuperabilidad"
	Completitud      Criterion = "completitud"
)

// FastCriteria is the fixed set fetched concurrently, in display order.
func FastCriteria() []Criterion {
	return []Criterion{
		Actualidad,
		Confidencialidad,
		Unicidad,
		Accesibilidad,
		Conformidad,
		Portabilidad,
		Disponibilidad,
		Trazabilidad,
		Credibilidad,
		Recuperabilidad,
	}
}

// AllCriteria returns every evaluated criterion, fast set first, then completitud.
func AllCriteria() []Criterion {
	return append(FastCriteria(), Completitud)
}

// criterionInfo holds display metadata for one criterion.
type criterionInfo struct {
	label       string
	description string
}

var criterionDisplay = map[Criterion]criterionInfo{
	Actualidad:       {"Actualidad", "Vigencia respecto a frecuencia de actualización"},
	Confidencialidad: {"Confidencialidad", "Riesgo de publicar datos sensibles"},
	Unicidad:         {"Unicidad", "Ausencia de duplicados"},
	Accesibilidad:    {"Accesibilidad", "Etiquetas de búsqueda y vínculos"},
	Conformidad:      {"Conformidad", "Adhesión a formatos y estándares"},
	Portabilidad:     {"Portabilidad", "Facilidad de transferencia"},
	Disponibilidad:   {"Disponibilidad", "Vigencia y accesibilidad"},
	Trazabilidad:     {"Trazabilidad", "Metadatos diligenciados y auditoría"},
	Credibilidad:     {"Credibilidad", "Presencia de metadatos de fuente"},
	Recuperabilidad:  {"Recuperabilidad", "Facilidad de recuperación"},
	Completitud:      {"Completitud", "Proporción de valores disponibles"},
}

// Label returns the human-readable name of the criterion.
func (c Criterion) Label() string {
	if info, ok := criterionDisplay[c]; ok {
		return info.label
	}
	return string(c)
}

// Description returns the one-line explanation shown on scorecards.
func (c Criterion) Description() string {
	return criterionDisplay[c].description
}
