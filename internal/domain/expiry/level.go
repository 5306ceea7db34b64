// Package expiry contiene la lógica pura de riesgo de vencimiento:
// clasificación por nivel de alerta, puntaje de prioridad y acción recomendada.
// Ninguna función de este paquete retorna error ni toca persistencia.
package expiry

import "fmt"

// AlertLevel clasificación disjunta de urgencia de un lote.
type AlertLevel string

const (
	LevelCritical AlertLevel = "critical" // 1 semana o menos
	LevelHigh     AlertLevel = "high"     // 1 mes o menos
	LevelMedium   AlertLevel = "medium"   // 3 meses o menos
	LevelLow      AlertLevel = "low"      // 6 meses o menos
	LevelInfo     AlertLevel = "info"     // más de 6 meses
)

// Levels en orden de severidad descendente.
var Levels = []AlertLevel{LevelCritical, LevelHigh, LevelMedium, LevelLow, LevelInfo}

// ParseLevel valida un nivel recibido por query param.
func ParseLevel(s string) (AlertLevel, bool) {
	switch AlertLevel(s) {
	case LevelCritical, LevelHigh, LevelMedium, LevelLow, LevelInfo:
		return AlertLevel(s), true
	}
	return "", false
}

// Thresholds umbrales de días por nivel. Inmutables después de Validate;
// se cargan una sola vez al arranque desde la configuración.
type Thresholds struct {
	CriticalDays int // por defecto 7
	HighDays     int // por defecto 30
	MediumDays   int // por defecto 90
	LowDays      int // por defecto 180
}

// DefaultThresholds umbrales estándar de farmacia: 1 semana, 1 mes, 3 meses, 6 meses.
func DefaultThresholds() Thresholds {
	return Thresholds{CriticalDays: 7, HighDays: 30, MediumDays: 90, LowDays: 180}
}

// Validate rechaza umbrales negativos o no crecientes. Error fatal de
// configuración: se verifica al arranque, nunca por petición.
func (t Thresholds) Validate() error {
	if t.CriticalDays < 0 {
		return fmt.Errorf("umbral critical negativo: %d", t.CriticalDays)
	}
	if t.HighDays <= t.CriticalDays {
		return fmt.Errorf("umbral high (%d) debe ser mayor que critical (%d)", t.HighDays, t.CriticalDays)
	}
	if t.MediumDays <= t.HighDays {
		return fmt.Errorf("umbral medium (%d) debe ser mayor que high (%d)", t.MediumDays, t.HighDays)
	}
	if t.LowDays <= t.MediumDays {
		return fmt.Errorf("umbral low (%d) debe ser mayor que medium (%d)", t.LowDays, t.MediumDays)
	}
	return nil
}

// MaxDays devuelve el techo de días del nivel (ventana "en riesgo dentro de N
// días" usada por el resumen). INFO no tiene techo.
func (t Thresholds) MaxDays(level AlertLevel) (int, bool) {
	switch level {
	case LevelCritical:
		return t.CriticalDays, true
	case LevelHigh:
		return t.HighDays, true
	case LevelMedium:
		return t.MediumDays, true
	case LevelLow:
		return t.LowDays, true
	}
	return 0, false
}

// Classify asigna el nivel de alerta según los días hasta el vencimiento,
// evaluando los umbrales como techos sucesivos. Un lote ya vencido
// (días < 0) clasifica como CRITICAL; excluirlo es decisión del agregador.
func Classify(daysUntilExpiry int, t Thresholds) AlertLevel {
	switch {
	case daysUntilExpiry <= t.CriticalDays:
		return LevelCritical
	case daysUntilExpiry <= t.HighDays:
		return LevelHigh
	case daysUntilExpiry <= t.MediumDays:
		return LevelMedium
	case daysUntilExpiry <= t.LowDays:
		return LevelLow
	default:
		return LevelInfo
	}
}
