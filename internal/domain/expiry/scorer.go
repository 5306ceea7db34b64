package expiry

import (
	"math"

	"github.com/shopspring/decimal"
)

// Pesos del puntaje de prioridad. La urgencia domina; el valor en riesgo y el
// volumen completan el ranking.
const (
	weightUrgency = 0.5
	weightValue   = 0.3
	weightBulk    = 0.2

	urgencyHorizonDays = 365    // a un año o más la urgencia es 0
	valueSaturation    = 1000.0 // el valor satura en $1000 de exposición
	bulkSaturation     = 100.0  // el volumen satura en 100 unidades

	controlledMultiplier = 1.5
)

// PriorityScore calcula el puntaje de urgencia de un lote en [0, 1.5].
// Monótono en urgencia, valor y cantidad; la condición de sustancia
// controlada es un multiplicador estricto (solo un controlado puede
// superar 1.0). Redondeado a 3 decimales.
func PriorityScore(daysUntilExpiry, quantity int, unitPrice decimal.Decimal, isControlled bool) float64 {
	urgency := math.Max(0, float64(urgencyHorizonDays-daysUntilExpiry)) / urgencyHorizonDays

	totalValue, _ := unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Float64()
	value := math.Min(totalValue/valueSaturation, 1.0)

	bulk := math.Min(float64(quantity)/bulkSaturation, 1.0)

	score := urgency*weightUrgency + value*weightValue + bulk*weightBulk
	if isControlled {
		score *= controlledMultiplier
	}
	return round3(score)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
