package expiry

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPriorityScore_ValoresConocidos(t *testing.T) {
	// 3 días, 30 unidades a $15: urgencia 362/365, valor 0.45, volumen 0.3.
	assert.InDelta(t, 0.691, PriorityScore(3, 30, price("15.00"), false), 0.0005)

	// Saturación de valor ($1125 > $1000) y volumen parcial.
	assert.InDelta(t, 0.923, PriorityScore(20, 75, price("15.00"), false), 0.0005)

	// Todo saturado y vencimiento hoy: máximo sin controlado.
	assert.InDelta(t, 1.0, PriorityScore(0, 100, price("10.00"), false), 0.0005)
}

func TestPriorityScore_UrgenciaCeroMasAllaDelHorizonte(t *testing.T) {
	at365 := PriorityScore(365, 50, price("10.00"), false)
	at500 := PriorityScore(500, 50, price("10.00"), false)
	assert.Equal(t, at365, at500, "pasado el horizonte solo pesan valor y volumen")
}

func TestPriorityScore_VencidoNoSuperaLaUrgenciaMaxima(t *testing.T) {
	today := PriorityScore(0, 10, price("1.00"), false)
	expired := PriorityScore(-30, 10, price("1.00"), false)
	assert.Greater(t, expired, today, "los días negativos siguen sumando urgencia")
	assert.LessOrEqual(t, expired, 1.0)
}

func TestPriorityScore_MonotonoEnUrgencia(t *testing.T) {
	prev := PriorityScore(0, 50, price("10.00"), false)
	for _, days := range []int{7, 30, 90, 180, 365} {
		cur := PriorityScore(days, 50, price("10.00"), false)
		assert.LessOrEqual(t, cur, prev, "días=%d", days)
		prev = cur
	}
}

func TestPriorityScore_MonotonoEnCantidad(t *testing.T) {
	prev := -1.0
	for _, qty := range []int{1, 10, 50, 100, 500} {
		cur := PriorityScore(30, qty, price("5.00"), false)
		assert.GreaterOrEqual(t, cur, prev, "cantidad=%d", qty)
		prev = cur
	}
}

func TestPriorityScore_ControladoMultiplicaPor1_5(t *testing.T) {
	plain := PriorityScore(10, 40, price("12.00"), false)
	controlled := PriorityScore(10, 40, price("12.00"), true)
	assert.InDelta(t, plain*1.5, controlled, 0.002)
	assert.Greater(t, controlled, 1.0, "solo un controlado puede superar 1.0")
}

func TestPriorityScore_RedondeoATresDecimales(t *testing.T) {
	s := PriorityScore(123, 37, price("7.77"), false)
	assert.InDelta(t, math.Round(s*1000), s*1000, 1e-9)
}
