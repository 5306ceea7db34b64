package expiry

// RecommendedAction devuelve la acción operativa sugerida según nivel de
// alerta y cantidad. Los textos son parte del contrato con el frontend:
// no reformular sin coordinar.
func RecommendedAction(level AlertLevel, quantity int) string {
	switch level {
	case LevelCritical:
		if quantity > 50 {
			return "bulk discount sale or return to supplier"
		}
		return "prioritize sale or mark for disposal"
	case LevelHigh:
		if quantity > 100 {
			return "promotional pricing or contact supplier for return"
		}
		return "prioritize in sales recommendations"
	case LevelMedium:
		return "monitor closely and consider promotional strategies"
	case LevelLow:
		return "plan inventory rotation and adjust reorder quantities"
	default:
		return "monitor for future planning"
	}
}
