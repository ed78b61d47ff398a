package evolution

func ClassifyStatus(score float64) Status {
	switch {
	case score < AttentionBelow:
		return StatusAttention
	case score < StrengthFrom:
		return StatusCompetent
	default:
		return StatusStrength
	}
}
