package evolution

const (
	AttentionBelow   = 2.5
	StrengthFrom     = 3.5
	TrendDeadZone    = 0.1
	CriticalGapBelow = 2.5
)

type Status string

const (
	StatusAttention Status = "attention"
	StatusCompetent Status = "competent"
	StatusStrength  Status = "strength"
)

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

const (
	Range6M     = "6m"
	Range12M    = "12m"
	Range24M    = "24m"
	RangeYTD    = "ytd"
	RangeAll    = "all"
	RangeCustom = "custom"
)

var rangeLabels = map[string]string{
	Range6M:     "Últimos 6 meses",
	Range12M:    "Últimos 12 meses",
	Range24M:    "Últimos 24 meses",
	RangeYTD:    "Año actual (YTD)",
	RangeCustom: "Rango personalizado",
	RangeAll:    "Todo el historial",
}

const (
	ReasonLowScore  = "low_score"
	ReasonDeclining = "declining"
)

const dateLayout = "2006-01-02"
