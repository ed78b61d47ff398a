package evolution

import "time"

// RangeSpec is the raw range request: a preset key, or a custom pair of
// dates that takes precedence when both are present.
type RangeSpec struct {
	Preset    string
	StartDate string
	EndDate   string
}

// Window is a resolved range. Start and End are UTC midnights and both
// days are included; a zero Start means unbounded.
type Window struct {
	Key   string
	Label string
	Start time.Time
	End   time.Time
}

type Result struct {
	Meta      Meta                `json:"meta"`
	ChartData []ChartPoint        `json:"chartData"`
	Employees []EmployeeAggregate `json:"employees"`
	Insights  Insights            `json:"insights"`
}

type Meta struct {
	CurrentMaturityIndex *float64 `json:"currentMaturityIndex"`
	PeriodDelta          *float64 `json:"periodDelta"`
	TimeRangeLabel       string   `json:"timeRangeLabel"`
	StartDate            string   `json:"startDate"`
	EndDate              string   `json:"endDate"`
	TotalEmployees       int      `json:"totalEmployees"`
}

type ChartPoint struct {
	Date        string   `json:"date"`
	AvgScore    *float64 `json:"avgScore"`
	Count       int      `json:"count"`
	NewHires    []string `json:"newHires"`
	IsCarryOver bool     `json:"isCarryOver"`
}

type EmployeeAggregate struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Role             string    `json:"role"`
	CurrentScore     float64   `json:"currentScore"`
	StartScore       float64   `json:"startScore"`
	Growth           *float64  `json:"growth,omitempty"`
	GrowthTrend      Trend     `json:"growthTrend"`
	IsNewHire        bool      `json:"isNewHire"`
	InsufficientData bool      `json:"insufficientData"`
	LastEvaluatedAt  time.Time `json:"-"`
	LastEvaluated    string    `json:"lastEvaluatedAt"`
	Sparkline        []float64 `json:"sparkline"`
	Status           Status    `json:"status"`

	history      []scorePoint
	criticalGaps int
}

// GrowthValue is the growth delta, zero for new hires.
func (e EmployeeAggregate) GrowthValue() float64 {
	if e.Growth == nil {
		return 0
	}
	return *e.Growth
}

func (e EmployeeAggregate) CriticalGaps() int {
	return e.criticalGaps
}

type scorePoint struct {
	At    time.Time
	Score float64
}

type Insights struct {
	TopImprover  *EmployeeAggregate `json:"topImprover"`
	SupportCases []SupportCase      `json:"supportCases"`
	SupportCount int                `json:"supportCount"`
}

type SupportCase struct {
	EmployeeAggregate
	Reasons      []string `json:"reasons"`
	CriticalGaps int      `json:"criticalGaps"`
}

// RoleSummary is the per-role breakdown used by the PDF report.
type RoleSummary struct {
	Role          string  `json:"role"`
	Employees     int     `json:"employees"`
	AvgScore      float64 `json:"avgScore"`
	AvgGrowth     float64 `json:"avgGrowth"`
	Attention     int     `json:"attention"`
	StrengthCount int     `json:"strength"`
}
