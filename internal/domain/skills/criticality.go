package skills

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Criticality string

const (
	CriticalityCritical      Criticality = "C"
	CriticalityImportant     Criticality = "I"
	CriticalityDesirable     Criticality = "D"
	CriticalityNotApplicable Criticality = "N"
)

// ParseCriticality accepts the one-letter codes and their Spanish names.
// Anything else is not applicable.
func ParseCriticality(raw string) Criticality {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "C", "CRITICA", "CRÍTICA", "CRITICAL":
		return CriticalityCritical
	case "I", "IMPORTANTE", "IMPORTANT":
		return CriticalityImportant
	case "D", "DESEABLE", "DESIRABLE":
		return CriticalityDesirable
	default:
		return CriticalityNotApplicable
	}
}

func (c Criticality) Applicable() bool {
	switch c {
	case CriticalityCritical, CriticalityImportant, CriticalityDesirable:
		return true
	}
	return false
}

func (c *Criticality) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = ParseCriticality(raw)
	return nil
}

func (c *Criticality) UnmarshalText(text []byte) error {
	*c = ParseCriticality(string(text))
	return nil
}

type Frequency string

const (
	FrequencyDaily     Frequency = "D"
	FrequencyWeekly    Frequency = "S"
	FrequencyMonthly   Frequency = "M"
	FrequencyQuarterly Frequency = "T"
	FrequencyNever     Frequency = "N"
)

func ParseFrequency(raw string) Frequency {
	switch f := Frequency(strings.ToUpper(strings.TrimSpace(raw))); f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly:
		return f
	default:
		return FrequencyNever
	}
}

func (f *Frequency) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = ParseFrequency(raw)
	return nil
}

// ParseProfileSkills decodes the stored role-profile blob ({"12":"C",...}).
func ParseProfileSkills(raw []byte) (map[int64]Criticality, error) {
	out := map[int64]Criticality{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return out, nil
	}
	var decoded map[string]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("role profile skills: %w", err)
	}
	for key, value := range decoded {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("role profile skills: skill id %q: %w", key, err)
		}
		out[id] = ParseCriticality(value)
	}
	return out, nil
}

func EncodeProfileSkills(skills map[int64]Criticality) ([]byte, error) {
	encoded := make(map[string]string, len(skills))
	for id, c := range skills {
		encoded[strconv.FormatInt(id, 10)] = string(c)
	}
	return json.Marshal(encoded)
}
