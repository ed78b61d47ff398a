package skills

import "time"

type Collaborator struct {
	ID            int64      `json:"id"`
	Name          string     `json:"nombre"`
	Role          string     `json:"rol"`
	Email         string     `json:"email,omitempty"`
	IsActive      bool       `json:"isActive"`
	JoinedAt      time.Time  `json:"joinedAt"`
	LastEvaluated *time.Time `json:"lastEvaluated,omitempty"`
}

// EvaluationSession keeps the collaborator's name and role as they were when
// the evaluation happened.
type EvaluationSession struct {
	ID               int64     `json:"id"`
	UUID             string    `json:"uuid"`
	CollaboratorID   int64     `json:"collaboratorId"`
	CollaboratorName string    `json:"collaboratorNombre"`
	CollaboratorRole string    `json:"collaboratorRol"`
	EvaluatedBy      string    `json:"evaluatedBy,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	EvaluatedAt      time.Time `json:"evaluatedAt"`
}

type Assessment struct {
	ID             int64       `json:"id"`
	SessionID      int64       `json:"evaluationSessionId"`
	CollaboratorID int64       `json:"collaboratorId"`
	SkillID        int64       `json:"skillId"`
	Level          float64     `json:"nivel"`
	Criticality    Criticality `json:"criticidad"`
	Frequency      Frequency   `json:"frecuencia"`
	SkillActive    bool        `json:"skillActive"`
}

type RoleProfile struct {
	ID        int64                 `json:"id"`
	Role      string                `json:"rol"`
	Skills    map[int64]Criticality `json:"skills"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// Criticality returns the tag for skillID; skills missing from the profile
// are not applicable.
func (p RoleProfile) Criticality(skillID int64) Criticality {
	if c, ok := p.Skills[skillID]; ok {
		return c
	}
	return CriticalityNotApplicable
}

type CollaboratorInput struct {
	Name     string     `json:"nombre"`
	Role     string     `json:"rol"`
	Email    string     `json:"email"`
	JoinedAt *time.Time `json:"joinedAt"`
}

type AssessmentInput struct {
	SkillID     int64       `json:"skillId"`
	Level       float64     `json:"nivel"`
	Criticality Criticality `json:"criticidad"`
	Frequency   Frequency   `json:"frecuencia"`
}

type EvaluationInput struct {
	EvaluatedAt *time.Time        `json:"evaluatedAt"`
	EvaluatedBy string            `json:"evaluatedBy"`
	Notes       string            `json:"notes"`
	Assessments []AssessmentInput `json:"assessments"`
}
