package evolution

import (
	"time"

	"skima/internal/domain/skills"
)

// countsToward reports whether an assessment taken at evaluatedAt counts
// toward the session score under profile. A missing profile, or a session
// that predates the profile, counts every assessed active skill.
func countsToward(a skills.Assessment, evaluatedAt time.Time, profile *skills.RoleProfile) bool {
	if a.Level <= 0 || !a.SkillActive {
		return false
	}
	if profile == nil {
		return true
	}
	if evaluatedAt.Before(profile.CreatedAt) {
		return true
	}
	return profile.Criticality(a.SkillID).Applicable()
}
