package skills

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

type profileFile struct {
	Profiles []struct {
		Role   string           `yaml:"rol"`
		Skills map[int64]string `yaml:"skills"`
	} `yaml:"profiles"`
}

// ParseRoleProfilesYAML decodes a document of the form
//
//	profiles:
//	  - rol: Backend
//	    skills:
//	      12: C
//	      14: I
func ParseRoleProfilesYAML(raw []byte) (map[string]map[int64]Criticality, error) {
	var doc profileFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("role profiles yaml: %w", err)
	}
	out := make(map[string]map[int64]Criticality, len(doc.Profiles))
	for i, p := range doc.Profiles {
		if p.Role == "" {
			return nil, fmt.Errorf("role profiles yaml: entry %d has no rol: %w", i, ErrInvalidInput)
		}
		skills := make(map[int64]Criticality, len(p.Skills))
		for id, tag := range p.Skills {
			skills[id] = ParseCriticality(tag)
		}
		out[p.Role] = skills
	}
	return out, nil
}

// ImportRoleProfilesYAML upserts every profile in the document and returns
// how many were written.
func (s *Service) ImportRoleProfilesYAML(ctx context.Context, raw []byte) (int, error) {
	profiles, err := ParseRoleProfilesYAML(raw)
	if err != nil {
		return 0, err
	}
	err = s.tx.InTx(ctx, func(store StoreAPI) error {
		now := s.Now()
		for role, skills := range profiles {
			if err := store.UpsertRoleProfile(ctx, role, skills, now); err != nil {
				return fmt.Errorf("role profile %q: %w", role, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("role profiles imported", "count", len(profiles))
	return len(profiles), nil
}
