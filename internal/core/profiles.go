package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/sheetguard/internal/store"
	"github.com/JonMunkholm/sheetguard/internal/validation"
)

// ProfileInput holds the editable fields of a profile.
type ProfileInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (in ProfileInput) normalize() (ProfileInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return in, ErrNameRequired
	}
	return in, nil
}

// ListProfiles returns profiles whose name contains query, ignoring case.
// An empty query returns every profile.
func (s *Service) ListProfiles(ctx context.Context, query string) ([]store.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return profiles, nil
	}

	matched := make([]store.Profile, 0, len(profiles))
	for _, p := range profiles {
		if strings.Contains(strings.ToLower(p.Name), query) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// GetProfile returns a profile by id.
func (s *Service) GetProfile(ctx context.Context, id string) (store.Profile, error) {
	p, err := s.profiles.Get(ctx, id)
	if err != nil {
		return store.Profile{}, fmt.Errorf("get profile %s: %w", id, err)
	}
	return p, nil
}

// CreateProfile stores a new profile with no rules.
func (s *Service) CreateProfile(ctx context.Context, in ProfileInput) (store.Profile, error) {
	in, err := in.normalize()
	if err != nil {
		return store.Profile{}, err
	}

	p := store.Profile{
		ID:            s.newID(),
		Name:          in.Name,
		Description:   in.Description,
		LastUpdated:   s.now().UTC(),
		SampleHeaders: []string{},
		Rules:         []validation.RuleDefinition{},
	}
	if err := s.profiles.Put(ctx, p); err != nil {
		return store.Profile{}, fmt.Errorf("create profile: %w", err)
	}

	s.logger.Info("profile created", "profile_id", p.ID, "name", p.Name)
	return p, nil
}

// UpdateProfile changes the name and description of a profile.
func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (store.Profile, error) {
	in, err := in.normalize()
	if err != nil {
		return store.Profile{}, err
	}

	return s.mutate(ctx, id, func(p *store.Profile) error {
		p.Name = in.Name
		p.Description = in.Description
		return nil
	})
}

// DeleteProfile removes a profile.
func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.profiles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete profile %s: %w", id, err)
	}

	s.logger.Info("profile deleted", "profile_id", id)
	return nil
}

// AddRule validates def and appends it to the profile's rules. A missing id
// is filled in. The saved rule is returned.
func (s *Service) AddRule(ctx context.Context, profileID string, def validation.RuleDefinition) (validation.RuleDefinition, error) {
	def, err := s.checkRule(def)
	if err != nil {
		return validation.RuleDefinition{}, err
	}
	if def.ID == "" {
		def.ID = s.newID()
	}

	_, err = s.mutate(ctx, profileID, func(p *store.Profile) error {
		if p.RuleIndex(def.ID) >= 0 {
			return fmt.Errorf("%w: rule id %s already exists", ErrInvalidRule, def.ID)
		}
		p.Rules = append(p.Rules, def)
		return nil
	})
	if err != nil {
		return validation.RuleDefinition{}, err
	}
	return def, nil
}

// UpdateRule replaces a rule in place, keeping its position and id.
func (s *Service) UpdateRule(ctx context.Context, profileID, ruleID string, def validation.RuleDefinition) (validation.RuleDefinition, error) {
	def, err := s.checkRule(def)
	if err != nil {
		return validation.RuleDefinition{}, err
	}
	def.ID = ruleID

	_, err = s.mutate(ctx, profileID, func(p *store.Profile) error {
		i := p.RuleIndex(ruleID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrRuleNotFound, ruleID)
		}
		p.Rules[i] = def
		return nil
	})
	if err != nil {
		return validation.RuleDefinition{}, err
	}
	return def, nil
}

// DeleteRule removes a rule from a profile.
func (s *Service) DeleteRule(ctx context.Context, profileID, ruleID string) error {
	_, err := s.mutate(ctx, profileID, func(p *store.Profile) error {
		i := p.RuleIndex(ruleID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrRuleNotFound, ruleID)
		}
		p.Rules = append(p.Rules[:i], p.Rules[i+1:]...)
		return nil
	})
	return err
}

// checkRule trims the column and runs the save-time validation.
func (s *Service) checkRule(def validation.RuleDefinition) (validation.RuleDefinition, error) {
	def.Column = strings.TrimSpace(def.Column)
	if !def.Type.NeedsValue() {
		def.Value = ""
	}
	if err := validation.ValidateDefinition(def); err != nil {
		return def, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	return def, nil
}

// mutate loads a profile, applies fn and saves the result with a fresh
// LastUpdated. Nothing is saved when fn fails.
func (s *Service) mutate(ctx context.Context, id string, fn func(*store.Profile) error) (store.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.profiles.Get(ctx, id)
	if err != nil {
		return store.Profile{}, fmt.Errorf("load profile %s: %w", id, err)
	}

	if err := fn(&p); err != nil {
		return store.Profile{}, err
	}

	p.LastUpdated = s.now().UTC()
	if err := s.profiles.Put(ctx, p); err != nil {
		return store.Profile{}, fmt.Errorf("save profile %s: %w", id, err)
	}

	s.logger.Debug("profile updated", "profile_id", p.ID, "rules", len(p.Rules))
	return p, nil
}
