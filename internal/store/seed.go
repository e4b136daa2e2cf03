package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sheetguard/internal/validation"
)

// SeedProfiles returns the profiles a fresh installation starts with.
func SeedProfiles() []Profile {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	rule := func(column string, kind validation.RuleKind, value string) validation.RuleDefinition {
		return validation.RuleDefinition{ID: uuid.NewString(), Column: column, Type: kind, Value: value}
	}

	return []Profile{
		{
			ID:            uuid.NewString(),
			Name:          "Monthly Measurement Validation",
			Description:   "Monthly energy consumption readings per customer.",
			LastUpdated:   day(2025, time.September, 12),
			SampleHeaders: []string{"ID_CLIENTE", "CONSUMO_KWH", "MES_REF", "STATUS"},
			Rules: []validation.RuleDefinition{
				rule("ID_CLIENTE", validation.KindNotEmpty, ""),
				rule("ID_CLIENTE", validation.KindIsUnique, ""),
				rule("CONSUMO_KWH", validation.KindIsNumber, ""),
				rule("MES_REF", validation.KindMatchesRegex, `^(0[1-9]|1[0-2])\/20\d{2}$`),
				rule("STATUS", validation.KindInSet, "ATIVO,INATIVO,SUSPENSO"),
			},
		},
		{
			ID:            uuid.NewString(),
			Name:          "Invoice Audit (Q3)",
			LastUpdated:   day(2025, time.September, 10),
			SampleHeaders: []string{},
			Rules:         []validation.RuleDefinition{},
		},
		{
			ID:            uuid.NewString(),
			Name:          "Customer Registry Compliance",
			LastUpdated:   day(2025, time.August, 29),
			SampleHeaders: []string{},
			Rules:         []validation.RuleDefinition{},
		},
	}
}

// Seed inserts SeedProfiles into repo when it holds no profiles.
// It reports whether anything was inserted.
func Seed(ctx context.Context, repo ProfileRepository) (bool, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("seed: list profiles: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	for _, p := range SeedProfiles() {
		if err := repo.Put(ctx, p); err != nil {
			return false, fmt.Errorf("seed %q: %w", p.Name, err)
		}
	}
	return true, nil
}
