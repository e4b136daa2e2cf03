package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetguard/internal/validation"
)

func TestSeedProfiles_RulesAreValid(t *testing.T) {
	for _, p := range SeedProfiles() {
		for _, r := range p.Rules {
			assert.NoError(t, validation.ValidateDefinition(r), "profile %q rule %+v", p.Name, r)
		}
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfiles()

	inserted, err := Seed(ctx, repo)
	require.NoError(t, err)
	assert.True(t, inserted)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	inserted, err = Seed(ctx, repo)
	require.NoError(t, err)
	assert.False(t, inserted, "seeding a non-empty store must be a no-op")

	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestSeed_MonthlyProfileCatchesBadRows(t *testing.T) {
	var monthly Profile
	for _, p := range SeedProfiles() {
		if p.Name == "Monthly Measurement Validation" {
			monthly = p
		}
	}
	require.NotEmpty(t, monthly.Rules)

	grid := validation.Grid{
		{"ID_CLIENTE", "CONSUMO_KWH", "MES_REF", "STATUS"},
		{"C1", "120.5", "01/2025", "ATIVO"},
		{"C1", "abc", "13/2025", "PENDENTE"},
		{"", "10", "02/2025", "INATIVO"},
	}

	_, eval, err := validation.NewEvaluator(nil).Validate(context.Background(), grid, monthly.Rules)
	require.NoError(t, err)

	kinds := map[validation.RuleKind]int{}
	for _, e := range eval.Errors {
		kinds[e.RuleType]++
	}
	assert.Equal(t, map[validation.RuleKind]int{
		validation.KindIsUnique:     1,
		validation.KindIsNumber:     1,
		validation.KindMatchesRegex: 1,
		validation.KindInSet:        1,
		validation.KindNotEmpty:     1,
	}, kinds)
}
