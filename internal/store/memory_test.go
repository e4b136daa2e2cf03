package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/sheetguard/internal/validation"
)

func TestMemoryProfiles_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfiles()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	p := Profile{
		ID:   "p1",
		Name: "Monthly",
		Rules: []validation.RuleDefinition{
			{ID: "r1", Column: "ID", Type: validation.KindNotEmpty},
		},
	}
	require.NoError(t, repo.Put(ctx, p))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	p.Name = "Monthly v2"
	require.NoError(t, repo.Put(ctx, p))
	got, err = repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Monthly v2", got.Name)

	require.NoError(t, repo.Delete(ctx, "p1"))
	assert.ErrorIs(t, repo.Delete(ctx, "p1"), ErrNotFound)
}

func TestMemoryProfiles_IsolatesCallers(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfiles()

	rules := []validation.RuleDefinition{{ID: "r1", Column: "A", Type: validation.KindNotEmpty}}
	require.NoError(t, repo.Put(ctx, Profile{ID: "p1", Name: "P", Rules: rules}))

	rules[0].Column = "changed"

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Rules[0].Column)

	got.Rules[0].Column = "changed again"
	again, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "A", again.Rules[0].Column)
}

func TestMemoryProfiles_ListSortedByName(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfiles()

	for _, name := range []string{"charlie", "Alpha", "bravo"} {
		require.NoError(t, repo.Put(ctx, Profile{ID: name, Name: name}))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)

	var names []string
	for _, p := range list {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Alpha", "bravo", "charlie"}, names)
}

func TestMemoryProfiles_Concurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProfiles()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("p%d", i)
			_ = repo.Put(ctx, Profile{ID: id, Name: id})
			_, _ = repo.Get(ctx, id)
			_, _ = repo.List(ctx)
		}(i)
	}
	wg.Wait()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func TestMemoryHistory_CapAndOrder(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(5)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 7; i++ {
		require.NoError(t, h.Add(ctx, validation.HistoryEntry{
			ID:        fmt.Sprintf("h%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := h.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)

	var ids []string
	for _, e := range list {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"h7", "h6", "h5", "h4", "h3"}, ids)
}

func TestMemoryHistory_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(0)

	for i := 0; i < DefaultHistoryLimit+3; i++ {
		require.NoError(t, h.Add(ctx, validation.HistoryEntry{ID: fmt.Sprint(i)}))
	}

	list, err := h.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, DefaultHistoryLimit)
}

func TestMemoryHistory_EmptyListIsNotNil(t *testing.T) {
	list, err := NewMemoryHistory(5).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
