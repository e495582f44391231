package main

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chybatronik/goUserFilter/internal/database/memory"
	"github.com/chybatronik/goUserFilter/internal/logging"
	"github.com/chybatronik/goUserFilter/internal/models"
)

func TestGenerateUsers(t *testing.T) {
	companies := []models.Company{{ID: 1, Name: "Acme"}, {ID: 2, Name: "Globex"}}

	a := generateUsers(rand.New(rand.NewPCG(7, 7)), 10, 50, 7, companies)
	b := generateUsers(rand.New(rand.NewPCG(7, 7)), 10, 50, 7, companies)
	require.Len(t, a, 50)
	assert.Equal(t, a, b, "same seed generates the same users")

	seen := make(map[string]bool, len(a))
	for _, u := range a {
		assert.False(t, seen[u.Username], "duplicate username %s", u.Username)
		seen[u.Username] = true
		assert.True(t, u.Role.Valid())
		if u.CompanyID != nil {
			assert.Contains(t, []int64{1, 2}, *u.CompanyID)
		}
	}
	assert.Contains(t, a[0].Username, ".7.10")
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()

	opts := seedOptions{users: 25, companies: 3, seed: 42, batch: 10}
	require.NoError(t, seed(ctx, opts, store, createEach(store), logging.Discard()))
	assert.Equal(t, 25, store.Len())

	// a second run with another seed adds users without username conflicts
	opts.seed = 43
	require.NoError(t, seed(ctx, opts, store, createEach(store), logging.Discard()))
	assert.Equal(t, 50, store.Len())
}
