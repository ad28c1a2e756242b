package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/domain"
)

func TestCreate_UserGetsEmptyCart(t *testing.T) {
	dir := NewDirectory()

	s := dir.Create("alice@example.com", domain.CategoryUser)
	require.NotEmpty(t, s.Token)
	require.NotNil(t, s.Cart)
	assert.Empty(t, s.Cart.Items)
	assert.Zero(t, s.Cart.Total)

	admin := dir.Create("root", domain.CategoryAdministrator)
	assert.Nil(t, admin.Cart)
	assert.NotEqual(t, s.Token, admin.Token)
}

func TestResolve_Requirements(t *testing.T) {
	dir := NewDirectory()
	user := dir.Create("alice@example.com", domain.CategoryUser)
	admin := dir.Create("root", domain.CategoryAdministrator)

	tests := []struct {
		name    string
		token   string
		req     Requirement
		wantErr error
	}{
		{"unknown token", "nope", RequireAny, ErrUnauthenticated},
		{"empty token", "", RequireUser, ErrUnauthenticated},
		{"user satisfies any", user.Token, RequireAny, nil},
		{"admin satisfies any", admin.Token, RequireAny, nil},
		{"user satisfies user", user.Token, RequireUser, nil},
		{"admin satisfies admin", admin.Token, RequireAdministrator, nil},
		{"user is not admin", user.Token, RequireAdministrator, ErrForbidden},
		{"admin is not user", admin.Token, RequireUser, ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := dir.Resolve(tt.token, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.token, s.Token)
		})
	}
}

func TestDestroy_Idempotent(t *testing.T) {
	dir := NewDirectory()
	s := dir.Create("alice@example.com", domain.CategoryUser)

	dir.Destroy(s.Token)
	_, err := dir.Resolve(s.Token, RequireAny)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	dir.Destroy(s.Token) // second delete is a no-op
	assert.Zero(t, dir.Len())
}

func TestSnapshot_HandleKeyByCategory(t *testing.T) {
	dir := NewDirectory()
	user := dir.Create("alice@example.com", domain.CategoryUser)
	admin := dir.Create("root", domain.CategoryAdministrator)

	snap := dir.Snapshot()
	require.Len(t, snap, 2)

	assert.Equal(t, "alice@example.com", snap[user.Token].Email)
	assert.Empty(t, snap[user.Token].Username)
	assert.Equal(t, "root", snap[admin.Token].Username)
	assert.Empty(t, snap[admin.Token].Email)
	assert.Greater(t, snap[user.Token].Timestamp, 0.0)

	require.NotNil(t, snap[user.Token].Cart)
	assert.Nil(t, snap[admin.Token].Cart)
}

func TestSnapshot_CartIsACopy(t *testing.T) {
	dir := NewDirectory()
	user := dir.Create("alice@example.com", domain.CategoryUser)
	user.Cart.Items["p1"] = &domain.CartItem{ProductID: "p1", Price: 4.5, Quantity: 2}
	user.Cart.Total = 9.0

	snap := dir.Snapshot()
	require.Len(t, snap[user.Token].Cart.Items, 1)

	// Mutating the dumped cart must not leak into the live session.
	snap[user.Token].Cart.Items["p1"].Quantity = 99
	assert.Equal(t, 2, user.Cart.Items["p1"].Quantity)
}

func TestDirectory_ConcurrentAccess(t *testing.T) {
	dir := NewDirectory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := dir.Create("alice@example.com", domain.CategoryUser)
			_, err := dir.Resolve(s.Token, RequireUser)
			assert.NoError(t, err)
			_ = dir.Snapshot()
			dir.Destroy(s.Token)
		}()
	}
	wg.Wait()

	assert.Zero(t, dir.Len())
}
