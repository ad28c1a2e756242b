package httpapi

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/catalog"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/domain"
)

// memGateway is a full in-memory Gateway with the same conditional
// semantics the MongoDB implementation guarantees.
type memGateway struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	accounts map[string]*domain.Account
	nextID   int
}

func newMemGateway() *memGateway {
	return &memGateway{
		products: make(map[string]*domain.Product),
		accounts: make(map[string]*domain.Account),
	}
}

func (g *memGateway) FindProduct(_ context.Context, id string) (*domain.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (g *memGateway) SearchProducts(_ context.Context, f catalog.Filter) ([]domain.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := []domain.Product{}
	for _, p := range g.products {
		switch {
		case f.ID != "":
			if p.ID != f.ID {
				continue
			}
		case f.Name != "":
			if !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
				continue
			}
		case f.Category != "":
			if !strings.Contains(strings.ToLower(p.Category), strings.ToLower(f.Category)) {
				continue
			}
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (g *memGateway) InsertProduct(_ context.Context, p *domain.Product) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	p.ID = fmt.Sprintf("%024d", g.nextID)
	copied := *p
	g.products[p.ID] = &copied
	return p.ID, nil
}

func (g *memGateway) UpdateProduct(_ context.Context, id string, u catalog.ProductUpdate) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.products[id]
	if !ok {
		return catalog.ErrProductNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	return nil
}

func (g *memGateway) DeleteProduct(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.products[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(g.products, id)
	return nil
}

func (g *memGateway) DecrementStock(_ context.Context, id string, qty int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.products[id]
	if !ok {
		return catalog.ErrProductNotFound
	}
	if p.Stock < qty {
		return catalog.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (g *memGateway) FindAccountByHandle(_ context.Context, handle string) (*domain.Account, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a := g.lookup(handle)
	if a == nil {
		return nil, catalog.ErrAccountNotFound
	}
	copied := *a
	return &copied, nil
}

func (g *memGateway) FindAccountByLogin(_ context.Context, kind catalog.HandleKind, handle, password string) (*domain.Account, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, a := range g.accounts {
		match := (kind == catalog.HandleEmail && a.Email == handle) ||
			(kind == catalog.HandleUsername && a.Username == handle)
		if match && a.Password == password {
			copied := *a
			return &copied, nil
		}
	}
	return nil, catalog.ErrAccountNotFound
}

func (g *memGateway) AccountExists(_ context.Context, email, ssn string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, a := range g.accounts {
		if a.Email == email || (a.SSN != "" && a.SSN == ssn) {
			return true, nil
		}
	}
	return false, nil
}

func (g *memGateway) InsertAccount(_ context.Context, a *domain.Account) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	copied := *a
	g.accounts[a.Handle()] = &copied
	return nil
}

func (g *memGateway) AppendOrder(_ context.Context, handle string, r domain.Receipt) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	a := g.lookup(handle)
	if a == nil {
		return catalog.ErrAccountNotFound
	}
	a.Orders = append(a.Orders, r)
	return nil
}

func (g *memGateway) DeleteAccount(_ context.Context, handle string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	a := g.lookup(handle)
	if a == nil {
		return catalog.ErrAccountNotFound
	}
	delete(g.accounts, a.Handle())
	return nil
}

// lookup mirrors the gateway's $or on email/username. Callers hold the
// lock.
func (g *memGateway) lookup(handle string) *domain.Account {
	for _, a := range g.accounts {
		if a.Email == handle || (a.Username != "" && a.Username == handle) {
			return a
		}
	}
	return nil
}
