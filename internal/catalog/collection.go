package catalog

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/rogerio-castellano/catalog-console/internal/forms"
	"github.com/rogerio-castellano/catalog-console/internal/models"
)

// Filter is the active search state of a collection view.
// An empty Category means no category filter.
type Filter struct {
	Search   string
	Category string
}

// Matches reports whether p passes both predicates.
func (f Filter) Matches(p models.Product) bool {
	search := strings.ToLower(f.Search)
	matchesSearch := strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Category), search)
	if !matchesSearch {
		return false
	}
	return f.Category == "" || p.Category == f.Category
}

// Collection is the in-memory product list of one console session, kept in
// sync with the remote store through the gateway.
type Collection struct {
	gw Gateway

	mu       sync.Mutex
	products []models.Product
	filter   Filter
	loaded   bool

	// issued counts loads started; applied is the sequence of the last load
	// whose result was kept.
	issued  uint64
	applied uint64

	view      []models.Product
	viewValid bool
}

// NewCollection creates an empty collection backed by gw.
func NewCollection(gw Gateway) *Collection {
	return &Collection{gw: gw}
}

// Seed installs server-fetched initial data.
func (c *Collection) Seed(products []models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products = slices.Clone(products)
	c.loaded = true
	c.viewValid = false
}

// Load replaces the collection with the gateway's current list.
func (c *Collection) Load(ctx context.Context) error {
	const op = "Collection.Load"
	log := slog.With("op", op)

	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	products, err := c.gw.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.applied {
		log.Debug("discarding stale load", "seq", seq, "applied", c.applied)
		return ErrStaleResponse
	}
	c.applied = seq

	if err != nil {
		if !c.loaded {
			c.products = []models.Product{}
			c.viewValid = false
		}
		log.Warn("failed to load products", "err", err)
		return err
	}

	c.products = products
	if c.products == nil {
		c.products = []models.Product{}
	}
	c.loaded = true
	c.viewValid = false
	return nil
}

// reload is Load for the refresh that follows a write. A stale response
// means a newer load already landed, so it counts as success.
func (c *Collection) reload(ctx context.Context) error {
	if err := c.Load(ctx); err != nil && !errors.Is(err, ErrStaleResponse) {
		return err
	}
	return nil
}

// Loading reports whether a load is in flight.
func (c *Collection) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issued > c.applied
}

// Loaded reports whether the collection has ever received data.
func (c *Collection) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Products returns a copy of the whole collection.
func (c *Collection) Products() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.products)
}

// Get returns the product with the given id.
func (c *Collection) Get(id int) (models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return models.Product{}, false
	}
	return c.products[i], true
}

// SetFilter replaces the filter state.
func (c *Collection) SetFilter(f Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f != c.filter {
		c.filter = f
		c.viewValid = false
	}
}

// Filter returns the current filter state.
func (c *Collection) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// FilteredView returns the products that pass the current filter, in
// collection order.
func (c *Collection) FilteredView() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.viewValid {
		c.view = FilterProducts(c.products, c.filter)
		c.viewValid = true
	}
	return slices.Clone(c.view)
}

// FilterProducts derives the subsequence of products matching f.
func FilterProducts(products []models.Product, f Filter) []models.Product {
	view := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			view = append(view, p)
		}
	}
	return view
}

// Categories returns the distinct non-empty categories in first-seen order.
func (c *Collection) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Categories(c.products)
}

// Categories lists the distinct non-empty categories of products.
func Categories(products []models.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Add validates the form, creates the product through the gateway and
// reloads. The collection is untouched when validation or creation fails.
func (c *Collection) Add(ctx context.Context, form forms.ProductForm) error {
	in, err := form.Input(forms.ModeAdd)
	if err != nil {
		return err
	}
	if err := c.gw.Create(ctx, in); err != nil {
		return err
	}
	if err := c.reload(ctx); err != nil {
		return &RefreshError{Err: err}
	}
	return nil
}

// Edit validates the form, merges it over the stored record and sends the
// result through the gateway. On success the merged record is applied
// locally and then replaced by a reload.
func (c *Collection) Edit(ctx context.Context, id int, form forms.ProductForm) error {
	in, err := form.Input(forms.ModeEdit)
	if err != nil {
		return err
	}

	existing, ok := c.Get(id)
	if !ok {
		return ErrProductNotFound
	}
	if in.Description == "" {
		in.Description = existing.Description
	}

	if err := c.gw.Update(ctx, models.ProductUpdate{ID: id, ProductInput: in}); err != nil {
		return err
	}

	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.products[i] = in.WithID(id)
		c.viewValid = false
	}
	c.mu.Unlock()

	if err := c.reload(ctx); err != nil {
		return &RefreshError{Err: err}
	}
	return nil
}

// Delete removes the product from this collection only. The remote store
// has no delete endpoint, so nothing is sent through the gateway.
func (c *Collection) Delete(id int) (models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return models.Product{}, false
	}
	removed := c.products[i]
	c.products = slices.Delete(slices.Clone(c.products), i, i+1)
	c.viewValid = false
	return removed, true
}

func (c *Collection) indexOf(id int) int {
	return slices.IndexFunc(c.products, func(p models.Product) bool { return p.ID == id })
}
