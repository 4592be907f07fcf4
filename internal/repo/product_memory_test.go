package repo

import (
	"testing"

	"github.com/rogerio-castellano/catalog-console/internal/models"
	"github.com/shopspring/decimal"
)

func TestInMemoryProductRepository_CreateAndGet(t *testing.T) {
	r := NewInMemoryProductRepository()

	first, _ := r.Create(models.ProductInput{Name: "Chair", Category: "Furniture", Price: decimal.RequireFromString("49.99"), Stock: 3})
	second, _ := r.Create(models.ProductInput{Name: "Lamp", Category: "Lighting", Price: decimal.RequireFromString("15"), Stock: 0})

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected sequential ids 1 and 2, got %d and %d", first.ID, second.ID)
	}

	got, err := r.GetByID(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Lamp" {
		t.Errorf("expected name 'Lamp', got %v", got.Name)
	}

	all, _ := r.GetAll()
	if len(all) != 2 {
		t.Errorf("expected 2 products, got %d", len(all))
	}

	if _, err := r.GetByID(99); err != ErrProductNotFound {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestInMemoryProductRepository_Update(t *testing.T) {
	r := NewInMemoryProductRepository()
	created, _ := r.Create(models.ProductInput{Name: "Old Name"})

	created.Name = "New Name"
	updated, err := r.Update(created)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "New Name" {
		t.Errorf("expected name 'New Name', got %v", updated.Name)
	}

	if _, err := r.Update(models.Product{ID: 42}); err != ErrProductNotFound {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestInMemoryProductRepository_GetAllReturnsCopy(t *testing.T) {
	r := NewInMemoryProductRepository()
	r.Create(models.ProductInput{Name: "Chair"})

	all, _ := r.GetAll()
	all[0].Name = "Mutated"

	got, _ := r.GetByID(1)
	if got.Name != "Chair" {
		t.Errorf("repository state changed through GetAll result: %v", got.Name)
	}

	r.Clear()
	all, _ = r.GetAll()
	if len(all) != 0 {
		t.Errorf("expected empty repository after Clear, got %d", len(all))
	}
}

func TestInMemoryProductRepository_GetByName(t *testing.T) {
	r := NewInMemoryProductRepository()
	r.Create(models.ProductInput{Name: "Desk Lamp"})

	got, err := r.GetByName("desk lamp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("expected id 1, got %d", got.ID)
	}

	if _, err := r.GetByName("Chair"); err != ErrProductNotFound {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}
