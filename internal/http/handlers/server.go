package handlers

import (
	repo "github.com/rogerio-castellano/catalog-console/internal/repo"
)

var productRepo repo.ProductRepository

// SetProductRepo selects the repository behind the stub store handlers.
func SetProductRepo(r repo.ProductRepository) {
	productRepo = r
}
