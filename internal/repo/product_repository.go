package repo

import (
	"errors"

	"github.com/rogerio-castellano/catalog-console/internal/models"
)

// ErrProductNotFound is returned when a product is not found in the repository.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data operations.
type ProductRepository interface {
	Create(in models.ProductInput) (models.Product, error)
	GetAll() ([]models.Product, error)
	GetByID(id int) (models.Product, error)
	GetByName(name string) (models.Product, error)
	Update(product models.Product) (models.Product, error)
}
