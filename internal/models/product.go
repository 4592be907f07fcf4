package models

import "github.com/shopspring/decimal"

func init() {
	// The remote store speaks plain JSON numbers for prices.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product record as held by the remote product store.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price" swaggertype:"number"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
	Description string          `json:"description,omitempty"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}

// ProductInput is the payload used to create a product.
type ProductInput struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price" swaggertype:"number"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
	Description string          `json:"description,omitempty"`
}

// WithID builds the product identified by id carrying these fields.
func (in ProductInput) WithID(id int) Product {
	return Product{
		ID:          id,
		Name:        in.Name,
		Category:    in.Category,
		Price:       in.Price,
		Stock:       in.Stock,
		Image:       in.Image,
		Description: in.Description,
	}
}

// ProductUpdate is the payload sent through the gateway on PUT: {id, ...fields}.
type ProductUpdate struct {
	ID int `json:"id"`
	ProductInput
}
