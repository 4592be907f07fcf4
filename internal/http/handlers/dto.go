package handlers

import "github.com/rogerio-castellano/catalog-console/internal/models"

// ErrorResponse is the body of every failed gateway call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ProductRequest is the body accepted by the stub store on POST and PUT.
type ProductRequest = models.ProductInput

// ProductResponse wraps a single product in the store envelope.
type ProductResponse struct {
	Body ProductBody `json:"body"`
}

type ProductBody struct {
	Data models.Product `json:"data"`
}

// ProductsResponse wraps the product list in the store envelope.
type ProductsResponse struct {
	Body ProductsBody `json:"body"`
}

type ProductsBody struct {
	Data []models.Product `json:"data"`
}

// StoreErrorResponse is returned by the stub store on rejected writes.
type StoreErrorResponse struct {
	Error  string                   `json:"error"`
	Fields []ProductValidationError `json:"fields,omitempty"`
}

// ImportProductsResult summarises a CSV import into the stub store.
type ImportProductsResult struct {
	ImportedProductsCount int                      `json:"imported"`
	Errors                []ProductValidationError `json:"errors"`
}
