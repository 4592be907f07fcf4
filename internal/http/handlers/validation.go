package handlers

import (
	"strings"
)

type ProductValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func validateProduct(p ProductRequest) []ProductValidationError {
	errs := []ProductValidationError{}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ProductValidationError{Field: "name", Description: "name is required"})
	}
	if strings.TrimSpace(p.Category) == "" {
		errs = append(errs, ProductValidationError{Field: "category", Description: "category is required"})
	}
	if p.Price.IsNegative() {
		errs = append(errs, ProductValidationError{Field: "price", Description: "price cannot be negative"})
	}
	if p.Stock < 0 {
		errs = append(errs, ProductValidationError{Field: "stock", Description: "stock cannot be negative"})
	}
	return errs
}
