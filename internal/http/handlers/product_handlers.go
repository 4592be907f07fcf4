package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	repo "github.com/rogerio-castellano/catalog-console/internal/repo"
)

// The handlers below implement the remote product store contract on top of
// an in-memory repository, for local development and tests.

// GetProductsHandler godoc
// @Summary List all products (stub store)
// @Tags stub
// @Produce json
// @Success 200 {object} ProductsResponse
// @Failure 500 {object} StoreErrorResponse
// @Router /stub/products [get]
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := productRepo.GetAll()
	if err != nil {
		storeError(w, http.StatusInternalServerError, "could not fetch products", nil)
		return
	}
	writeStore(w, http.StatusOK, ProductsResponse{Body: ProductsBody{Data: products}})
}

// CreateProductHandler godoc
// @Summary Create a new product (stub store)
// @Tags stub
// @Accept json
// @Produce json
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductResponse
// @Failure 400 {object} StoreErrorResponse
// @Router /stub/products [post]
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		storeError(w, http.StatusBadRequest, "invalid input", nil)
		return
	}

	if validationErrors := validateProduct(req); len(validationErrors) > 0 {
		storeError(w, http.StatusBadRequest, validationErrors[0].Description, validationErrors)
		return
	}

	created, err := productRepo.Create(req)
	if err != nil {
		storeError(w, http.StatusInternalServerError, "could not create product", nil)
		return
	}

	writeStore(w, http.StatusCreated, ProductResponse{Body: ProductBody{Data: created}})
}

// UpdateProductHandler godoc
// @Summary Update a product (stub store)
// @Tags stub
// @Accept json
// @Produce json
// @Param id query int true "Product ID"
// @Param product body ProductRequest true "Updated product"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} StoreErrorResponse
// @Failure 404 {object} StoreErrorResponse
// @Router /stub/products [put]
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		storeError(w, http.StatusBadRequest, "invalid product ID", nil)
		return
	}

	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		storeError(w, http.StatusBadRequest, "invalid input", nil)
		return
	}

	if validationErrors := validateProduct(req); len(validationErrors) > 0 {
		storeError(w, http.StatusBadRequest, validationErrors[0].Description, validationErrors)
		return
	}

	updated, err := productRepo.Update(req.WithID(id))
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			storeError(w, http.StatusNotFound, "product not found", nil)
			return
		}
		storeError(w, http.StatusInternalServerError, "could not update product", nil)
		return
	}

	writeStore(w, http.StatusOK, ProductResponse{Body: ProductBody{Data: updated}})
}

func storeError(w http.ResponseWriter, status int, msg string, fields []ProductValidationError) {
	writeStore(w, status, StoreErrorResponse{Error: msg, Fields: fields})
}

func writeStore(w http.ResponseWriter, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		slog.Error("failed to write response", "op", "stub.writeStore", "err", err)
	}
}
