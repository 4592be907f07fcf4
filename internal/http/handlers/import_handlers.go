package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rogerio-castellano/catalog-console/internal/models"
	"github.com/shopspring/decimal"
)

var requiredColumns = []string{"name", "category", "price", "stock"}

type csvRow struct {
	Name        string
	Category    string
	Price       string
	Stock       string
	Image       string
	Description string
}

func parseCSV(r io.Reader) ([]csvRow, error) {
	reader := csv.NewReader(r)
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV header")
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	column := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []csvRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %v", err)
		}

		rows = append(rows, csvRow{
			Name:        column(record, "name"),
			Category:    column(record, "category"),
			Price:       column(record, "price"),
			Stock:       column(record, "stock"),
			Image:       column(record, "image"),
			Description: column(record, "description"),
		})
	}
	return rows, nil
}

func (r csvRow) input() (ProductRequest, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return ProductRequest{}, errors.New("invalid price")
	}
	stock, err := strconv.Atoi(r.Stock)
	if err != nil {
		return ProductRequest{}, errors.New("invalid stock")
	}
	in := models.ProductInput{
		Name:        r.Name,
		Category:    r.Category,
		Price:       price,
		Stock:       stock,
		Image:       r.Image,
		Description: r.Description,
	}
	if errs := validateProduct(in); len(errs) > 0 {
		return ProductRequest{}, errors.New(errs[0].Description)
	}
	return in, nil
}

// ImportProductsHandler godoc
// @Summary Import products via CSV (stub store)
// @Tags stub
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file with name,category,price,stock[,image,description] columns"
// @Param mode query string false "Import mode (skip|update)"
// @Success 200 {object} ImportProductsResult
// @Failure 400 {object} StoreErrorResponse
// @Router /stub/products/import [post]
func ImportProductsHandler(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(r.URL.Query().Get("mode"))
	if mode != "update" {
		mode = "skip" // default
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		storeError(w, http.StatusBadRequest, "missing file", nil)
		return
	}
	defer file.Close()

	records, err := parseCSV(file)
	if err != nil {
		storeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var imported int
	errorsList := []ProductValidationError{}

	for i, rec := range records {
		rowNum := i + 2 // header is row 1

		in, err := rec.input()
		if err != nil {
			errorsList = append(errorsList, ProductValidationError{Description: fmt.Sprintf("row %d: %v", rowNum, err)})
			continue
		}

		existing, err := productRepo.GetByName(in.Name)
		if err == nil {
			if mode == "skip" {
				errorsList = append(errorsList, ProductValidationError{Description: fmt.Sprintf("row %d: product '%s' already exists", rowNum, in.Name)})
				continue
			}
			if _, err := productRepo.Update(in.WithID(existing.ID)); err != nil {
				errorsList = append(errorsList, ProductValidationError{Description: fmt.Sprintf("row %d: failed to update '%s'", rowNum, in.Name)})
				continue
			}
			imported++
			continue
		}

		if _, err := productRepo.Create(in); err != nil {
			errorsList = append(errorsList, ProductValidationError{Description: fmt.Sprintf("row %d: %v", rowNum, err)})
			continue
		}
		imported++
	}

	writeStore(w, http.StatusOK, ImportProductsResult{
		ImportedProductsCount: imported,
		Errors:                errorsList,
	})
}
