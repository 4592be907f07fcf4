package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	handler "github.com/rogerio-castellano/catalog-console/internal/http/handlers"
)

func importCSV(t *testing.T, r http.Handler, mode, csvData string) (*httptest.ResponseRecorder, handler.ImportProductsResult) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "products.csv")
	part.Write([]byte(csvData))
	writer.Close()

	target := "/stub/products/import"
	if mode != "" {
		target += "?mode=" + mode
	}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp handler.ImportProductsResult
	if w.Code == http.StatusOK {
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return w, resp
}

func TestImportProductsHandler(t *testing.T) {
	r := stubRouter()

	t.Run("File with unique valid products", func(t *testing.T) {
		t.Cleanup(clearAllProducts)
		csvData := `name,category,price,stock,image
Mouse,Tech,25.99,10,https://placehold.co/mouse
Keyboard,Tech,45.00,5,`

		w, resp := importCSV(t, r, "", csvData)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		if resp.ImportedProductsCount != 2 {
			t.Errorf("expected 2 imported products, got %d", resp.ImportedProductsCount)
		}
		if len(resp.Errors) != 0 {
			t.Errorf("expected no errors, got %v", resp.Errors)
		}

		mouse, err := productRepo.GetByName("Mouse")
		if err != nil {
			t.Fatalf("expected Mouse to be stored: %v", err)
		}
		if mouse.Image != "https://placehold.co/mouse" {
			t.Errorf("expected image to be imported, got %q", mouse.Image)
		}
	})

	t.Run("File with one invalid product", func(t *testing.T) {
		t.Cleanup(clearAllProducts)
		csvData := `name,category,price,stock
Mouse,Tech,25.99,10
InvalidProduct,Tech,-1,3
Keyboard,Tech,45.00,5`

		w, resp := importCSV(t, r, "", csvData)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		if resp.ImportedProductsCount != 2 {
			t.Errorf("expected 2 imported products, got %d", resp.ImportedProductsCount)
		}
		if len(resp.Errors) != 1 {
			t.Fatalf("expected 1 error, got %v", resp.Errors)
		}
		if resp.Errors[0].Description != "row 3: price cannot be negative" {
			t.Errorf("unexpected error description %q", resp.Errors[0].Description)
		}
	})

	t.Run("Existing products are skipped or updated", func(t *testing.T) {
		t.Cleanup(clearAllProducts)
		createProduct(r, chair())
		csvData := `name,category,price,stock
Chair,Furniture,10,1`

		_, resp := importCSV(t, r, "", csvData)
		if resp.ImportedProductsCount != 0 || len(resp.Errors) != 1 {
			t.Errorf("expected skip, got %+v", resp)
		}

		_, resp = importCSV(t, r, "update", csvData)
		if resp.ImportedProductsCount != 1 {
			t.Errorf("expected 1 updated product, got %+v", resp)
		}
		stored, _ := productRepo.GetByID(1)
		if stored.Stock != 1 {
			t.Errorf("expected stock 1 after update, got %d", stored.Stock)
		}
	})

	t.Run("Missing column", func(t *testing.T) {
		t.Cleanup(clearAllProducts)
		w, _ := importCSV(t, r, "", "name,price\nMouse,1")

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}
