package forms

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rogerio-castellano/catalog-console/internal/models"
	"github.com/shopspring/decimal"
)

// Mode selects the rule set applied to a product form.
type Mode int

const (
	// ModeAdd requires every field, description included.
	ModeAdd Mode = iota
	// ModeEdit leaves the description optional.
	ModeEdit
)

// ProductForm carries the raw text entered in the add/edit dialogs.
type ProductForm struct {
	Image       string `form:"image" validate:"required"`
	Name        string `form:"name" validate:"required"`
	Category    string `form:"category" validate:"required"`
	Description string `form:"description" validate:"required"`
	Price       string `form:"price" validate:"required,decimal,nonnegative"`
	Stock       string `form:"stock" validate:"required,integer,nonnegative"`
}

// FieldError is a single field-level validation message.
type FieldError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// ValidationError is returned when a form fails local validation. It never
// reaches the gateway.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Description
	}
	return "invalid product: " + strings.Join(parts, "; ")
}

// For returns the message attached to field, or "".
func (e *ValidationError) For(field string) string {
	if e == nil {
		return ""
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Description
		}
	}
	return ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Inputs are trimmed before validation; the custom rules only see
	// non-empty values because "required" runs first.
	v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		_, err := decimal.NewFromString(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
		_, err := strconv.Atoi(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("nonnegative", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return true
		}
		return !d.IsNegative()
	})

	return v
}

var messages = map[string]map[string]string{
	"image":       {"required": "Please input the Image Link!"},
	"name":        {"required": "Please input your product Name!"},
	"category":    {"required": "Please input your Category!"},
	"description": {"required": "Please input the product description!"},
	"price": {
		"required":    "Please input your Price!",
		"decimal":     "Price must be a number",
		"nonnegative": "Price cannot be negative",
	},
	"stock": {
		"required":    "Please input your Stock!",
		"integer":     "Stock must be an integer",
		"nonnegative": "Stock cannot be negative",
	},
}

// FromValues reads a submitted HTML form.
func FromValues(values url.Values) ProductForm {
	return ProductForm{
		Image:       values.Get("image"),
		Name:        values.Get("name"),
		Category:    values.Get("category"),
		Description: values.Get("description"),
		Price:       values.Get("price"),
		Stock:       values.Get("stock"),
	}
}

// FromProduct pre-fills a form with the current values of p.
func FromProduct(p models.Product) ProductForm {
	return ProductForm{
		Image:       p.Image,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price.String(),
		Stock:       strconv.Itoa(p.Stock),
	}
}

func (f ProductForm) trimmed() ProductForm {
	return ProductForm{
		Image:       strings.TrimSpace(f.Image),
		Name:        strings.TrimSpace(f.Name),
		Category:    strings.TrimSpace(f.Category),
		Description: strings.TrimSpace(f.Description),
		Price:       strings.TrimSpace(f.Price),
		Stock:       strings.TrimSpace(f.Stock),
	}
}

// Validate applies the rules of mode and returns a *ValidationError listing
// every failing field, or nil.
func (f ProductForm) Validate(mode Mode) error {
	form := f.trimmed()

	var err error
	if mode == ModeEdit {
		err = validate.StructExcept(form, "Description")
	} else {
		err = validate.Struct(form)
	}
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Description: msg})
	}
	return out
}

// Input validates the form and coerces it into a product payload.
func (f ProductForm) Input(mode Mode) (models.ProductInput, error) {
	if err := f.Validate(mode); err != nil {
		return models.ProductInput{}, err
	}
	form := f.trimmed()

	price, err := decimal.NewFromString(form.Price)
	if err != nil {
		return models.ProductInput{}, err
	}
	stock, err := strconv.Atoi(form.Stock)
	if err != nil {
		return models.ProductInput{}, err
	}

	return models.ProductInput{
		Name:        form.Name,
		Category:    form.Category,
		Price:       price,
		Stock:       stock,
		Image:       form.Image,
		Description: form.Description,
	}, nil
}
