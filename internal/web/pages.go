package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/catalog-console/internal/catalog"
	"github.com/rogerio-castellano/catalog-console/internal/forms"
	"github.com/rogerio-castellano/catalog-console/internal/models"
	"github.com/rogerio-castellano/catalog-console/internal/session"
	"github.com/rogerio-castellano/catalog-console/internal/upstream"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"dashboard", "products", "product", "form", "error"}

// ProductSource reads the remote store directly, for server-rendered data.
type ProductSource interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int) (models.Product, error)
}

// ViewContext carries the per-request presentation state every page needs.
type ViewContext struct {
	Theme            string
	SelectedCategory string
	Flash            string
	Active           string
}

type page struct {
	View   ViewContext
	Title  string
	Notice string
	Data   any
}

// Pages serves the console's HTML pages.
type Pages struct {
	source     ProductSource
	registry   *catalog.Registry
	sessions   session.Store
	sessionTTL time.Duration
	templates  map[string]*template.Template
	intN       func(n int) int
}

// New parses the page templates and wires the handlers to their stores.
func New(source ProductSource, registry *catalog.Registry, sessions session.Store, sessionTTL time.Duration) (*Pages, error) {
	funcs := template.FuncMap{
		"money": money,
	}

	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = t
	}

	return &Pages{
		source:     source,
		registry:   registry,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		templates:  templates,
		intN:       rand.Intn,
	}, nil
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Routes mounts the console pages on r.
func (p *Pages) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(p.withSession)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		})
		r.Get("/dashboard", p.dashboard)

		r.Get("/products", p.listProducts)
		r.Post("/products/refresh", p.refreshProducts)
		r.Get("/products/new", p.newProductForm)
		r.Post("/products/new", p.createProduct)
		r.Get("/products/{id}", p.productDetail)
		r.Get("/products/{id}/edit", p.editProductForm)
		r.Post("/products/{id}/edit", p.updateProduct)
		r.Post("/products/{id}/delete", p.deleteProduct)

		r.Post("/preferences/theme", p.setTheme)
		r.Post("/preferences/category", p.setCategory)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			p.renderError(w, r, http.StatusNotFound, "Page not found.")
		})
	})
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, pg page) {
	sess := sessionFrom(r.Context())
	pg.View = ViewContext{
		Theme:            sess.Theme,
		SelectedCategory: sess.SelectedCategory,
		Flash:            sess.PopFlash(),
		Active:           pg.View.Active,
	}

	var buf bytes.Buffer
	if err := p.templates[name].ExecuteTemplate(&buf, "layout", pg); err != nil {
		slog.Error("failed to render page", "op", "Pages.render", "page", name, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorData struct {
	Status  int
	Message string
}

func (p *Pages) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	p.render(w, r, status, "error", page{
		Title: http.StatusText(status),
		Data:  errorData{Status: status, Message: msg},
	})
}

// redirectBack sends the client to the referring page of this site, or to
// fallback.
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := fallback
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && (ref.Host == "" || ref.Host == r.Host) {
		target = ref.Path
		if ref.RawQuery != "" {
			target += "?" + ref.RawQuery
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// collection returns the session's collection, seeding it from the store on
// first use.
func (p *Pages) collection(ctx context.Context, sess *session.Session) (*catalog.Collection, error) {
	coll := p.registry.Get(sess.ID)
	if coll.Loaded() {
		return coll, nil
	}
	products, err := p.source.ListProducts(ctx)
	if err != nil {
		return coll, err
	}
	coll.Seed(products)
	return coll, nil
}

func productID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, false
	}
	return id, true
}

type dashboardData struct {
	Total      int
	Categories []string
	Highlight  *models.Product
}

func (p *Pages) dashboard(w http.ResponseWriter, r *http.Request) {
	const op = "Pages.dashboard"
	log := slog.With("op", op)

	pg := page{Title: "Product Dashboard", View: ViewContext{Active: "dashboard"}}
	data := dashboardData{}

	products, err := p.source.ListProducts(r.Context())
	if err != nil {
		log.Error("failed to fetch products", "err", err)
		pg.Notice = "Failed to load products from the store."
	} else {
		data.Total = len(products)
		data.Categories = catalog.Categories(products)
		if len(products) > 0 {
			highlight := products[p.intN(len(products))]
			data.Highlight = &highlight
		}
	}

	pg.Data = data
	p.render(w, r, http.StatusOK, "dashboard", pg)
}

type productsData struct {
	Products   []models.Product
	Categories []string
	Filter     catalog.Filter
	Total      int
}

func (p *Pages) listProducts(w http.ResponseWriter, r *http.Request) {
	const op = "Pages.listProducts"
	log := slog.With("op", op)

	sess := sessionFrom(r.Context())
	pg := page{Title: "Products", View: ViewContext{Active: "products"}}

	coll, err := p.collection(r.Context(), sess)
	if err != nil {
		log.Error("failed to seed collection", "err", err)
		pg.Notice = "Failed to load products from the store."
	}

	query := r.URL.Query()
	filter := catalog.Filter{Search: query.Get("q"), Category: sess.SelectedCategory}
	if query.Has("category") {
		filter.Category = query.Get("category")
	}
	coll.SetFilter(filter)

	// Keep an active category selectable even when no product carries it.
	categories := coll.Categories()
	if filter.Category != "" && !slices.Contains(categories, filter.Category) {
		categories = append(categories, filter.Category)
	}

	pg.Data = productsData{
		Products:   coll.FilteredView(),
		Categories: categories,
		Filter:     filter,
		Total:      len(coll.Products()),
	}
	p.render(w, r, http.StatusOK, "products", pg)
}

func (p *Pages) refreshProducts(w http.ResponseWriter, r *http.Request) {
	const op = "Pages.refreshProducts"
	log := slog.With("op", op)

	sess := sessionFrom(r.Context())
	err := p.registry.Get(sess.ID).Load(r.Context())
	switch {
	case err == nil:
		sess.Flash = "Products refreshed."
	case errors.Is(err, catalog.ErrStaleResponse):
		// A newer refresh already landed.
	default:
		log.Error("failed to refresh products", "err", err)
		sess.Flash = "Failed to refresh data from external API."
	}
	redirectBack(w, r, "/products")
}

type formData struct {
	Mode        string
	Action      string
	ProductID   int
	Values      forms.ProductForm
	FieldErrors map[string]string
}

func fieldErrors(err error) map[string]string {
	var verr *forms.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Description
	}
	return out
}

// mutationNotice turns a failed add or edit into a user-facing message.
func mutationNotice(verb, gerund string, err error) string {
	var netErr *catalog.NetworkError
	if errors.As(err, &netErr) {
		return fmt.Sprintf("Network error occurred while %s product.", gerund)
	}
	var upErr *catalog.UpstreamError
	if errors.As(err, &upErr) {
		msg := upErr.Message
		if msg == "" {
			msg = http.StatusText(upErr.Status)
		}
		return fmt.Sprintf("Failed to %s product (%d): %s", verb, upErr.Status, msg)
	}
	return fmt.Sprintf("Failed to %s product.", verb)
}

func (p *Pages) newProductForm(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, "form", page{
		Title: "Add New Product",
		View:  ViewContext{Active: "products"},
		Data:  formData{Mode: "add", Action: "/products/new"},
	})
}

func (p *Pages) createProduct(w http.ResponseWriter, r *http.Request) {
	const op = "Pages.createProduct"
	log := slog.With("op", op)

	if err := r.ParseForm(); err != nil {
		p.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	sess := sessionFrom(r.Context())
	form := forms.FromValues(r.PostForm)

	coll := p.registry.Get(sess.ID)
	err := coll.Add(r.Context(), form)

	var refreshErr *catalog.RefreshError
	switch {
	case err == nil:
		sess.Flash = "Product added successfully!"
	case errors.As(err, &refreshErr):
		log.Warn("product added but refresh failed", "err", err)
		sess.Flash = "Product added successfully! Failed to refresh data from external API."
	default:
		data := formData{Mode: "add", Action: "/products/new", Values: form, FieldErrors: fieldErrors(err)}
		pg := page{Title: "Add New Product", View: ViewContext{Active: "products"}, Data: data}
		status := http.StatusUnprocessableEntity
		if data.FieldErrors == nil {
			log.Error("failed to add product", "err", err)
			pg.Notice = mutationNotice("add", "adding", err)
			status = http.StatusBadGateway
		}
		p.render(w, r, status, "form", pg)
		return
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (p *Pages) editProductForm(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		p.renderError(w, r, http.StatusNotFound, "Product not found.")
		return
	}
	sess := sessionFrom(r.Context())
	coll, err := p.collection(r.Context(), sess)
	if err != nil {
		p.renderError(w, r, http.StatusBadGateway, "Failed to load products from the store.")
		return
	}
	product, ok := coll.Get(id)
	if !ok {
		p.renderError(w, r, http.StatusNotFound, "Product not found.")
		return
	}

	p.render(w, r, http.StatusOK, "form", page{
		Title: "Edit Product",
		View:  ViewContext{Active: "products"},
		Data: formData{
			Mode:      "edit",
			Action:    fmt.Sprintf("/products/%d/edit", id),
			ProductID: id,
			Values:    forms.FromProduct(product),
		},
	})
}

func (p *Pages) updateProduct(w http.ResponseWriter, r *http.Request) {
	const op = "Pages.updateProduct"
	log := slog.With("op", op)

	id, ok := productID(r)
	if !ok {
		p.renderError(w, r, http.StatusNotFound, "Product not found.")
		return
	}
	if err := r.ParseForm(); err != nil {
		p.renderError(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	sess := sessionFrom(r.Context())
	form := forms.FromValues(r.PostForm)

	coll, err := p.collection(r.Context(), sess)
	if err != nil {
		log.Error("failed to seed collection", "err", err)
		p.renderError(w, r, http.StatusBadGateway, "Failed to load products from the store.")
		return
	}
	err = coll.Edit(r.Context(), id, form)

	var refreshErr *catalog.RefreshError
	switch {
	case err == nil:
		sess.Flash = "Product updated successfully!"
	case errors.As(err, &refreshErr):
		log.Warn("product updated but refresh failed", "err", err)
		sess.Flash = "Product updated successfully! Failed to refresh data from external API."
	case errors.Is(err, catalog.ErrProductNotFound):
		p.renderError(w, r, http.StatusNotFound, "Product not found.")
		return
	default:
		data := formData{
			Mode:        "edit",
			Action:      fmt.Sprintf("/products/%d/edit", id),
			ProductID:   id,
			Values:      form,
			FieldErrors: fieldErrors(err),
		}
		pg := page{Title: "Edit Product", View: ViewContext{Active: "products"}, Data: data}
		status := http.StatusUnprocessableEntity
		if data.FieldErrors == nil {
			log.Error("failed to update product", "id", id, "err", err)
			pg.Notice = mutationNotice("update", "updating", err)
			status = http.StatusBadGateway
		}
		p.render(w, r, status, "form", pg)
		return
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (p *Pages) deleteProduct(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	id, ok := productID(r)
	if ok {
		if removed, ok := p.registry.Get(sess.ID).Delete(id); ok {
			sess.Flash = fmt.Sprintf("Product %q deleted (local state only).", removed.Name)
		}
	}
	if sess.Flash == "" {
		sess.Flash = "Failed to delete product."
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (p *Pages) productDetail(w http.ResponseWriter, r *http.Request) {
	const op = "Pages.productDetail"
	log := slog.With("op", op)

	id, ok := productID(r)
	if !ok {
		p.renderError(w, r, http.StatusNotFound, "Product not found.")
		return
	}

	product, err := p.source.GetProduct(r.Context(), id)
	if errors.Is(err, upstream.ErrProductNotFound) {
		p.renderError(w, r, http.StatusNotFound, "Product not found.")
		return
	}
	if err != nil {
		log.Error("failed to fetch product", "id", id, "err", err)
		p.renderError(w, r, http.StatusBadGateway, "Failed to load the product from the store.")
		return
	}

	title := product.Name
	if title == "" {
		title = "Product"
	}
	p.render(w, r, http.StatusOK, "product", page{
		Title: title + " | Product Detail",
		View:  ViewContext{Active: "products"},
		Data:  product,
	})
}

func (p *Pages) setTheme(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	switch theme := r.PostFormValue("theme"); theme {
	case "light", "dark":
		sess.Theme = theme
	default:
		sess.ToggleTheme()
	}
	redirectBack(w, r, "/dashboard")
}

func (p *Pages) setCategory(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.SelectedCategory = r.PostFormValue("category")
	redirectBack(w, r, "/dashboard")
}
