package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/rogerio-castellano/catalog-console/docs"
	"github.com/rogerio-castellano/catalog-console/internal/http/handlers"
	mw "github.com/rogerio-castellano/catalog-console/internal/http/middleware"
	rl "github.com/rogerio-castellano/catalog-console/internal/http/rate_limiter"
	"github.com/rogerio-castellano/catalog-console/internal/web"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Deps are the components served by the router.
type Deps struct {
	Gateway *handlers.Gateway
	Metrics *handlers.GatewayMetrics
	Limiter *rl.Limiter
	Pages   *web.Pages
	// Stub mounts the in-memory product store under /stub/products.
	Stub bool
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.RequestLogger)
	r.Use(chimw.Recoverer)

	gateway := []func(http.Handler) http.Handler{handlers.CORS}
	if d.Limiter != nil {
		gateway = append(gateway, d.Limiter.Middleware)
	}
	r.With(gateway...).Handle("/api/products", d.Gateway)

	if d.Stub {
		r.Route("/stub/products", func(r chi.Router) {
			r.Get("/", handlers.GetProductsHandler)
			r.Post("/", handlers.CreateProductHandler)
			r.Put("/", handlers.UpdateProductHandler)
			r.Post("/import", handlers.ImportProductsHandler)
		})
	}

	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	d.Pages.Routes(r)
	return r
}
