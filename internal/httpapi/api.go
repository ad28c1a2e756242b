// Package httpapi exposes the storefront over HTTP. Paths, auth
// requirements and status codes are the compatibility surface; all domain
// decisions live in the engines.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/cart"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/catalog"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/checkout"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/identity"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/session"
)

type API struct {
	directory *session.Directory
	identity  *identity.Service
	carts     *cart.Engine
	checkouts *checkout.Engine
	gateway   catalog.Gateway
	log       *slog.Logger

	// sessionDump exposes GET /get-sessions, an unauthenticated dump of
	// the full session table. Debug affordance only; off by default.
	sessionDump bool
}

func New(
	directory *session.Directory,
	identitySvc *identity.Service,
	carts *cart.Engine,
	checkouts *checkout.Engine,
	gateway catalog.Gateway,
	log *slog.Logger,
	sessionDump bool,
) *API {
	return &API{
		directory:   directory,
		identity:    identitySvc,
		carts:       carts,
		checkouts:   checkouts,
		gateway:     gateway,
		log:         log,
		sessionDump: sessionDump,
	}
}

// Router wires the exact route table the original storefront exposed.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.logRequests)
	r.Use(chimw.Recoverer)

	r.Post("/signup", a.handleSignUp)
	r.Post("/login", a.handleLogIn)

	if a.sessionDump {
		r.Get("/get-sessions", a.handleSessionDump)
	}

	r.With(a.requireSession(session.RequireAny)).Post("/logout", a.handleLogOut)
	r.With(a.requireSession(session.RequireAny)).Post("/product-search", a.handleProductSearch)

	r.Route("/admin", func(r chi.Router) {
		r.Use(a.requireSession(session.RequireAdministrator))
		r.Post("/create-product", a.handleCreateProduct)
		r.Put("/update-product", a.handleUpdateProduct)
		r.Delete("/delete-product", a.handleDeleteProduct)
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(a.requireSession(session.RequireUser))
		r.Post("/add-to-cart", a.handleAddToCart)
		r.Post("/view-cart", a.handleViewCart)
		r.Delete("/remove-from-cart", a.handleRemoveFromCart)
		r.Post("/checkout", a.handleCheckout)
		r.Post("/view-order-history", a.handleOrderHistory)
		r.Delete("/delete-account", a.handleDeleteAccount)
	})

	return otelhttp.NewHandler(r, "storefront")
}
