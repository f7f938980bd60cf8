package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theerakarnm/ekoe-checkout/internal/cart"
	"github.com/theerakarnm/ekoe-checkout/internal/checkout"
	"github.com/theerakarnm/ekoe-checkout/internal/order"
	"github.com/theerakarnm/ekoe-checkout/internal/payment"
	"github.com/theerakarnm/ekoe-checkout/internal/product"
	"github.com/theerakarnm/ekoe-checkout/internal/promo"
	"github.com/theerakarnm/ekoe-checkout/internal/shipping"
)

// sessionHeader identifies the shopper session. Clients that cannot set
// headers fall back to the session cookie.
const (
	sessionHeader = "X-Session-ID"
	sessionCookie = "ekoe_session"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product
	// responses. When empty, image paths are returned as stored.
	ImageBaseURL string
}

// Handler serves the storefront REST API, delegating business logic to
// the domain services.
type Handler struct {
	products     product.Repository
	store        cart.Store
	giftRules    cart.RuleRepository
	applier      *promo.Applier
	engine       *promo.Engine
	gifts        *checkout.GiftFetcher
	shipping     shipping.Repository
	orderService *order.Service
	orders       order.Repository
	monitor      *payment.Monitor
	imageBaseURL string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	products product.Repository,
	store cart.Store,
	giftRules cart.RuleRepository,
	applier *promo.Applier,
	engine *promo.Engine,
	gifts *checkout.GiftFetcher,
	shippingRepo shipping.Repository,
	orderService *order.Service,
	orders order.Repository,
	monitor *payment.Monitor,
) *Handler {
	return &Handler{
		products:     products,
		store:        store,
		giftRules:    giftRules,
		applier:      applier,
		engine:       engine,
		gifts:        gifts,
		shipping:     shippingRepo,
		orderService: orderService,
		orders:       orders,
		monitor:      monitor,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Register mounts all API routes on the given mux. requireKey wraps the
// handlers that need an API key.
func (h *Handler) Register(mux *http.ServeMux, requireKey func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /api/v1/products", h.ListProducts)
	mux.HandleFunc("GET /api/v1/products/{id}", h.GetProduct)

	mux.HandleFunc("GET /api/v1/cart", h.GetCart)
	mux.HandleFunc("POST /api/v1/cart/items", h.AddCartItem)
	mux.HandleFunc("PATCH /api/v1/cart/items/{key}", h.PatchCartItem)
	mux.HandleFunc("DELETE /api/v1/cart/items/{key}", h.RemoveCartItem)

	mux.HandleFunc("POST /api/v1/cart/discount", h.ApplyDiscount)
	mux.HandleFunc("DELETE /api/v1/cart/discount", h.RemoveDiscount)

	mux.HandleFunc("GET /api/v1/shipping/methods", h.ListShippingMethods)
	mux.HandleFunc("GET /api/v1/checkout/summary", h.CheckoutSummary)

	mux.Handle("POST /api/v1/orders", requireKey(http.HandlerFunc(h.PlaceOrder)))
	mux.Handle("GET /api/v1/orders/{id}/payment", requireKey(http.HandlerFunc(h.PaymentStatus)))
}

// errorResponse is the uniform JSON error body.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Code: status, Message: msg})
}

// internalError logs the cause and returns an opaque 500 to the client.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("internal error", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

// sessionID resolves the shopper session from the request, minting a new
// one (and setting the cookie) on first contact.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if id := r.Header.Get(sessionHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// imageURL resolves a stored image path against the configured base URL.
func (h *Handler) imageURL(path string) string {
	if h.imageBaseURL == "" || path == "" {
		return path
	}
	if len(path) > 0 && path[0] == '/' {
		return h.imageBaseURL + path
	}
	return h.imageBaseURL + "/" + path
}
