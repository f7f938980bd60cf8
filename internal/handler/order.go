package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/theerakarnm/ekoe-checkout/internal/order"
)

type placeOrderRequest struct {
	Items            []orderItemRequest `json:"items"`
	DiscountCode     string             `json:"discountCode"`
	ShippingMethodID string             `json:"shippingMethodId"`
	PaymentMethod    string             `json:"paymentMethod"`
	ReturnURL        string             `json:"returnUrl"`
}

type orderItemRequest struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type orderView struct {
	ID            string       `json:"id"`
	Subtotal      int64        `json:"subtotal"`
	ShippingCost  int64        `json:"shippingCost"`
	Discount      int64        `json:"discount"`
	Total         int64        `json:"total"`
	PaymentMethod string       `json:"paymentMethod"`
	PaymentStatus string       `json:"paymentStatus"`
	Items         []order.Item `json:"items"`
}

type placeOrderResponse struct {
	Order      orderView     `json:"order"`
	Products   []productView `json:"products"`
	QR         *qrView       `json:"qr,omitempty"`
	PaymentURL string        `json:"paymentUrl,omitempty"`
}

type qrView struct {
	PaymentID string    `json:"paymentId"`
	QRImage   string    `json:"qrImage"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PlaceOrder creates an order from the submitted items, initiates payment
// with the provider, and starts watching QR payments until a terminal
// status or expiry.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(w, r)

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]order.RequestItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.RequestItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		}
	}

	result, err := h.orderService.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		SessionID:        sessionID,
		Items:            items,
		DiscountCode:     req.DiscountCode,
		ShippingMethodID: req.ShippingMethodID,
		PaymentMethod:    order.PaymentMethod(req.PaymentMethod),
		ReturnURL:        req.ReturnURL,
	})
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	resp := placeOrderResponse{
		Order: orderView{
			ID:            result.Order.ID,
			Subtotal:      result.Order.Subtotal,
			ShippingCost:  result.Order.ShippingCost,
			Discount:      result.Order.Discount,
			Total:         result.Order.Total,
			PaymentMethod: string(result.Order.PaymentMethod),
			PaymentStatus: string(result.Order.PaymentStatus),
			Items:         result.Order.Items,
		},
		PaymentURL: result.PaymentURL,
	}
	for _, p := range result.Products {
		resp.Products = append(resp.Products, h.toProductView(p))
	}
	if result.QR != nil {
		resp.QR = &qrView{
			PaymentID: result.QR.PaymentID,
			QRImage:   result.QR.QRImage,
			ExpiresAt: result.QR.ExpiresAt,
		}
		h.monitor.Watch(result.Order.ID, result.QR.PaymentID, result.QR.ExpiresAt)
	}

	writeJSON(w, r, http.StatusCreated, resp)
}

// writeOrderError maps order placement errors to API responses.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrUnknownShippingMethod),
		errors.Is(err, order.ErrUnknownPaymentMethod):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var iqErr *order.InvalidQuantityError
	if errors.As(err, &iqErr) {
		writeError(w, r, http.StatusUnprocessableEntity, iqErr.Error())
		return
	}

	var pnfErr *order.ProductNotFoundError
	if errors.As(err, &pnfErr) {
		writeError(w, r, http.StatusUnprocessableEntity, pnfErr.Error())
		return
	}

	var rejErr *order.DiscountRejectedError
	if errors.As(err, &rejErr) {
		writeJSON(w, r, http.StatusUnprocessableEntity, discountRejection{
			Code:          http.StatusUnprocessableEntity,
			RejectionCode: string(rejErr.Rejection.Code),
			Message:       rejErr.Rejection.UserMessage(),
		})
		return
	}

	internalError(w, r, err)
}

type paymentStatusResponse struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId,omitempty"`
	Status    string `json:"status"`
}

// PaymentStatus reports the current payment status of an order. The
// status is read from storage, which the payment monitor keeps current.
func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, paymentStatusResponse{
		OrderID:   o.ID,
		PaymentID: o.PaymentID,
		Status:    string(o.PaymentStatus),
	})
}
