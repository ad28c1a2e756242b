package httpapi

import (
	"net/http"
)

type addToCartRequest struct {
	ID       *string `json:"_id"`
	Quantity *int    `json:"quantity"`
}

func (a *API) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeBody(r, &req); err != nil {
		a.respondError(w, r, err)
		return
	}
	if req.ID == nil || req.Quantity == nil || *req.Quantity < 1 {
		a.respondError(w, r, errUnprocessable)
		return
	}

	sess := sessionFrom(r.Context())
	updated, err := a.carts.AddItem(r.Context(), sess, *req.ID, *req.Quantity)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, updated)
}

func (a *API) handleViewCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	a.respondJSON(w, r, http.StatusOK, a.carts.View(sess))
}

type removeFromCartRequest struct {
	ID *string `json:"_id"`
}

func (a *API) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req removeFromCartRequest
	if err := decodeBody(r, &req); err != nil {
		a.respondError(w, r, err)
		return
	}
	if req.ID == nil {
		a.respondError(w, r, errUnprocessable)
		return
	}

	sess := sessionFrom(r.Context())
	updated, err := a.carts.RemoveItem(sess, *req.ID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, updated)
}
