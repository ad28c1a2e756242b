package httpapi

import (
	"net/http"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/policy"
)

type checkoutRequest struct {
	Credit *string `json:"credit"`
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeBody(r, &req); err != nil {
		a.respondError(w, r, err)
		return
	}
	if req.Credit == nil || !policy.ValidCreditNumber(*req.Credit) {
		a.respondError(w, r, errUnprocessable)
		return
	}

	sess := sessionFrom(r.Context())
	receipt, err := a.checkouts.Checkout(r.Context(), sess, *req.Credit)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, receipt)
}

func (a *API) handleOrderHistory(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	orders, err := a.checkouts.OrderHistory(r.Context(), sess)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, orders)
}
