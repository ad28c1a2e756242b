package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/cart"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/catalog"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/checkout"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/identity"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/session"
)

var (
	errMalformed     = errors.New("request body is not valid JSON")
	errUnprocessable = errors.New("missing or invalid required fields")
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// decodeBody parses a JSON request body. Syntax problems are malformed
// input (400); a field of the wrong JSON type, such as a fractional
// quantity, is a validation failure (422).
func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return errUnprocessable
		}
		return errMalformed
	}
	return nil
}

func (a *API) respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.log.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

// respondError maps the domain error taxonomy onto status codes. Anything
// unrecognized is a persistence failure: logged in full, reported as a
// bare 500.
func (a *API) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		a.log.ErrorContext(r.Context(), "request failed", "error", err)
		message = "internal server error"
	}
	a.respondJSON(w, r, status, ErrorResponse{Error: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errMalformed):
		return http.StatusBadRequest
	case errors.Is(err, errUnprocessable),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrInvalidCredit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrUnauthenticated),
		errors.Is(err, identity.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrForbidden),
		errors.Is(err, cart.ErrAgeRestricted):
		return http.StatusForbidden
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrAccountNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrStockConflict),
		errors.Is(err, identity.ErrAccountExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
