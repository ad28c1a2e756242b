package httpapi

import (
	"net/http"

	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/catalog"
	"github.com/Exner7/ErgasiaSept-E14166-Sviridov-Alexander/internal/domain"
)

type createProductRequest struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeBody(r, &req); err != nil {
		a.respondError(w, r, err)
		return
	}
	if req.Name == nil || req.Category == nil || req.Description == nil ||
		req.Price == nil || *req.Price < 0 ||
		req.Stock == nil || *req.Stock < 0 {
		a.respondError(w, r, errUnprocessable)
		return
	}

	product := &domain.Product{
		Name:        *req.Name,
		Category:    *req.Category,
		Description: *req.Description,
		Price:       *req.Price,
		Stock:       *req.Stock,
	}
	if _, err := a.gateway.InsertProduct(r.Context(), product); err != nil {
		a.respondError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, product)
}

type updateProductRequest struct {
	ID          *string  `json:"_id"`
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := decodeBody(r, &req); err != nil {
		a.respondError(w, r, err)
		return
	}
	if req.ID == nil ||
		(req.Price != nil && *req.Price < 0) ||
		(req.Stock != nil && *req.Stock < 0) {
		a.respondError(w, r, errUnprocessable)
		return
	}

	update := catalog.ProductUpdate{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if update.Empty() {
		a.respondError(w, r, errUnprocessable)
		return
	}

	if err := a.gateway.UpdateProduct(r.Context(), *req.ID, update); err != nil {
		a.respondError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, map[string]string{"message": "Success"})
}

type deleteProductRequest struct {
	ID *string `json:"_id"`
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	var req deleteProductRequest
	if err := decodeBody(r, &req); err != nil {
		a.respondError(w, r, err)
		return
	}
	if req.ID == nil {
		a.respondError(w, r, errUnprocessable)
		return
	}

	if err := a.gateway.DeleteProduct(r.Context(), *req.ID); err != nil {
		a.respondError(w, r, err)
		return
	}

	a.respondJSON(w, r, http.StatusOK, map[string]string{"message": "Success"})
}

type productSearchRequest struct {
	ID       *string `json:"_id"`
	Name     *string `json:"name"`
	Category *string `json:"category"`
}

func (a *API) handleProductSearch(w http.ResponseWriter, r *http.Request) {
	var req productSearchRequest
	if err := decodeBody(r, &req); err != nil {
		a.respondError(w, r, err)
		return
	}

	// One criterion applies; id wins over name wins over category. An
	// empty-string criterion counts as absent so it can never widen into an
	// unfiltered dump.
	var filter catalog.Filter
	switch {
	case req.ID != nil && *req.ID != "":
		filter.ID = *req.ID
	case req.Name != nil && *req.Name != "":
		filter.Name = *req.Name
	case req.Category != nil && *req.Category != "":
		filter.Category = *req.Category
	default:
		a.respondError(w, r, errUnprocessable)
		return
	}

	products, err := a.gateway.SearchProducts(r.Context(), filter)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	if len(products) == 0 {
		a.respondError(w, r, catalog.ErrProductNotFound)
		return
	}

	a.respondJSON(w, r, http.StatusOK, products)
}
