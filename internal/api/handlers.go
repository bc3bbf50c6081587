package api

import (
	"context"
	"net/http"

	"dscommerce-be/internal/auth"
	"dscommerce-be/internal/category"
	"dscommerce-be/internal/order"
	"dscommerce-be/internal/pagination"
	"dscommerce-be/internal/product"
)

// ---------- HEALTH ----------

// Pinger reports whether a backing store is reachable. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ---------- CATEGORY ----------

type categoryHandler struct {
	svc category.Service
}

func (h *categoryHandler) list(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.FindAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTOs(cs))
}

// ---------- PRODUCT ----------

type productHandler struct {
	svc   product.Service
	guard auth.Guard
}

// admin resolves the caller of a catalog mutation. The role is checked
// before the path or body is read, so non-admins get 403 whatever they send.
func (h *productHandler) admin(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, err := principal(r)
	if err == nil {
		err = h.guard.RequireRole(p, auth.RoleAdmin)
	}
	if err != nil {
		writeError(w, r, err)
		return auth.Principal{}, false
	}
	return p, true
}

func (h *productHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.svc.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

func (h *productHandler) list(w http.ResponseWriter, r *http.Request) {
	opts := product.ListOptions{
		Name: r.URL.Query().Get("name"),
		Page: pagination.FromQuery(r),
	}

	page, err := h.svc.FindAll(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pagination.Map(page, toProductMinDTO))
}

func (h *productHandler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.admin(w, r)
	if !ok {
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.svc.Create(r.Context(), p, req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/products/"+formatID(created.ID))
	writeJSON(w, http.StatusCreated, toProductDTO(created))
}

func (h *productHandler) update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.admin(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.svc.Update(r.Context(), p, id, req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(updated))
}

func (h *productHandler) delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.admin(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), p, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------- ORDER ----------

type orderHandler struct {
	svc order.Service
}

func (h *orderHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.svc.FindByID(r.Context(), p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(o))
}

func (h *orderHandler) create(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.svc.Create(r.Context(), p, req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/orders/"+formatID(o.ID))
	writeJSON(w, http.StatusCreated, toOrderDTO(o))
}
