// Package restapi serves any catalog.Catalog over the marketplace REST
// surface. Backed by a MemStore it lets the front-end run offline; backed by
// a catalog.HTTPClient it acts as a pass-through proxy to the real API.
package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dusk-indust/lendit/internal/catalog"
)

// errBadRequest marks malformed input: bad ids, headers or bodies.
var errBadRequest = errors.New("bad request")

// errorBody is the JSON body of every non-2xx response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type handler struct {
	cat catalog.Catalog
}

// NewHandler returns the REST routes for cat wrapped in CORS, logging and
// tracing middleware.
func NewHandler(cat catalog.Catalog) http.Handler {
	return CORS(Logging(Tracing(Routes(cat))))
}

// Routes returns the bare REST routes for cat, without middleware.
func Routes(cat catalog.Catalog) *http.ServeMux {
	h := &handler{cat: cat}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /users", h.listUsers)
	mux.HandleFunc("POST /users", h.createUser)
	mux.HandleFunc("GET /users/{id}", h.getUser)
	mux.HandleFunc("PATCH /users/{id}", h.updateUser)
	mux.HandleFunc("DELETE /users/{id}", h.deleteUser)

	mux.HandleFunc("GET /items", h.listItems)
	mux.HandleFunc("POST /items", h.createItem)
	mux.HandleFunc("GET /items/search", h.searchItems)
	mux.HandleFunc("GET /items/{id}", h.getItem)
	mux.HandleFunc("PATCH /items/{id}", h.updateItem)
	mux.HandleFunc("DELETE /items/{id}", h.deleteItem)

	return mux
}

// ---------- Users ----------

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.cat.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []catalog.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	u, err := h.cat.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in catalog.NewUser
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	u, err := h.cat.CreateUser(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var patch catalog.UserPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	u, err := h.cat.UpdateUser(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.cat.DeleteUser(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------- Items ----------

func (h *handler) listItems(w http.ResponseWriter, r *http.Request) {
	filter, err := ownerFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := h.cat.ListItems(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeItems(w, items)
}

func (h *handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	it, err := h.cat.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *handler) createItem(w http.ResponseWriter, r *http.Request) {
	owner, err := actingUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in catalog.NewItem
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	it, err := h.cat.CreateItem(r.Context(), owner, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	owner, err := actingUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var patch catalog.ItemPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	it, err := h.cat.UpdateItem(r.Context(), owner, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.cat.DeleteItem(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) searchItems(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if err := catalog.ValidateQuery(text); err != nil {
		writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	items, err := h.cat.SearchItems(r.Context(), text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeItems(w, items)
}

// ---------- Request parsing ----------

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return id, nil
}

// actingUser reads the mandatory owner header of item writes.
func actingUser(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(catalog.OwnerHeader))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s header required", errBadRequest, catalog.OwnerHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, catalog.OwnerHeader, raw)
	}
	return id, nil
}

// ownerFilter reads the optional owner header of item listings; missing or
// "All" means every owner.
func ownerFilter(r *http.Request) (catalog.OwnerFilter, error) {
	raw := strings.TrimSpace(r.Header.Get(catalog.OwnerHeader))
	if raw == "" || strings.EqualFold(raw, catalog.AllOwnersHeader) {
		return catalog.AllOwners(), nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return catalog.OwnerFilter{}, fmt.Errorf("%w: invalid %s %q", errBadRequest, catalog.OwnerHeader, raw)
	}
	return catalog.OwnedBy(id), nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %v", errBadRequest, err)
	}
	return nil
}

// ---------- Responses ----------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeItems(w http.ResponseWriter, items []catalog.Item) {
	if items == nil {
		items = []catalog.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusServiceUnavailable {
		message = "Cannot connect to the marketplace backend. Make sure it is running: " + err.Error()
	}
	writeJSON(w, status, errorBody{Error: http.StatusText(status), Message: message})
}

// statusFor maps a catalog error onto the status the API would have sent.
// Upstream statuses pass through unchanged in proxy mode.
func statusFor(err error) int {
	var se *catalog.StatusError
	var netErr net.Error
	switch {
	case errors.As(err, &se):
		return se.Code
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &netErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
