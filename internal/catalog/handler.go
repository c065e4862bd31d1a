package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/safetrack/epp-inspection/internal"
	"github.com/safetrack/epp-inspection/internal/transport"
	"github.com/safetrack/epp-inspection/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// ListItems serves the checklist source. Any authenticated role may read it;
// admins can ask for archived entries too with ?include_archived=true.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	var (
		items []*EppItem
		err   error
	)
	if r.URL.Query().Get("include_archived") == "true" {
		items, err = h.Service.ListAll(r.Context())
	} else {
		items, err = h.Service.ListActive(r.Context())
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, internal.ErrCatalogItemNotFound) {
			h.WriteError(w, http.StatusNotFound, "catalog item not found")
			return
		}
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var dto CreateItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var dto UpdateItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		if errors.Is(err, internal.ErrCatalogItemNotFound) {
			h.WriteError(w, http.StatusNotFound, "catalog item not found")
			return
		}
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) ArchiveItem(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Service.Archive)
}

func (h *Handler) UnarchiveItem(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.Service.Unarchive)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, op func(context.Context, string) error) {
	id := chi.URLParam(r, "id")

	if err := op(r.Context(), id); err != nil {
		if errors.Is(err, internal.ErrCatalogItemNotFound) {
			h.WriteError(w, http.StatusNotFound, "catalog item not found")
			return
		}
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteItem removes an item outright. If inspection history references it,
// the 409 tells the admin to archive instead.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, internal.ErrCatalogItemNotFound) {
			h.WriteError(w, http.StatusNotFound, "catalog item not found")
			return
		}
		if errors.Is(err, internal.ErrReferencedByHistory) {
			h.WriteError(w, http.StatusConflict, "item is referenced by inspection history; archive it instead")
			return
		}
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
