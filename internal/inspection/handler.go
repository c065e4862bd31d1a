package inspection

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/safetrack/epp-inspection/internal"
	"github.com/safetrack/epp-inspection/internal/auth"
	"github.com/safetrack/epp-inspection/internal/transport"
	"github.com/safetrack/epp-inspection/pkg/logger"
)

const maxPhotoSize = 10 << 20 // 10 MiB

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

// SubmitVoluntary records the caller's own self-inspection.
func (h *Handler) SubmitVoluntary(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := auth.UserFromContext(r.Context())
	if !ok || sessionUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto SubmitVoluntaryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	insp, err := h.Service.SubmitVoluntary(r.Context(), sessionUser.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, insp)
}

// RequestAudit opens a pending audit on behalf of the calling supervisor.
func (h *Handler) RequestAudit(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := auth.UserFromContext(r.Context())
	if !ok || sessionUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto RequestAuditDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	insp, err := h.Service.RequestAudit(r.Context(), sessionUser.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, insp)
}

// CompleteAudit closes a pending audit with the caller's verdicts.
func (h *Handler) CompleteAudit(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := auth.UserFromContext(r.Context())
	if !ok || sessionUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	var dto CompleteAuditDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	insp, err := h.Service.CompleteAudit(r.Context(), id, sessionUser.ID, dto)
	if err != nil {
		if errors.Is(err, internal.ErrInspectionNotFound) {
			h.WriteError(w, http.StatusNotFound, "inspection not found")
			return
		}
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, insp)
}

// ListInspections serves the supervisor history view with optional q and
// date query filters.
func (h *Handler) ListInspections(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Query: r.URL.Query().Get("q"),
		Date:  r.URL.Query().Get("date"),
	}

	inspections, err := h.Service.ListAll(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"inspections": inspections})
}

// ListMine serves the technician's own history.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := auth.UserFromContext(r.Context())
	if !ok || sessionUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	inspections, err := h.Service.ListForTechnician(r.Context(), sessionUser.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"inspections": inspections})
}

// ListPendingAudits serves the audits waiting on the caller.
func (h *Handler) ListPendingAudits(w http.ResponseWriter, r *http.Request) {
	sessionUser, ok := auth.UserFromContext(r.Context())
	if !ok || sessionUser == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	inspections, err := h.Service.PendingAudits(r.Context(), sessionUser.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"inspections": inspections})
}

func (h *Handler) GetInspection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	insp, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, internal.ErrInspectionNotFound) {
			h.WriteError(w, http.StatusNotFound, "inspection not found")
			return
		}
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, insp)
}

// KPI serves the compliance dashboard numbers.
func (h *Handler) KPI(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.KPI(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

// UploadPhoto accepts one multipart photo tied to a catalog item and returns
// its public URL.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	eppID := r.FormValue("epp_id")
	if eppID == "" {
		h.WriteError(w, http.StatusBadRequest, "epp_id is required")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	url, err := h.Service.UploadPhoto(r.Context(), eppID, header.Filename,
		file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"photo_url": url})
}
