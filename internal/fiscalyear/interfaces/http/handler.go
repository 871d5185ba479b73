package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	fiscalyearapp "govnext-ledger/internal/fiscalyear/application"
	fiscalyear "govnext-ledger/internal/fiscalyear/domain"
)

const dateLayout = "2006-01-02"

// Handler serves fiscal year endpoints.
type Handler struct {
	service *fiscalyearapp.RegistryService
}

// NewHandler constructs a Handler.
func NewHandler(service *fiscalyearapp.RegistryService) (*Handler, error) {
	if service == nil {
		return nil, errors.New("fiscal year handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP routes fiscal year requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/fiscal-years" && r.Method == http.MethodPost {
		h.handleCreate(w, r)
		return
	}
	if !strings.HasPrefix(r.URL.Path, "/api/v1/fiscal-years/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/fiscal-years/")
	parts := strings.Split(path, "/")
	if len(parts) < 1 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := parts[0]

	if len(parts) == 1 && r.Method == http.MethodGet {
		h.handleGet(w, r, id)
		return
	}
	if len(parts) == 2 && r.Method == http.MethodPost && parts[1] == "activate" {
		h.handleActivate(w, r, id)
		return
	}
	if len(parts) == 2 && r.Method == http.MethodPost && parts[1] == "close" {
		h.handleClose(w, r, id)
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		http.Error(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	fy, err := h.service.Create(r.Context(), start.UTC(), end.UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(fy))
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request, id string) {
	fy, err := h.service.Activate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(fy))
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request, id string) {
	fy, err := h.service.Close(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(fy))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	fy, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(fy))
}

type response struct {
	ID        string `json:"id"`
	Year      int    `json:"year"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
	Version   int64  `json:"version"`
}

func toResponse(fy *fiscalyear.FiscalYear) response {
	return response{
		ID:        fy.ID,
		Year:      fy.Year,
		StartDate: fy.StartDate.Format(dateLayout),
		EndDate:   fy.EndDate.Format(dateLayout),
		Status:    string(fy.Status),
		Version:   fy.Version,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fiscalyear.ErrInvalidRange):
		writeStatus(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, fiscalyear.ErrOverlap),
		errors.Is(err, fiscalyear.ErrDuplicateActive),
		errors.Is(err, fiscalyear.ErrInvalidTransition):
		writeStatus(w, http.StatusConflict, err)
	case errors.Is(err, fiscalyear.ErrNotFound):
		writeStatus(w, http.StatusNotFound, err)
	default:
		writeStatus(w, http.StatusBadRequest, err)
	}
}

func writeStatus(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
