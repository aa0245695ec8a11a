// Package api exposes HTTP handlers for the rotation service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"example.com/rotation/internal/auth"
	"example.com/rotation/internal/domain"
	"example.com/rotation/internal/observability"
)

const dateLayout = "2006-01-02"

// Handler coordinates HTTP requests with the domain service. The core
// assumes at most one concurrent mutator per group, so mutating endpoints
// serialize through a per-group lock.
type Handler struct {
	service    *domain.Service
	now        func() time.Time
	groupLocks sync.Map // group id -> *sync.Mutex
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

// lockGroup acquires the group's mutation lock and returns the release func.
func (h *Handler) lockGroup(id string) func() {
	value, _ := h.groupLocks.LoadOrStore(id, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/groups", h.groups)
	mux.HandleFunc("/v1/groups/auto-form", h.autoForm)
	mux.HandleFunc("/v1/groups/", h.groupSubresource)
	mux.HandleFunc("/v1/residents/", h.residentSubresource)
	mux.HandleFunc("/v1/buildings/", h.buildingSubresource)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) groups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	h.createGroup(w, r)
}

func (h *Handler) groupSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/groups/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing group id")
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodDelete:
		h.retireGroup(w, r, id)
	case sub == "summary" && r.Method == http.MethodGet:
		h.groupSummary(w, r, id)
	case sub == "schedule" && r.Method == http.MethodGet:
		h.getSchedule(w, r, id)
	case sub == "schedule" && r.Method == http.MethodPost:
		h.regenerateSchedule(w, r, id)
	case sub == "tasks/validate" && r.Method == http.MethodPost:
		h.validateTask(w, r, id)
	case sub == "tasks/miss" && r.Method == http.MethodPost:
		h.markMissed(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) residentSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/residents/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing resident id")
		return
	}
	if sub != "schedule" || r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	h.residentSchedule(w, r, id)
}

func (h *Handler) buildingSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/buildings/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing building id")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	switch sub {
	case "daily":
		h.dailyTasks(w, r, id)
	case "report":
		h.rotationReport(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown building resource")
	}
}

func requireScope(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return claims, true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scopes[0]+" required")
	return nil, false
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireScope(w, r, auth.ScopeRotaAdmin); !ok {
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	group, err := h.service.CreateGroup(r.Context(), domain.CreateGroupInput{
		ID:               req.ID,
		Name:             req.Name,
		BuildingID:       req.BuildingID,
		Members:          req.Members,
		Areas:            req.Areas,
		BlockRestriction: req.BlockRestriction,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toGroupView(*group))
}

func (h *Handler) autoForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := requireScope(w, r, auth.ScopeRotaAdmin); !ok {
		return
	}

	var req AutoFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.BuildingID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "building_id is required")
		return
	}

	created, err := h.service.AutoFormGroups(r.Context(), req.BuildingID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]GroupView, 0, len(created))
	for _, group := range created {
		views = append(views, toGroupView(group))
	}
	writeJSON(w, http.StatusCreated, AutoFormResponse{Groups: views})
}

func (h *Handler) retireGroup(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireScope(w, r, auth.ScopeRotaAdmin); !ok {
		return
	}
	defer h.lockGroup(id)()
	if err := h.service.RetireGroup(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) groupSummary(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireScope(w, r, auth.ScopeRotaRead, auth.ScopeRotaWrite, auth.ScopeRotaAdmin); !ok {
		return
	}
	summary, err := h.service.GroupSummary(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryView(*summary))
}

func (h *Handler) getSchedule(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireScope(w, r, auth.ScopeRotaRead, auth.ScopeRotaWrite, auth.ScopeRotaAdmin); !ok {
		return
	}
	group, err := h.service.GetGroup(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ScheduleResponse{GroupID: group.ID, Schedule: group.Schedule})
}

func (h *Handler) regenerateSchedule(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireScope(w, r, auth.ScopeRotaWrite, auth.ScopeRotaAdmin); !ok {
		return
	}

	weekStart := h.now().UTC()
	if raw := r.URL.Query().Get("week_start"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid week_start date")
			return
		}
		weekStart = parsed
	}

	defer h.lockGroup(id)()
	schedule, err := h.service.RegenerateSchedule(r.Context(), id, weekStart)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	observability.RecordScheduleGenerated(h.now().UTC())
	writeJSON(w, http.StatusOK, ScheduleResponse{GroupID: id, Schedule: schedule})
}

func (h *Handler) validateTask(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireScope(w, r, auth.ScopeRotaWrite, auth.ScopeRotaAdmin); !ok {
		return
	}

	var req ValidateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	defer h.lockGroup(id)()
	record, err := h.service.ValidateTask(r.Context(), domain.ValidateTaskInput{
		GroupID:      id,
		Date:         req.Date,
		Area:         req.Area,
		PerformedBy:  req.PerformedBy,
		QualityScore: req.QualityScore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	group, err := h.service.GetGroup(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	observability.RecordTaskCompleted(group.BuildingID)
	writeJSON(w, http.StatusOK, TaskRecordResponse{
		Record:           toRecordView(*record),
		PerformanceScore: group.PerformanceScore,
	})
}

func (h *Handler) markMissed(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireScope(w, r, auth.ScopeRotaWrite, auth.ScopeRotaAdmin); !ok {
		return
	}

	var req MarkMissedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	defer h.lockGroup(id)()
	record, err := h.service.MarkMissed(r.Context(), domain.MarkMissedInput{
		GroupID:         id,
		Date:            req.Date,
		Area:            req.Area,
		AssignedMembers: req.AssignedMembers,
		Reason:          req.Reason,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	group, err := h.service.GetGroup(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	observability.RecordTaskMissed(group.BuildingID)
	writeJSON(w, http.StatusOK, TaskRecordResponse{
		Record:           toRecordView(*record),
		PerformanceScore: group.PerformanceScore,
	})
}

func (h *Handler) residentSchedule(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireScope(w, r, auth.ScopeRotaRead, auth.ScopeRotaWrite, auth.ScopeRotaAdmin); !ok {
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 31 {
				parsed = 31
			}
			days = parsed
		}
	}

	assignments, err := h.service.ResidentSchedule(r.Context(), id, h.now().UTC(), days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ResidentScheduleResponse{ResidentID: id, Assignments: assignments})
}

func (h *Handler) dailyTasks(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireScope(w, r, auth.ScopeRotaRead, auth.ScopeRotaWrite, auth.ScopeRotaAdmin); !ok {
		return
	}

	date := h.now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid date")
			return
		}
		date = parsed
	}

	tasks, err := h.service.DailyTasks(r.Context(), id, date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DailyTasksResponse{
		BuildingID: id,
		Date:       date.Format(dateLayout),
		Tasks:      tasks,
	})
}

func (h *Handler) rotationReport(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireScope(w, r, auth.ScopeRotaRead, auth.ScopeRotaWrite, auth.ScopeRotaAdmin); !ok {
		return
	}
	report, err := h.service.RotationReport(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrBuildingNotFound),
		errors.Is(err, domain.ErrResidentNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrDuplicateGroup):
		writeError(w, http.StatusConflict, "duplicate_group", err.Error())
	case errors.Is(err, domain.ErrTooManyMembers),
		errors.Is(err, domain.ErrMemberNotInBuilding),
		errors.Is(err, domain.ErrBlockMismatch),
		errors.Is(err, domain.ErrInvalidQuality):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
