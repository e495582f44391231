package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/chybatronik/goUserFilter/internal/errors"
	"github.com/chybatronik/goUserFilter/internal/logging"
	"github.com/chybatronik/goUserFilter/internal/middleware"
)

// ReportHandler serves the unpaged views: the filtered user report and the
// company roster
type ReportHandler struct {
	service UserService
	logger  *logging.Logger
	errors  *apierrors.Writer
}

// NewReportHandler creates a new ReportHandler instance
func NewReportHandler(logger *logging.Logger, service UserService, ew *apierrors.Writer) *ReportHandler {
	if logger == nil {
		logger = logging.Discard()
	}
	if ew == nil {
		ew = apierrors.NewWriter(logger)
	}
	return &ReportHandler{
		service: service,
		logger:  logger,
		errors:  ew,
	}
}

// GetReport answers GET /users/report with every matching user in id order
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	logger := h.logger.WithRequestID(middleware.GetRequestID(r.Context()))

	filter, err := parseUserFilter(r.URL.Query())
	if err != nil {
		logger.Warn("invalid report filter", logging.FieldError, err, "query", r.URL.RawQuery)
		h.errors.WriteError(w, r, err)
		return
	}

	users, err := h.service.QueryAll(r.Context(), filter)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	writeJSON(w, logger, http.StatusOK, users)

	logger.Info("user report served",
		logging.FieldPredicate, filter.Predicate().String(),
		logging.FieldRows, len(users),
		logging.FieldDurationMs, time.Since(startTime).Milliseconds(),
	)
}

// GetCompanyUsers answers GET /companies/{id}/users?role= with the roster
// sorted by last name, then first name
func (h *ReportHandler) GetCompanyUsers(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.WithRequestID(middleware.GetRequestID(r.Context()))

	companyID, err := parseIDParam(r, "id")
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	role, err := parseRole(r.URL.Query())
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	roster, err := h.service.FindPersonalInfo(r.Context(), companyID, role)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	writeJSON(w, logger, http.StatusOK, roster)
}
