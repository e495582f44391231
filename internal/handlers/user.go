// Package handlers provides the HTTP handlers of the goUserFilter service.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"time"

	apierrors "github.com/chybatronik/goUserFilter/internal/errors"
	"github.com/chybatronik/goUserFilter/internal/logging"
	"github.com/chybatronik/goUserFilter/internal/middleware"
	"github.com/chybatronik/goUserFilter/internal/models"
	"github.com/chybatronik/goUserFilter/internal/types"
	"github.com/chybatronik/goUserFilter/internal/validation"
	pkgerrors "github.com/chybatronik/goUserFilter/pkg/errors"
)

// maxBodySize limits JSON request bodies to 1MB
const maxBodySize = 1 << 20

// UserService is the use case layer behind the user endpoints
type UserService interface {
	QueryPage(ctx context.Context, filter types.UserFilter, req types.PageRequest) (types.PageResponse[models.UserReadDTO], error)
	QueryAll(ctx context.Context, filter types.UserFilter) ([]models.UserReadDTO, error)
	FindPersonalInfo(ctx context.Context, companyID int64, role models.Role) ([]models.PersonalInfo, error)
	FindByID(ctx context.Context, id int64) (models.UserReadDTO, error)
	Create(ctx context.Context, dto models.UserCreateEditDTO) (models.UserReadDTO, error)
	Update(ctx context.Context, id int64, dto models.UserCreateEditDTO) (models.UserReadDTO, error)
	Delete(ctx context.Context, id int64) error
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	service         UserService
	logger          *logging.Logger
	errors          *apierrors.Writer
	defaultPageSize int
}

// NewUserHandler creates a new UserHandler instance. defaultPageSize applies
// when a list request has no size.
func NewUserHandler(logger *logging.Logger, service UserService, ew *apierrors.Writer, defaultPageSize int) *UserHandler {
	if logger == nil {
		logger = logging.Discard()
	}
	if ew == nil {
		ew = apierrors.NewWriter(logger)
	}
	if defaultPageSize <= 0 {
		defaultPageSize = types.DefaultPageSize
	}
	return &UserHandler{
		service:         service,
		logger:          logger,
		errors:          ew,
		defaultPageSize: defaultPageSize,
	}
}

// requestLogger tags the handler logger with the request ID
func (h *UserHandler) requestLogger(r *http.Request) *logging.Logger {
	reqID := middleware.GetRequestID(r.Context())
	if reqID == "" {
		reqID = "unknown"
	}
	return h.logger.WithRequestID(reqID)
}

// GetUsers answers GET /users with one filtered, sorted page
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	logger := h.requestLogger(r)

	query := r.URL.Query()
	filter, err := parseUserFilter(query)
	if err != nil {
		logger.Warn("invalid user filter", logging.FieldError, err, "query", r.URL.RawQuery)
		h.errors.WriteError(w, r, err)
		return
	}

	req, err := parsePageRequest(query, h.defaultPageSize)
	if err != nil {
		logger.Warn("invalid page request", logging.FieldError, err, "query", r.URL.RawQuery)
		h.errors.WriteError(w, r, err)
		return
	}

	page, err := h.service.QueryPage(r.Context(), filter, req)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	writeJSON(w, logger, http.StatusOK, page)

	logger.Info("user page served",
		logging.FieldPage, req.Page,
		logging.FieldPageSize, req.Size,
		logging.FieldTotal, page.Metadata.TotalElements,
		logging.FieldRows, len(page.Content),
		logging.FieldDurationMs, time.Since(startTime).Milliseconds(),
	)
}

// GetUser answers GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	user, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, h.requestLogger(r), http.StatusOK, user)
}

// CreateUser answers POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger(r)

	dto, err := h.parseRequestBody(r)
	if err != nil {
		logger.Warn("failed to parse request body", logging.FieldError, err)
		h.errors.WriteError(w, r, err)
		return
	}

	user, err := h.service.Create(r.Context(), dto)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	w.Header().Set("Location", r.URL.Path+"/"+formatID(user.ID))
	writeJSON(w, logger, http.StatusCreated, user)
}

// UpdateUser answers PUT /users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	logger := h.requestLogger(r)

	id, err := parseIDParam(r, "id")
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	dto, err := h.parseRequestBody(r)
	if err != nil {
		logger.Warn("failed to parse request body", logging.FieldError, err)
		h.errors.WriteError(w, r, err)
		return
	}

	user, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}
	writeJSON(w, logger, http.StatusOK, user)
}

// DeleteUser answers DELETE /users/{id} with 204
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.errors.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validateContentType validates that the request has application/json content type
func validateContentType(r *http.Request) error {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return pkgerrors.NewUserValidationError("INVALID_CONTENT_TYPE", "Content-Type header is required")
	}

	// handles content types like "application/json; charset=utf-8"
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return pkgerrors.NewUserValidationError("INVALID_CONTENT_TYPE", "Invalid Content-Type header format")
	}

	if mediaType != "application/json" {
		return pkgerrors.NewUserValidationError("INVALID_CONTENT_TYPE", "Content-Type must be application/json")
	}
	return nil
}

// parseRequestBody reads at most maxBodySize bytes of JSON into a create/edit DTO
func (h *UserHandler) parseRequestBody(r *http.Request) (models.UserCreateEditDTO, error) {
	if err := validateContentType(r); err != nil {
		return models.UserCreateEditDTO{}, err
	}
	if r.Body == nil {
		return models.UserCreateEditDTO{}, pkgerrors.NewUserValidationError("EMPTY_REQUEST_BODY", "Request body cannot be empty")
	}
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return models.UserCreateEditDTO{}, pkgerrors.NewUserValidationError("EMPTY_REQUEST_BODY", "Failed to read request body")
	}
	if err := validation.ValidatePayloadSize(body, maxBodySize); err != nil {
		return models.UserCreateEditDTO{}, pkgerrors.NewUserValidationError("PAYLOAD_TOO_LARGE", "Request body cannot exceed 1MB")
	}
	if len(body) == 0 {
		return models.UserCreateEditDTO{}, pkgerrors.NewUserValidationError("EMPTY_REQUEST_BODY", "Request body cannot be empty")
	}

	var dto models.UserCreateEditDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return models.UserCreateEditDTO{}, pkgerrors.NewUserValidationError("INVALID_JSON", "Invalid JSON format")
	}
	return dto, nil
}

// writeJSON encodes v with status; encoding failures are only logged since
// the status line is already sent
func writeJSON(w http.ResponseWriter, logger *logging.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logging.FieldError, err, logging.FieldHTTPStatus, status)
	}
}
