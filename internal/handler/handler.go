package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"tillpoint/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SuccessResponse wraps every successful payload.
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// MessageData is returned by endpoints that have nothing else to report.
type MessageData struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// The status line is already out; nothing useful can be sent.
		return
	}
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessResponse{Success: true, Data: data})
}

// statusFor maps a domain error code onto an HTTP status.
func statusFor(code string) int {
	switch code {
	case model.ErrCodeInvalidInput,
		model.ErrCodeInvalidCouponType,
		model.ErrCodeInvalidCouponValue,
		model.ErrCodeCouponExpired,
		model.ErrCodeCouponExhausted,
		model.ErrCodeCouponInactive,
		model.ErrCodeProductInUse,
		model.ErrCodeCategoryInUse:
		return http.StatusBadRequest
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeConflict, model.ErrCodeInsufficientStock:
		return http.StatusConflict
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err in the error envelope. Anything that is not a
// DomainError is logged and reported as a generic server error.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().Err(err).Msg("handler error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error: "Server error",
			Code:  model.ErrCodeStorageFailure,
		})
		return
	}

	status := statusFor(de.Code)
	logger.Debug().Str("code", de.Code).Int("status", status).Msg(de.Message)
	writeJSON(w, status, model.ErrorResponse{Error: de.Message, Code: de.Code})
}

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.InvalidInput("Invalid request body.")
	}
	return nil
}

// pathID parses the {id} wildcard of the matched route.
func pathID(r *http.Request, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, model.InvalidInput("Invalid %s ID format.", entity)
	}
	return id, nil
}

// pageParams reads limit and offset query parameters. Missing values are
// zero and left for the service to default.
func pageParams(r *http.Request) (limit, offset int, err error) {
	if s := r.URL.Query().Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			return 0, 0, model.InvalidInput("Invalid limit parameter.")
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if offset, err = strconv.Atoi(s); err != nil {
			return 0, 0, model.InvalidInput("Invalid offset parameter.")
		}
	}
	return limit, offset, nil
}
