package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeMalformedJSON = "MALFORMED_JSON"
	textCodeBodyTooLarge  = "BODY_TOO_LARGE"
)

type errorResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message"`
	Code    string                `json:"code,omitempty"`
	Fields  []goerrors.FieldError `json:"fields,omitempty"`
}

// joinPath builds a rooted route path from parts. Blank parts are dropped.
func joinPath(parts ...string) string {
	return path.Join(append([]string{"/"}, parts...)...)
}

// decodeJSON reads one JSON value. An empty body leaves target untouched.
func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return goerrors.Wrap(err, goerrors.CategoryBadInput, "request body too large").
				WithCode(http.StatusRequestEntityTooLarge).
				WithTextCode(textCodeBodyTooLarge)
		}
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed JSON request body").
			WithTextCode(textCodeMalformedJSON)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := statusFor(err)
	writeJSON(w, status, payload)
}

var categoryStatus = map[string]int{
	string(goerrors.CategoryValidation): http.StatusBadRequest,
	string(goerrors.CategoryBadInput):   http.StatusBadRequest,
	string(goerrors.CategoryAuth):       http.StatusUnauthorized,
	string(goerrors.CategoryAuthz):      http.StatusForbidden,
	string(goerrors.CategoryNotFound):   http.StatusNotFound,
	string(goerrors.CategoryConflict):   http.StatusConflict,
}

var internalError = errorResponse{Error: "internal", Message: "internal server error"}

// statusFor maps go-errors categories onto HTTP statuses. Uncategorised
// errors never leak their message.
func statusFor(err error) (int, errorResponse) {
	var gerr *goerrors.Error
	if err == nil || !errors.As(err, &gerr) {
		return http.StatusInternalServerError, internalError
	}
	status, ok := categoryStatus[string(gerr.Category)]
	if !ok {
		return http.StatusInternalServerError, internalError
	}
	if gerr.Code == http.StatusRequestEntityTooLarge {
		status = http.StatusRequestEntityTooLarge
	}

	body := errorResponse{
		Error:   string(gerr.Category),
		Message: gerr.Message,
		Code:    gerr.TextCode,
	}
	if fields, ok := goerrors.GetValidationErrors(err); ok {
		body.Fields = fields
	}
	return status, body
}

var leadingInt = regexp.MustCompile(`^[+-]?\d+`)

// parseLimit reads an integer prefix ("5x" is 5) and falls back to def.
func parseLimit(value string, def int) int {
	match := leadingInt.FindString(strings.TrimSpace(value))
	if match == "" {
		return def
	}
	parsed, err := strconv.Atoi(match)
	if err != nil {
		return def
	}
	return parsed
}
