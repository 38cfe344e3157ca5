package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

// gte returns a ParamValidator that checks the argument is >= floor.
func gte(floor int64) ParamValidator {
	return func(v int64) bool { return v >= floor }
}

// gt returns a ParamValidator that checks the argument is > floor.
func gt(floor int64) ParamValidator {
	return func(v int64) bool { return v > floor }
}

// ParseOptionalGt parses an optional query parameter that must be strictly
// greater than floor, falling back to def when absent.
func ParseOptionalGt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, floor int64, def int32) (int32, bool) {
	return parseOptional(r, w, logger, key, gt(floor), def)
}

// ParseOptionalGte parses an optional query parameter that must be greater
// than or equal to floor, falling back to def when absent.
func ParseOptionalGte(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, floor int64, def int32) (int32, bool) {
	return parseOptional(r, w, logger, key, gte(floor), def)
}

func parseOptional(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, pValidator ParamValidator, def int32) (int32, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	intValue, err := strconv.ParseInt(value, 10, 32)
	if err != nil || !pValidator(intValue) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return int32(intValue), true
}
