package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"worktime/internal/auth"
	"worktime/internal/logger"
	"worktime/internal/observability"
	"worktime/internal/timeutil"
	"worktime/service"
	"worktime/worklog"
)

const timezoneHeader = "X-Timezone"

// location resolves the viewer's zone from the X-Timezone header.
func (s *Server) location(r *http.Request) (*time.Location, error) {
	name := strings.TrimSpace(r.Header.Get(timezoneHeader))
	if name == "" {
		return s.opts.Location, nil
	}
	loc, err := timeutil.LoadLocation(name)
	if err != nil {
		return nil, service.NewInvalidFormat(timezoneHeader, err)
	}
	return loc, nil
}

func (s *Server) locale(r *http.Request) (timeutil.Locale, error) {
	value := strings.TrimSpace(r.URL.Query().Get("locale"))
	if value == "" {
		return s.opts.Locale, nil
	}
	locale, err := timeutil.ParseLocale(value)
	if err != nil {
		return "", service.NewValidationError("locale", err.Error())
	}
	return locale, nil
}

// date reads ?date= as a calendar date; absent means today for the viewer.
func (s *Server) date(r *http.Request, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(r.URL.Query().Get("date"))
	if value == "" {
		today := s.now().In(loc)
		return time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	day, err := timeutil.ParseDate(value)
	if err != nil {
		return time.Time{}, service.NewInvalidFormat("date", err)
	}
	return day, nil
}

// yearMonth reads ?year= and ?month=; absent values mean the viewer's current month.
func (s *Server) yearMonth(r *http.Request, loc *time.Location) (int, int, error) {
	now := s.now().In(loc)
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		return 0, 0, err
	}
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, service.NewInvalidFormat(key, err)
	}
	return parsed, nil
}

func queryBool(r *http.Request, key string) (bool, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, service.NewInvalidFormat(key, err)
	}
	return parsed, nil
}

func pathID(r *http.Request) (int64, error) {
	parsed, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
	if err != nil {
		return 0, service.NewInvalidFormat("id", err)
	}
	if parsed <= 0 {
		return 0, service.NewValidationError("id", "must be a positive integer")
	}
	return parsed, nil
}

func caller(r *http.Request) worklog.Identity {
	identity, _ := auth.FromContext(r.Context())
	return identity
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return service.NewValidationError("body", err.Error())
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return service.NewValidationError("body", "request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

func statusForCode(code string) int {
	switch code {
	case service.CodeInvalidFormat, service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a service error onto its status. Internal causes are
// logged, never returned to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := service.CodeOf(err)
	status := statusForCode(code)
	observability.RecordError(code)

	resp := errorResponse{
		Error:     code,
		Message:   "internal error",
		RequestID: middleware.GetReqID(r.Context()),
	}
	var svcErr *service.Error
	if code != service.CodeInternal && errors.As(err, &svcErr) {
		resp.Message = svcErr.Message
		resp.Details = svcErr.Details
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", err, zap.String("request_id", resp.RequestID), zap.String("path", r.URL.Path))
	}
	writeJSON(w, status, resp)
}

type monthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type monthNavigation struct {
	Previous monthRef `json:"previous"`
	Next     monthRef `json:"next"`
}

func navigateMonth(year, month int) monthNavigation {
	prevYear, prevMonth := year, month-1
	if prevMonth < 1 {
		prevYear, prevMonth = year-1, 12
	}
	nextYear, nextMonth := year, month+1
	if nextMonth > 12 {
		nextYear, nextMonth = year+1, 1
	}
	return monthNavigation{
		Previous: monthRef{Year: prevYear, Month: prevMonth},
		Next:     monthRef{Year: nextYear, Month: nextMonth},
	}
}

type weekNavigation struct {
	Previous string `json:"previous"`
	Next     string `json:"next"`
}

func navigateWeek(start time.Time) weekNavigation {
	return weekNavigation{
		Previous: start.AddDate(0, 0, -7).Format(timeutil.DateLayout),
		Next:     start.AddDate(0, 0, 7).Format(timeutil.DateLayout),
	}
}
