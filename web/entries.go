package web

import (
	"net/http"

	"worktime/calendar"
	"worktime/internal/timeutil"
	"worktime/service"
	"worktime/worklog"
)

type monthEntriesResponse struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Range      calendar.Bucket `json:"range"`
	Entries    []worklog.Entry `json:"entries"`
	Navigation monthNavigation `json:"navigation"`
}

type groupedEntriesResponse struct {
	Year       int                            `json:"year"`
	Month      int                            `json:"month"`
	Locale     timeutil.Locale                `json:"locale"`
	Groups     []calendar.Group[worklog.Entry] `json:"groups"`
	Navigation monthNavigation                `json:"navigation"`
}

type dayEntriesResponse struct {
	Date    string          `json:"date"`
	Range   calendar.Bucket `json:"range"`
	Entries []worklog.Entry `json:"entries"`
}

type weekResponse[T any] struct {
	service.WeekView[T]
	Navigation weekNavigation `json:"navigation"`
}

func (s *Server) handleEntriesMonth(w http.ResponseWriter, r *http.Request) {
	loc, err := s.location(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	year, month, err := s.yearMonth(r, loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := s.svc.Entries.ListForMonth(r.Context(), caller(r), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, monthEntriesResponse{
		Year:       year,
		Month:      month,
		Range:      calendar.MonthBounds(year, month),
		Entries:    entries,
		Navigation: navigateMonth(year, month),
	})
}

func (s *Server) handleEntriesGrouped(w http.ResponseWriter, r *http.Request) {
	loc, err := s.location(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	locale, err := s.locale(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	year, month, err := s.yearMonth(r, loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	groups, err := s.svc.Entries.GroupForMonth(r.Context(), caller(r), year, month, locale)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groupedEntriesResponse{
		Year:       year,
		Month:      month,
		Locale:     locale,
		Groups:     groups,
		Navigation: navigateMonth(year, month),
	})
}

func (s *Server) handleEntriesDay(w http.ResponseWriter, r *http.Request) {
	loc, err := s.location(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	day, err := s.date(r, loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := s.svc.Entries.ListForDay(r.Context(), caller(r), day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dayEntriesResponse{
		Date:    day.Format(timeutil.DateLayout),
		Range:   calendar.DayBounds(day),
		Entries: entries,
	})
}

func (s *Server) handleEntriesWeek(w http.ResponseWriter, r *http.Request) {
	loc, err := s.location(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	day, err := s.date(r, loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.svc.Entries.ListForWeek(r.Context(), caller(r), day, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weekResponse[worklog.Entry]{WeekView: view, Navigation: navigateWeek(view.Range.Start)})
}

func (s *Server) handleEntriesLatest(w http.ResponseWriter, r *http.Request) {
	entry, err := s.svc.Entries.Latest(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*worklog.Entry{"entry": entry})
}

func (s *Server) handleEntryCreate(w http.ResponseWriter, r *http.Request) {
	loc, err := s.location(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in service.EntryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Location = loc
	entry, err := s.svc.Entries.Create(r.Context(), caller(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleEntryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	loc, err := s.location(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in service.EntryUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Location = loc
	entry, err := s.svc.Entries.Update(r.Context(), caller(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleEntryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Entries.Delete(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
