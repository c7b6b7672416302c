package web

import (
	"net/http"

	"worktime/worklog"
)

type worklogsResponse struct {
	Year       int                      `json:"year"`
	Month      int                      `json:"month"`
	Entries    []worklog.EntryWithOwner `json:"entries"`
	Navigation monthNavigation          `json:"navigation"`
}

func (s *Server) handleAdminWorklogs(w http.ResponseWriter, r *http.Request) {
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
	entries, err := s.svc.Admin.ListWorklogsForMonth(r.Context(), caller(r), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, worklogsResponse{
		Year:       year,
		Month:      month,
		Entries:    entries,
		Navigation: navigateMonth(year, month),
	})
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Admin.ListUsers(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]worklog.User{"users": users})
}
