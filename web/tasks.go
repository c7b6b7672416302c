package web

import (
	"net/http"
	"strings"

	"worktime/calendar"
	"worktime/internal/timeutil"
	"worktime/service"
	"worktime/worklog"
)

type tasksResponse struct {
	Tasks []worklog.TaskWithUsers `json:"tasks"`
}

type dayTasksResponse struct {
	Date  string                  `json:"date"`
	Range calendar.Bucket         `json:"range"`
	Tasks []worklog.TaskWithUsers `json:"tasks"`
}

type monthTasksResponse struct {
	Year       int                     `json:"year"`
	Month      int                     `json:"month"`
	Tasks      []worklog.TaskWithUsers `json:"tasks"`
	Navigation monthNavigation         `json:"navigation"`
}

func (s *Server) handleTasksAll(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.Tasks.ListAll(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasksResponse{Tasks: tasks})
}

func (s *Server) handleTasksDay(w http.ResponseWriter, r *http.Request) {
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
	all, err := queryBool(r, "all")
	if err != nil {
		writeError(w, r, err)
		return
	}
	tasks, err := s.svc.Tasks.ListForDay(r.Context(), caller(r), day, all)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dayTasksResponse{
		Date:  day.Format(timeutil.DateLayout),
		Range: calendar.DayBounds(day),
		Tasks: tasks,
	})
}

func (s *Server) handleTasksWeek(w http.ResponseWriter, r *http.Request) {
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
	view, err := s.svc.Tasks.ListForWeek(r.Context(), caller(r), service.WeekQuery{
		Date:       day,
		Offset:     offset,
		AssigneeID: strings.TrimSpace(r.URL.Query().Get("assignee")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weekResponse[worklog.TaskWithUsers]{WeekView: view, Navigation: navigateWeek(view.Range.Start)})
}

func (s *Server) handleTasksMonth(w http.ResponseWriter, r *http.Request) {
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
	tasks, err := s.svc.Tasks.ListForMonth(r.Context(), caller(r), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, monthTasksResponse{
		Year:       year,
		Month:      month,
		Tasks:      tasks,
		Navigation: navigateMonth(year, month),
	})
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	task, err := s.svc.Tasks.Get(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	loc, err := s.location(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in service.TaskInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Location = loc
	task, err := s.svc.Tasks.Create(r.Context(), caller(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
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
	var in service.TaskUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.Location = loc
	task, err := s.svc.Tasks.Update(r.Context(), caller(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Tasks.Delete(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
