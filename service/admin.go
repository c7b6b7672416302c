package service

import (
	"context"

	"worktime/calendar"
	"worktime/storage"
	"worktime/worklog"
)

// AdminService holds the cross-user reports.
type AdminService struct {
	entries EntryStore
	users   UserStore
	authz   Authorizer
}

func NewAdminService(entries EntryStore, users UserStore, authz Authorizer) *AdminService {
	return &AdminService{entries: entries, users: users, authz: authz}
}

// ListWorklogsForMonth returns every user's entries of the month with their
// owners, newest day first.
func (s *AdminService) ListWorklogsForMonth(ctx context.Context, caller worklog.Identity, year, month int) ([]worklog.EntryWithOwner, error) {
	if err := requireAdmin(ctx, s.authz, caller, "list worklogs of all users"); err != nil {
		return nil, err
	}
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}
	entries, err := s.entries.ListEntries(ctx, storage.EntryQuery{Range: calendar.MonthBounds(year, month), NewestFirst: true})
	if err != nil {
		return nil, NewInternal("list worklogs", err)
	}
	return entries, nil
}

// ListUsers returns the accounts holding the plain user role.
func (s *AdminService) ListUsers(ctx context.Context, caller worklog.Identity) ([]worklog.User, error) {
	if err := requireAdmin(ctx, s.authz, caller, "list users"); err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx, worklog.RoleUser)
	if err != nil {
		return nil, NewInternal("list users", err)
	}
	return users, nil
}
