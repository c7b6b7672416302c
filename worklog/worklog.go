package worklog

import "time"

// Role is the stored capability of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is the authenticated caller on whose behalf an operation runs.
type Identity struct {
	UserID string
}

// User is an account known to the tracker.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Owner is the public projection of a user attached to entries and tasks.
type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Entry is one logged interval of work. OccursOn is the UTC midnight of the
// calendar day the work belongs to; StartAt and EndAt are UTC instants.
type Entry struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"createdById"`
	OccursOn    time.Time `json:"date"`
	StartAt     time.Time `json:"startTime"`
	EndAt       time.Time `json:"endTime"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Duration returns the logged interval length.
func (e Entry) Duration() time.Duration {
	return e.EndAt.Sub(e.StartAt)
}

// EntryWithOwner is an entry joined with the user who logged it.
type EntryWithOwner struct {
	Entry
	Owner Owner `json:"createdBy"`
}

// EntryPatch carries the fields to change on an entry. Nil means unchanged.
type EntryPatch struct {
	OccursOn    *time.Time
	StartAt     *time.Time
	EndAt       *time.Time
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p EntryPatch) Empty() bool {
	return p.OccursOn == nil && p.StartAt == nil && p.EndAt == nil && p.Description == nil
}

// Task is a dated assignment created by an admin for a user.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OccursOn    time.Time `json:"date"`
	StartAt     time.Time `json:"startTime"`
	EndAt       time.Time `json:"endTime"`
	AssigneeID  string    `json:"assignedToId"`
	CreatorID   string    `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TaskWithUsers is a task joined with its creator and assignee.
type TaskWithUsers struct {
	Task
	Creator  Owner `json:"createdBy"`
	Assignee Owner `json:"assignedTo"`
}

// TaskPatch carries the fields to change on a task. Nil means unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	OccursOn    *time.Time
	StartAt     *time.Time
	EndAt       *time.Time
	AssigneeID  *string
}
