package gadget

import "time"

// Status is a gadget's lifecycle status.
type Status string

// Lifecycle statuses.
const (
	StatusAvailable      Status = "AVAILABLE"
	StatusDeployed       Status = "DEPLOYED"
	StatusDestroyed      Status = "DESTROYED"
	StatusDecommissioned Status = "DECOMMISSIONED"
)

// AllStatuses lists every known status in lifecycle order.
var AllStatuses = []Status{
	StatusAvailable,
	StatusDeployed,
	StatusDestroyed,
	StatusDecommissioned,
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusDeployed, StatusDestroyed, StatusDecommissioned:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusDestroyed || s == StatusDecommissioned
}

// Gadget is a tracked inventory item.
//
// The repository owns storage; the lifecycle functions only ever look at a
// snapshot of Status.
type Gadget struct {
	ID               string     `json:"id"`
	Codename         string     `json:"codename"`
	Description      string     `json:"description"`
	Status           Status     `json:"status"`
	DecommissionedAt *time.Time `json:"decommissioned_at,omitempty"`
	DestroyedAt      *time.Time `json:"destroyed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// StatusHistoryEntry records one accepted status transition. Entries are
// append-only.
type StatusHistoryEntry struct {
	ID        int64     `json:"id"`
	GadgetID  string    `json:"gadget_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	CreatedAt time.Time `json:"created_at"`
}

// Transition is a status change the guard has accepted and the repository
// must commit as one unit: new status, terminal timestamp and history row.
// A non-nil Description is written in the same unit.
type Transition struct {
	GadgetID    string
	From        Status
	To          Status
	At          time.Time
	Description *string
}

// UpdateRequest is a partial update. Nil fields are left unchanged.
type UpdateRequest struct {
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// SelfDestructTicket is returned when a self-destruct sequence is initiated.
type SelfDestructTicket struct {
	GadgetID  string        `json:"gadget_id"`
	Code      string        `json:"confirmation_code"`
	ExpiresIn time.Duration `json:"-"`
}
