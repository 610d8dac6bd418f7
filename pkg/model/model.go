// Package model holds the ESMS domain types shared by the service clients.
// Field names mirror the JSON the backend emits.
package model

// Role is the closed set of user roles. Authorization checks are exact
// matches against one role or membership in a set; no hierarchy.
type Role string

const (
	RoleGeneral   Role = "GENERAL"
	RoleSecretary Role = "SECRETARY"
	RoleManager   Role = "MANAGER"
	RoleAdmin     Role = "ADMIN"
	RoleAuditor   Role = "AUDITOR"
)

// ResourceType distinguishes bookable resource categories.
type ResourceType string

const (
	ResourceMeetingRoom ResourceType = "MEETING_ROOM"
	ResourceEquipment   ResourceType = "EQUIPMENT"
)

// ReservationApprovalStatus tracks the approval workflow state of a reservation.
type ReservationApprovalStatus string

const (
	ApprovalPending   ReservationApprovalStatus = "PENDING"
	ApprovalConfirmed ReservationApprovalStatus = "CONFIRMED"
	ApprovalRejected  ReservationApprovalStatus = "REJECTED"
)

// ReservationStatus tracks the lifecycle state of a single reservation instance.
type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusCheckedIn ReservationStatus = "CHECKED_IN"
	StatusCompleted ReservationStatus = "COMPLETED"
	StatusNoShow    ReservationStatus = "NO_SHOW"
)

// User is the profile snapshot carried inside a session. It is a
// denormalized copy taken at login/refresh time, not re-fetched per read.
type User struct {
	ID                   string  `json:"id"`
	Sub                  string  `json:"sub"`
	Email                string  `json:"email"`
	Name                 string  `json:"name"`
	Role                 Role    `json:"role"`
	ManagerID            *string `json:"managerId,omitempty"`
	PenaltyScore         int     `json:"penaltyScore"`
	PenaltyScoreExpireAt *string `json:"penaltyScoreExpireAt,omitempty"`
	IsActive             bool    `json:"isActive"`
	CreatedAt            string  `json:"createdAt"`
	UpdatedAt            string  `json:"updatedAt"`
	DeletedAt            *string `json:"deletedAt,omitempty"`
}

// Resource is a bookable meeting room or piece of equipment.
type Resource struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Type         ResourceType   `json:"type"`
	Capacity     *int           `json:"capacity,omitempty"`
	Location     *string        `json:"location,omitempty"`
	Equipment    map[string]any `json:"equipment,omitempty"`
	RequiredRole *Role          `json:"requiredRole,omitempty"`
	IsActive     bool           `json:"isActive"`
	CreatedAt    string         `json:"createdAt"`
	UpdatedAt    string         `json:"updatedAt"`
}

// Reservation is the recurring event definition owned by an organizer.
type Reservation struct {
	ID             string                    `json:"id"`
	OrganizerID    string                    `json:"organizerId"`
	Title          string                    `json:"title"`
	Description    string                    `json:"description"`
	StartAt        string                    `json:"startAt"`
	EndAt          string                    `json:"endAt"`
	RRule          string                    `json:"rrule,omitempty"`
	IsPrivate      bool                      `json:"isPrivate"`
	Timezone       string                    `json:"timezone"`
	ApprovalStatus ReservationApprovalStatus `json:"approvalStatus"`
	UpdatedBy      *string                   `json:"updatedBy,omitempty"`
	Version        int                       `json:"version"`
	CreatedAt      string                    `json:"createdAt"`
	UpdatedAt      string                    `json:"updatedAt"`
	DeletedAt      *string                   `json:"deletedAt,omitempty"`
	Organizer      *User                     `json:"organizer,omitempty"`
}

// ReservationInstance is one expanded occurrence of a reservation,
// carrying check-in state and the resolved resources/participants.
type ReservationInstance struct {
	ID                 string            `json:"id"`
	ReservationID      string            `json:"reservationId"`
	ReservationStartAt string            `json:"reservationStartAt"`
	StartAt            string            `json:"startAt"`
	EndAt              string            `json:"endAt"`
	OriginalStartAt    *string           `json:"originalStartAt,omitempty"`
	Status             ReservationStatus `json:"status"`
	CheckedInAt        *string           `json:"checkedInAt,omitempty"`
	CreatedAt          string            `json:"createdAt"`
	UpdatedAt          string            `json:"updatedAt"`
	Reservation        *Reservation      `json:"reservation,omitempty"`
	Resources          []Resource        `json:"resources,omitempty"`
	Participants       []User            `json:"participants,omitempty"`
}
