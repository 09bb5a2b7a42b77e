package store

import (
	"context"
	"fmt"
	"time"
)

// Type is the grammatical form used for an invitation's greeting.
type Type string

const (
	TypeMale   Type = "male"
	TypeFemale Type = "female"
	TypeCouple Type = "couple"
)

// Valid reports whether t is one of the known guest types.
func (t Type) Valid() bool {
	switch t {
	case TypeMale, TypeFemale, TypeCouple:
		return true
	}
	return false
}

// Status tracks guest engagement with an invitation link.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSent      Status = "sent"
	StatusViewed    Status = "viewed"
	StatusConfirmed Status = "confirmed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSent, StatusViewed, StatusConfirmed:
		return true
	}
	return false
}

// Viewable reports whether opening the invitation page moves it to viewed.
// Viewed and confirmed invitations are left alone.
func (s Status) Viewable() bool {
	return s == StatusPending || s == StatusSent
}

type Invitation struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Type      Type       `json:"type"`
	URL       string     `json:"url"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at"`
}

type Stats struct {
	Total     int `json:"total"`
	Sent      int `json:"sent"`
	Viewed    int `json:"viewed"`
	Confirmed int `json:"confirmed"`
}

// ValidationError reports a field value the invitations table would reject.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// InvitationStore persists invitations. Lookups return a nil record and a nil
// error when nothing matches.
type InvitationStore interface {
	Create(ctx context.Context, name string, t Type, url string) (*Invitation, error)
	GetAll(ctx context.Context) ([]Invitation, error)
	GetByID(ctx context.Context, id int64) (*Invitation, error)
	GetByName(ctx context.Context, name string) (*Invitation, error)
	UpdateStatus(ctx context.Context, id int64, status Status, sentAt *time.Time) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	GetStats(ctx context.Context) (Stats, error)
	Close() error
}

// ViewStore keeps the history of page views per invitation.
type ViewStore interface {
	RecordView(ctx context.Context, id int64, at time.Time) error
	Views(ctx context.Context, id int64) ([]time.Time, error)
	Forget(ctx context.Context, id int64) error
	Close() error
}
