package waitlist

import (
	"context"
	"time"
)

// Signup is one waitlist entry, keyed by normalized email.
type Signup struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Role      string    `json:"role,omitempty"`
	Source    string    `json:"source,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	UTM       UTMParams `json:"utm,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UTMParams carries campaign attribution captured at signup.
type UTMParams struct {
	Source   string `json:"source,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty"`
	Term     string `json:"term,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Store persists waitlist entries. Find returns nil without error when the
// email has never signed up.
type Store interface {
	Find(ctx context.Context, email string) (*Signup, error)
	Save(ctx context.Context, signup *Signup) error
}
