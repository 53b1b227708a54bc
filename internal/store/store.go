// ABOUTME: Store interfaces and data types for trading backend persistence
// ABOUTME: Defines User, Settings, Plan types and the store contracts

package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when trying to create a user with an email
// that is already registered.
var ErrEmailExists = errors.New("email already registered")

// Plan represents a user's subscription tier.
type Plan string

const (
	PlanBasic   Plan = "basic"
	PlanPremium Plan = "premium"
	PlanAdmin   Plan = "admin"
)

// ValidPlans lists all valid plan values.
var ValidPlans = []Plan{
	PlanBasic,
	PlanPremium,
	PlanAdmin,
}

// ParsePlan parses a string into a Plan, reporting whether it is valid.
func ParsePlan(s string) (Plan, bool) {
	p := Plan(s)
	for _, v := range ValidPlans {
		if p == v {
			return p, true
		}
	}
	return "", false
}

// IsAdmin returns true for the admin plan. Premium and basic are both
// unprivileged; only admin unlocks the administrative surface.
func (p Plan) IsAdmin() bool {
	return p == PlanAdmin
}

// User represents a registered account. Emails are stored exactly as
// given (no case folding) and are unique.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash
	FullName     string
	Plan         Plan
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Settings is the singleton administrative configuration record.
// The key maps are schema-less; callers use TradingKey/PaymentKey
// rather than assuming a name is present.
type Settings struct {
	BasicPlanPrice   decimal.Decimal
	PremiumPlanPrice decimal.Decimal
	TradingAPIKeys   map[string]string
	PaymentAPIKeys   map[string]string
	UpdatedAt        time.Time
}

// DefaultSettings returns the settings row that is created lazily on
// first read.
func DefaultSettings() *Settings {
	return &Settings{
		BasicPlanPrice:   decimal.NewFromFloat(29.99),
		PremiumPlanPrice: decimal.NewFromFloat(99.99),
		TradingAPIKeys:   map[string]string{},
		PaymentAPIKeys:   map[string]string{},
	}
}

// TradingKey looks up a trading API key by name.
func (s *Settings) TradingKey(name string) (string, bool) {
	v, ok := s.TradingAPIKeys[name]
	return v, ok
}

// PaymentKey looks up a payment API key by name.
func (s *Settings) PaymentKey(name string) (string, bool) {
	v, ok := s.PaymentAPIKeys[name]
	return v, ok
}

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUserPlan(ctx context.Context, id string, plan Plan) error
	SetUserActive(ctx context.Context, id string, active bool) error
	CountUsers(ctx context.Context) (int, error)
}

// SettingsStore defines the interface for the settings singleton.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, settings *Settings) error
}

// AuditStore defines the interface for the append-only audit log.
type AuditStore interface {
	AppendAuditLog(ctx context.Context, entry *AuditEntry) error
	ListAuditLog(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
}
