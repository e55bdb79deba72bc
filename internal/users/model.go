package users

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Prabisha01/de/internal/access"
	"github.com/Prabisha01/de/internal/apperrors"
)

// Plan enumerates subscription plans.
type Plan string

const (
	// PlanFree is the default plan.
	PlanFree Plan = "free"
	// PlanPremium is the paid plan.
	PlanPremium Plan = "premium"
)

// ParsePlan validates a raw plan value. Empty input yields PlanFree.
func ParsePlan(raw string) (Plan, error) {
	switch Plan(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PlanFree:
		return PlanFree, nil
	case PlanPremium:
		return PlanPremium, nil
	default:
		return "", fmt.Errorf("%w: unknown plan %q", apperrors.ErrValidation, raw)
	}
}

// BoardIDs is the owner's ordered set of board ids, stored as a JSON column.
type BoardIDs []string

// Value implements driver.Valuer.
func (b BoardIDs) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	encoded, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// Scan implements sql.Scanner.
func (b *BoardIDs) Scan(value any) error {
	var raw []byte
	switch typed := value.(type) {
	case nil:
		*b = BoardIDs{}
		return nil
	case []byte:
		raw = typed
	case string:
		raw = []byte(typed)
	default:
		return fmt.Errorf("unsupported board ids column type %T", value)
	}
	if len(raw) == 0 {
		*b = BoardIDs{}
		return nil
	}
	var decoded BoardIDs
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	if decoded == nil {
		decoded = BoardIDs{}
	}
	*b = decoded
	return nil
}

func (b BoardIDs) with(boardID string) BoardIDs {
	for _, existing := range b {
		if existing == boardID {
			return b
		}
	}
	return append(b, boardID)
}

func (b BoardIDs) without(boardID string) BoardIDs {
	kept := make(BoardIDs, 0, len(b))
	for _, existing := range b {
		if existing != boardID {
			kept = append(kept, existing)
		}
	}
	return kept
}

// User is a registered account. The password hash never leaves the service in JSON.
type User struct {
	ID             string      `gorm:"column:id;primaryKey;size:36" json:"id"`
	Username       string      `gorm:"column:username;size:64;not null;uniqueIndex" json:"username"`
	Email          string      `gorm:"column:email;size:320;not null;uniqueIndex" json:"email"`
	PasswordHash   string      `gorm:"column:password_hash;size:255;not null" json:"-"`
	Role           access.Role `gorm:"column:role;size:16;not null;default:user" json:"role"`
	Plan           Plan        `gorm:"column:plan;size:16;not null;default:free" json:"plan"`
	PlanExpiresAt  *time.Time  `gorm:"column:plan_expires_at" json:"planExpiresAt,omitempty"`
	IsBanned       bool        `gorm:"column:is_banned;not null;default:false" json:"isBanned"`
	ProfilePicture *string     `gorm:"column:profile_picture;size:1024" json:"profilePicture"`
	Boards         BoardIDs    `gorm:"column:board_ids;type:text" json:"boards"`
	LastLoginAt    *time.Time  `gorm:"column:last_login_at" json:"lastLogin,omitempty"`
	LoginCount     int64       `gorm:"column:login_count;not null;default:0" json:"loginCount"`
	CreatedAt      time.Time   `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName exposes the table backing users.
func (User) TableName() string {
	return "users"
}

// Actor returns the access identity of the user.
func (u User) Actor() access.Actor {
	return access.Actor{UserID: u.ID, Role: u.Role}
}

// Profile is the caller's own view with the computed board count.
type Profile struct {
	User
	BoardsCount int `json:"boardsCount"`
}

// Subscription summarizes the caller's plan.
type Subscription struct {
	Plan      Plan       `json:"plan"`
	ExpiresAt *time.Time `json:"expiresAt"`
	Active    bool       `json:"active"`
}

// RegisterInput carries registration fields.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateInput carries profile or administrative changes; nil fields are left untouched.
// Role, Plan, PlanExpiresAt and IsBanned require the admin role.
type UpdateInput struct {
	Username      *string    `json:"username"`
	Email         *string    `json:"email"`
	Password      *string    `json:"password"`
	Role          *string    `json:"role"`
	Plan          *string    `json:"plan"`
	PlanExpiresAt *time.Time `json:"planExpiresAt"`
	IsBanned      *bool      `json:"isBanned"`
}

func (u UpdateInput) touchesPrivilegedFields() bool {
	return u.Role != nil || u.Plan != nil || u.PlanExpiresAt != nil || u.IsBanned != nil
}

// ListFilter narrows administrative user listings.
type ListFilter struct {
	Role     string
	Plan     string
	IsBanned *bool
}
