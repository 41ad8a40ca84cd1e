// Package player defines the Player record shared by every store backend,
// the CLI menu and the HTTP API.
package player

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Player is a football player record. Optional attributes are pointers so
// that "unknown" and "empty" stay distinguishable across backends.
type Player struct {
	ID          string   `json:"id" db:"id"`
	Name        string   `json:"name" db:"name" validate:"required,max=100"`
	Position    string   `json:"position" db:"position" validate:"required,max=50"`
	Age         int      `json:"age" db:"age" validate:"gte=1,lte=100"`
	Club        *string  `json:"club,omitempty" db:"club" validate:"omitempty,max=100"`
	Nationality *string  `json:"nationality,omitempty" db:"nationality" validate:"omitempty,max=100"`
	Rating      *float64 `json:"rating,omitempty" db:"rating" validate:"omitempty,gte=0,lte=100"`
	Team        *string  `json:"team,omitempty" db:"team" validate:"omitempty,max=100"`
}

// ErrEmptyPatch is returned when an update carries no field to change.
var ErrEmptyPatch = errors.New("no field to update")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Normalize trims surrounding whitespace from text fields and clears optional
// text fields that end up empty.
func (p Player) Normalize() Player {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Position = strings.TrimSpace(p.Position)
	p.Club = trimOptional(p.Club)
	p.Nationality = trimOptional(p.Nationality)
	p.Team = trimOptional(p.Team)
	return p
}

// Validate checks the record against its field rules.
func (p Player) Validate() error {
	if err := structValidator().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid player %s: failed %q rule", strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("invalid player: %w", err)
	}
	return nil
}

// String renders the one-line form used by the menu listing.
func (p Player) String() string {
	s := fmt.Sprintf("%s - %s - %d years", p.Name, p.Position, p.Age)
	if p.Club != nil {
		s += " - " + *p.Club
	}
	return s
}

// NewID returns a new time-ordered identity, so that ordering by ID follows
// creation order.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// StringPtr returns a pointer to s, or nil when s is blank.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	return StringPtr(*s)
}
