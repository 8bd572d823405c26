// Package profile holds the signed-in user's editable profile settings.
package profile

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrEmptyName is returned when the full name is blank.
	ErrEmptyName = errors.New("full name is required")
	// ErrInvalidEmail is returned when the email has no "@".
	ErrInvalidEmail = errors.New("invalid email")
)

// Profile is the content of the profile form.
type Profile struct {
	FullName               string `json:"full_name"`
	Email                  string `json:"email"`
	Phone                  string `json:"phone"`
	ReceiveMarketingEmails bool   `json:"receive_marketing_emails"`
	PushNotifications      bool   `json:"push_notifications"`
	DarkMode               bool   `json:"dark_mode"`
}

// Default returns the form's initial values.
func Default() Profile {
	return Profile{
		FullName:          "John Doe",
		Email:             "john.doe@example.com",
		Phone:             "+1 (555) 123-4567",
		PushNotifications: true,
	}
}

// Settings owns the current profile for the session.
type Settings struct {
	mu      sync.Mutex
	current Profile
	log     *zap.Logger
}

// NewSettings returns settings starting from initial.
func NewSettings(initial Profile, log *zap.Logger) *Settings {
	if log == nil {
		log = zap.NewNop()
	}
	return &Settings{current: initial, log: log}
}

// Get returns the current profile.
func (s *Settings) Get() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update validates p and makes it current.
func (s *Settings) Update(p Profile) error {
	p.FullName = strings.TrimSpace(p.FullName)
	p.Email = strings.TrimSpace(p.Email)
	if p.FullName == "" {
		return ErrEmptyName
	}
	if !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()

	s.log.Info("profile updated", zap.String("email", p.Email))
	return nil
}
