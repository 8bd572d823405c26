// Package models defines the core data structures shared by the dispatch
// client and the login endpoint: accounts, credentials, drivers and reservations.
package models

import (
	"time"

	"github.com/google/uuid"
)

// LoginCredentials is the identifier/secret pair submitted for authentication.
type LoginCredentials struct {
	// Identifier is an email address or a phone number.
	Identifier string
	// Secret is the plain-text password.
	Secret string
}

// User is the account snapshot returned by the login endpoint on success.
type User struct {
	// ID is the numeric account identifier.
	ID int `json:"id"`
	// Name is the given name.
	Name string `json:"name"`
	// Apellido is the family name.
	Apellido string `json:"apellido"`
	// TypeU is the account type ("admin", "driver", ...).
	TypeU string `json:"typeu"`
	// Status is the account status ("Active", "Inactive", ...).
	Status string `json:"status"`
}

// LoginRequest is the JSON body POSTed to the login endpoint.
type LoginRequest struct {
	LoginInput string `json:"loginInput"`
	Password   string `json:"password"`
}

// LoginResponse is the JSON body returned by the login endpoint.
// Message and User are pointers because the endpoint sends null for them.
type LoginResponse struct {
	Success bool    `json:"success"`
	Message *string `json:"message"`
	User    *User   `json:"user"`
}

// Account is a stored login account as the endpoint keeps it.
type Account struct {
	User
	// Email and Phone are both accepted as login identifiers.
	Email string
	Phone string
	// PasswordHash is the bcrypt hash of the password.
	PasswordHash []byte
}

// LoginAttempt is one entry of the endpoint's login history.
type LoginAttempt struct {
	LoginInput  string
	Success     bool
	RemoteAddr  string
	AttemptedAt time.Time
}

// Driver is a row of the admin roster.
type Driver struct {
	ID       uuid.UUID `json:"id"`
	Number   int       `json:"number"`
	Phone    string    `json:"phone"`
	Name     string    `json:"name"`
	Status   string    `json:"status"` // "Active", "Inactive"
	Type     string    `json:"type"`   // "Full-time", "Part-time"
	IsOnline bool      `json:"is_online"`
	Photo    string    `json:"photo,omitempty"`
}

// Reservation is a customer booking held by the reservation book.
type Reservation struct {
	ID          uuid.UUID `json:"id"`
	Number      int       `json:"number"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Status      string    `json:"status"`
	Stars       int       `json:"stars"`
	Comment     string    `json:"comment"`
	BannerImage string    `json:"banner_image,omitempty"`
}

// DriverStatus defines the roster status values.
type DriverStatus string

const (
	// DriverActive marks a driver that can take rides.
	DriverActive DriverStatus = "Active"
	// DriverInactive marks a suspended or off-duty driver.
	DriverInactive DriverStatus = "Inactive"
)

// ReservationStatus defines the reservation lifecycle values.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "Active"
	ReservationPending   ReservationStatus = "Pending"
	ReservationCompleted ReservationStatus = "Completed"
)
