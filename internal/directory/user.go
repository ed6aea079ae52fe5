package directory

import (
	"errors"
	"time"
)

var (
	// ErrConflict means the username is already taken, approved or pending.
	ErrConflict = errors.New("username already exists")
	// ErrNotFound means no user matches the given id or username.
	ErrNotFound = errors.New("user not found")
	// ErrWrongPassword means the supplied current password did not verify.
	ErrWrongPassword = errors.New("wrong password")
	// ErrInvalidCredentials means login failed; unknown username and bad
	// password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotApproved means the account exists but awaits admin approval.
	ErrNotApproved = errors.New("account not approved")
)

// User is a registrant. Until an admin approves it the record lives in the
// pending collection; approval moves it to the approved collection. A
// username exists in at most one of the two at a time.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Approved     bool      `json:"approved"`
	Department   string    `json:"department,omitempty"`
	Quarter      string    `json:"quarter,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
