package domain

import "time"

// Account is a registered identity. Password and verification token are
// only ever held as digests.
type Account struct {
	ID                       string
	Email                    string
	PasswordHash             string
	Verified                 bool
	VerificationTokenHash    *string
	VerificationTokenExpires *time.Time
	CreatedAt                time.Time
}

// AccountView is the public projection returned by login/registration.
type AccountView struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

func (a Account) View() AccountView {
	return AccountView{Email: a.Email, Verified: a.Verified}
}
