package console

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password the console submits.
const MinPasswordLength = 6

var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// PasswordState is a step of the password change flow.
type PasswordState int

const (
	PasswordClosed PasswordState = iota
	PasswordOpen
	PasswordValidating
	PasswordRejected
	PasswordSubmitted
)

func (s PasswordState) String() string {
	switch s {
	case PasswordOpen:
		return "open"
	case PasswordValidating:
		return "validating"
	case PasswordRejected:
		return "rejected"
	case PasswordSubmitted:
		return "submitted"
	default:
		return "closed"
	}
}

// PasswordModal changes another user's password.
type PasswordModal struct {
	userModal

	State        PasswordState
	NewPassword  string
	Confirmation string
	// Mismatch drives the live "passwords differ" warning.
	Mismatch bool
}

func (p *PasswordModal) Name() string { return ModalPassword }

func (p *PasswordModal) show(target string) {
	p.userModal.show(target)
	p.State = PasswordOpen
	p.NewPassword = ""
	p.Confirmation = ""
	p.Mismatch = false
}

func (p *PasswordModal) hide() {
	p.userModal.hide()
	p.State = PasswordClosed
	p.NewPassword = ""
	p.Confirmation = ""
	p.Mismatch = false
}

// ValidatePassword checks length first, then equality.
func ValidatePassword(password, confirmation string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirmation {
		return ErrPasswordMismatch
	}
	return nil
}

// OpenPasswordModal opens the password modal for username with empty inputs.
func (c *Console) OpenPasswordModal(username string) {
	c.sess.Modals.Open(c.sess.Password, username)
}

// ClosePasswordModal hides the password modal and forgets its target.
func (c *Console) ClosePasswordModal() {
	c.sess.Modals.CloseIf(c.sess.Password)
}

// PasswordInput records what was typed and refreshes the mismatch warning.
func (c *Console) PasswordInput(password, confirmation string) {
	p := c.sess.Password
	if !p.IsOpen() {
		return
	}
	p.NewPassword = password
	p.Confirmation = confirmation
	p.Mismatch = confirmation != "" && password != confirmation
}

// SubmitPassword validates the typed passwords and sends at most one change
// request. On success the modal closes and the page reloads.
func (c *Console) SubmitPassword(ctx context.Context) error {
	p := c.sess.Password
	if !p.IsOpen() {
		return fmt.Errorf("password modal is closed")
	}
	target := p.Target()

	p.State = PasswordValidating
	if err := ValidatePassword(p.NewPassword, p.Confirmation); err != nil {
		p.State = PasswordRejected
		switch {
		case errors.Is(err, ErrPasswordTooShort):
			c.ui.Alert("❌ Hasło musi mieć minimum 6 znaków!")
		default:
			c.ui.Alert("❌ Hasła się nie zgadzają!")
		}
		return err
	}

	if err := c.backend.ChangePassword(ctx, target, p.NewPassword); err != nil {
		p.State = PasswordRejected
		c.alertFailure(err)
		return err
	}

	p.State = PasswordSubmitted
	c.logger.Info("Password changed", zapUser(target))
	c.ui.Alert(fmt.Sprintf("✓ Hasło dla użytkownika %s zmieniono!", target))
	c.ClosePasswordModal()
	c.ui.Reload()
	return nil
}
