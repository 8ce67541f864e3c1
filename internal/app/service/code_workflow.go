package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/carauction/carauction-backend/internal/app/model"
	"github.com/carauction/carauction-backend/pkg/logger"
	"github.com/carauction/carauction-backend/pkg/mailer"
	"github.com/carauction/carauction-backend/pkg/util"
)

// CodeTTL is how long an issued code stays valid. A code is expired when
// strictly more than CodeTTL has elapsed since it was issued.
const CodeTTL = 10 * time.Minute

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrAlreadyVerified  = errors.New("customer already verified")
	ErrNoPendingCode    = errors.New("no valid verification code found")
	ErrCodeExpired      = errors.New("verification code has expired")
	ErrInvalidCode      = errors.New("invalid verification code")
	ErrDispatchFailed   = errors.New("failed to send code email")
	ErrWeakPassword     = errors.New("password does not meet the strength policy")
)

// DispatchPolicy orders the store write and the email send when a code is issued.
type DispatchPolicy string

const (
	// DispatchFirst stores the code only after the mail transport accepted it.
	// A rejected send leaves no live code behind.
	DispatchFirst DispatchPolicy = "dispatch_first"
	// PersistFirst stores the code before sending. A rejected send leaves the
	// code live so the user can still use a delayed email.
	PersistFirst DispatchPolicy = "persist_first"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// SystemClock is UTC wall time truncated to the precision every supported database keeps.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// CodeOptions carries the collaborators shared by both code workflows.
type CodeOptions struct {
	Hasher *util.CodeHasher
	Mailer mailer.Mailer
	Policy DispatchPolicy
	Clock  Clock
}

func (o CodeOptions) withDefaults() CodeOptions {
	if o.Policy == "" {
		o.Policy = DispatchFirst
	}
	if o.Clock == nil {
		o.Clock = SystemClock
	}
	return o
}

// codeExpired reports whether a code issued at issuedAt is past CodeTTL at now.
func codeExpired(issuedAt, now time.Time) bool {
	return now.Sub(issuedAt) > CodeTTL
}

// checkCode validates a pending code pair against the provided plaintext.
// Error order: missing, expired, mismatch.
func checkCode(hasher *util.CodeHasher, hash *string, issuedAt *time.Time, provided string, now time.Time) error {
	if hash == nil || issuedAt == nil {
		return ErrNoPendingCode
	}
	if codeExpired(*issuedAt, now) {
		return ErrCodeExpired
	}
	if !hasher.Matches(provided, *hash) {
		return ErrInvalidCode
	}
	return nil
}

// issueCode generates a code and runs the persist and send steps in policy order.
func issueCode(
	opts CodeOptions,
	customer *model.Customer,
	kind string,
	compose func(to, name, code string) mailer.Message,
	persist func(id uint, hash string, issuedAt time.Time) error,
) error {
	code := util.GenerateCode()
	hash := opts.Hasher.Hash(code)
	msg := compose(customer.Email, customer.Name, code)

	send := func() error {
		if err := opts.Mailer.Send(msg); err != nil {
			logger.Warn("Code email was not accepted", map[string]interface{}{
				"customer_id": customer.ID,
				"kind":        kind,
				"policy":      string(opts.Policy),
				"error":       err.Error(),
			})
			return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
		}
		return nil
	}
	store := func() error {
		if err := persist(customer.ID, hash, opts.Clock()); err != nil {
			logger.Error("Failed to store code", err, map[string]interface{}{
				"customer_id": customer.ID,
				"kind":        kind,
			})
			return fmt.Errorf("store %s code: %w", kind, err)
		}
		return nil
	}

	steps := []func() error{send, store}
	if opts.Policy == PersistFirst {
		steps = []func() error{store, send}
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	logger.Info("Code issued", map[string]interface{}{
		"customer_id": customer.ID,
		"kind":        kind,
	})
	return nil
}
