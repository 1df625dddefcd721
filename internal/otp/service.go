package otp

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"rental-service/internal/sms"
	"rental-service/pkg/config"
)

var (
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
	codePattern   = regexp.MustCompile(`^\d{6}$`)
)

// ValidMobile reports whether the value is a bare 10-digit mobile number.
func ValidMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}

// ValidCode reports whether the value is a 6-digit one-time code.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// GenerateCode returns a 6-digit numeric code in the range 100000-999999.
// Shared by the mobile-verification and password-reset flows.
func GenerateCode() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

// Service implements the transient mobile-verification flow. A pending code
// lives in the injected Store until it is verified, expires, or runs out of
// attempts; deletion is the only way a code leaves the pending state.
type Service struct {
	store       Store
	sender      sms.Sender
	countryCode string
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

// NewService creates the verification service. The clock is injectable so
// tests can control expiry.
func NewService(store Store, sender sms.Sender, cfg *config.Config) *Service {
	return &Service{
		store:       store,
		sender:      sender,
		countryCode: cfg.SMS.CountryCode,
		ttl:         cfg.OTP.VerifyTTL,
		maxAttempts: cfg.OTP.MaxAttempts,
		now:         time.Now,
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Channel returns the formatted delivery address for a 10-digit mobile.
func (s *Service) Channel(mobile string) string {
	return s.countryCode + mobile
}

// Request generates a fresh code for the mobile, overwriting any pending one,
// and dispatches it over SMS. The pending entry stays in the store even when
// delivery fails, so the sender error is returned for the boundary to report.
func (s *Service) Request(mobile string) error {
	if !ValidMobile(mobile) {
		return ErrInvalidMobile
	}

	channel := s.Channel(mobile)
	code := GenerateCode()
	s.store.Put(channel, Entry{
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
		Attempts:  0,
	})

	body := fmt.Sprintf("Your OTP code is: %s. Valid for %d minutes.", code, int(s.ttl.Minutes()))
	return s.sender.Send(channel, body)
}

// Verify checks a submitted code against the pending entry for the mobile.
// The attempt counter is incremented before any outcome is decided; a
// mismatch keeps the entry alive, every other outcome removes it.
func (s *Service) Verify(mobile, code string) error {
	if !ValidMobile(mobile) {
		return ErrInvalidMobile
	}
	if !ValidCode(code) {
		return ErrInvalidCode
	}

	channel := s.Channel(mobile)
	entry, ok := s.store.Get(channel)
	if !ok {
		return ErrNotRequested
	}

	entry.Attempts++
	s.store.Put(channel, entry)

	if entry.Attempts > s.maxAttempts {
		s.store.Delete(channel)
		return ErrTooManyAttempts
	}

	if s.now().After(entry.ExpiresAt) {
		s.store.Delete(channel)
		return ErrExpired
	}

	if entry.Code != code {
		return ErrMismatch
	}

	s.store.Delete(channel)
	return nil
}
