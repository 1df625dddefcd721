package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"rental-service/internal/model"
	"rental-service/internal/sms"
	"rental-service/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSendVerificationOTPRejectsBadMobile(t *testing.T) {
	sender, _ := setupTest(t)

	c, rec := newContext(t, http.MethodPost, "/send-otp2", `{"mobile":"12345"}`)
	require.NoError(t, SendVerificationOTP(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, sender.sent)
}

func TestVerificationOTPRoundTrip(t *testing.T) {
	sender, _ := setupTest(t)

	c, rec := newContext(t, http.MethodPost, "/send-otp2", `{"mobile":"9876543210"}`)
	require.NoError(t, SendVerificationOTP(c))
	require.Equal(t, http.StatusOK, rec.Code)

	code := sender.lastCode(t)
	c, rec = newContext(t, http.MethodPost, "/verify-otp",
		`{"mobile":"9876543210","otp":"`+code+`"}`)
	require.NoError(t, VerifyOTP(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// The code is consumed; verifying again reports it was never requested.
	c, rec = newContext(t, http.MethodPost, "/verify-otp",
		`{"mobile":"9876543210","otp":"`+code+`"}`)
	require.NoError(t, VerifyOTP(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired or not requested")
}

func TestSendVerificationOTPProviderErrors(t *testing.T) {
	sender, _ := setupTest(t)

	sender.err = sms.ErrInvalidNumber
	c, rec := newContext(t, http.MethodPost, "/send-otp2", `{"mobile":"9876543210"}`)
	require.NoError(t, SendVerificationOTP(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	sender.err = sms.ErrNotSMSCapable
	c, rec = newContext(t, http.MethodPost, "/send-otp2", `{"mobile":"9876543210"}`)
	require.NoError(t, SendVerificationOTP(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	sender.err = errors.New("timeout")
	c, rec = newContext(t, http.MethodPost, "/send-otp2", `{"mobile":"9876543210"}`)
	require.NoError(t, SendVerificationOTP(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSendResetOTPUnknownMobile(t *testing.T) {
	setupTest(t)

	c, rec := newContext(t, http.MethodPost, "/send-otp", `{"mobile":"9876543210"}`)
	require.NoError(t, SendResetOTP(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendResetOTPStoresHashedCode(t *testing.T) {
	sender, _ := setupTest(t)
	user := createUser(t, "9876543210", "secret123", model.RoleTenant)

	c, rec := newContext(t, http.MethodPost, "/send-otp", `{"mobile":"9876543210"}`)
	require.NoError(t, SendResetOTP(c))
	require.Equal(t, http.StatusOK, rec.Code)

	code := sender.lastCode(t)
	assert.Equal(t, "+919876543210", sender.to[len(sender.to)-1])

	var stored model.User
	require.NoError(t, database.GetDB().First(&stored, user.ID).Error)
	require.NotNil(t, stored.OTPHash)
	require.NotNil(t, stored.OTPExpiresAt)
	assert.NotContains(t, *stored.OTPHash, code, "code must be stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.OTPHash), []byte(code)))
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), *stored.OTPExpiresAt, 10*time.Second)
}

func TestResetPasswordValidatesBeforeLookup(t *testing.T) {
	setupTest(t)

	// Short password is rejected even though no such user exists.
	c, rec := newContext(t, http.MethodPost, "/forgot-password",
		`{"mobile":"9876543210","otp":"123456","newPassword":"short"}`)
	require.NoError(t, ResetPassword(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(t, http.MethodPost, "/forgot-password",
		`{"mobile":"9876543210","otp":"12x456","newPassword":"longenough"}`)
	require.NoError(t, ResetPassword(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetPasswordRoundTrip(t *testing.T) {
	sender, _ := setupTest(t)
	user := createUser(t, "9876543210", "secret123", model.RoleTenant)

	c, rec := newContext(t, http.MethodPost, "/send-otp", `{"mobile":"9876543210"}`)
	require.NoError(t, SendResetOTP(c))
	require.Equal(t, http.StatusOK, rec.Code)
	code := sender.lastCode(t)

	c, rec = newContext(t, http.MethodPost, "/forgot-password",
		`{"mobile":"9876543210","otp":"`+code+`","newPassword":"brand-new-pass"}`)
	require.NoError(t, ResetPassword(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// The new password works and the pending reset is cleared.
	var stored model.User
	require.NoError(t, database.GetDB().First(&stored, user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("brand-new-pass")))
	assert.Nil(t, stored.OTPHash)
	assert.Nil(t, stored.OTPExpiresAt)
}

func TestResetPasswordWrongOrExpiredCollapse(t *testing.T) {
	setupTest(t)
	user := createUser(t, "9876543210", "secret123", model.RoleTenant)

	hashed, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
	require.NoError(t, err)
	future := time.Now().Add(10 * time.Minute)
	require.NoError(t, database.GetDB().Model(user).Updates(map[string]interface{}{
		"otp_hash":       string(hashed),
		"otp_expires_at": future,
	}).Error)

	// Wrong code.
	c, rec := newContext(t, http.MethodPost, "/forgot-password",
		`{"mobile":"9876543210","otp":"654321","newPassword":"longenough"}`)
	require.NoError(t, ResetPassword(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	wrongBody := rec.Body.String()

	// Correct code, past its window.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, database.GetDB().Model(user).Update("otp_expires_at", past).Error)
	c, rec = newContext(t, http.MethodPost, "/forgot-password",
		`{"mobile":"9876543210","otp":"123456","newPassword":"longenough"}`)
	require.NoError(t, ResetPassword(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, wrongBody, rec.Body.String(),
		"wrong code and expired code must be indistinguishable")
}

func TestResetPasswordWithoutPendingReset(t *testing.T) {
	setupTest(t)
	createUser(t, "9876543210", "secret123", model.RoleTenant)

	c, rec := newContext(t, http.MethodPost, "/forgot-password",
		`{"mobile":"9876543210","otp":"123456","newPassword":"longenough"}`)
	require.NoError(t, ResetPassword(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
