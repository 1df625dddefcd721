package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"rental-service/internal/model"
	"rental-service/internal/otp"
	"rental-service/internal/sms"
	"rental-service/pkg/database"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SendVerificationOTP dispatches a transient mobile-verification code.
// Used before registration, so no user record is involved.
func SendVerificationOTP(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Mobile string `json:"mobile"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse OTP request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	err := otpService.Request(req.Mobile)
	switch {
	case err == nil:
		prometheus.RecordOTPSent("verify")
		log.Info("Verification OTP sent", zap.String("mobile", req.Mobile))
		return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent to your mobile"})
	case errors.Is(err, otp.ErrInvalidMobile):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Please provide a valid 10-digit mobile number"})
	case errors.Is(err, sms.ErrInvalidNumber):
		log.Error("SMS provider rejected number", zap.String("mobile", req.Mobile))
		prometheus.RecordSMSError("invalid_number")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid mobile number"})
	case errors.Is(err, sms.ErrNotSMSCapable):
		log.Error("Number is not SMS-capable", zap.String("mobile", req.Mobile))
		prometheus.RecordSMSError("not_sms_capable")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "This number is not mobile-capable"})
	default:
		log.Error("Failed to send OTP", zap.Error(err))
		prometheus.RecordSMSError("delivery_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to send OTP"})
	}
}

// VerifyOTP checks a transient mobile-verification code.
func VerifyOTP(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Mobile string `json:"mobile"`
		OTP    string `json:"otp"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse OTP verification request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	err := otpService.Verify(req.Mobile, req.OTP)
	switch {
	case err == nil:
		prometheus.RecordOTPVerify("success")
		log.Info("OTP verified", zap.String("mobile", req.Mobile))
		return c.JSON(http.StatusOK, echo.Map{"message": "OTP verified successfully"})
	case errors.Is(err, otp.ErrInvalidMobile):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid mobile number"})
	case errors.Is(err, otp.ErrInvalidCode):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid OTP format"})
	case errors.Is(err, otp.ErrNotRequested):
		prometheus.RecordOTPVerify("not_requested")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "OTP expired or not requested"})
	case errors.Is(err, otp.ErrTooManyAttempts):
		prometheus.RecordOTPVerify("exhausted")
		log.Warn("OTP attempts exhausted", zap.String("mobile", req.Mobile))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Too many attempts. Please request a new OTP"})
	case errors.Is(err, otp.ErrExpired):
		prometheus.RecordOTPVerify("expired")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "OTP expired"})
	default:
		prometheus.RecordOTPVerify("mismatch")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid OTP"})
	}
}

// SendResetOTP starts the password-reset flow: a fresh code is hashed and
// stored on the user row, superseding any pending reset, then sent by SMS.
func SendResetOTP(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Mobile string `json:"mobile"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse reset OTP request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	if !otp.ValidMobile(req.Mobile) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Please provide a valid 10-digit mobile number"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := database.GetDB().Where("mobile = ?", req.Mobile).First(&user).Error; err != nil {
		log.Error("No account for mobile", zap.String("mobile", req.Mobile))
		return c.JSON(http.StatusNotFound, echo.Map{"message": "No account found with this mobile number"})
	}

	code := otp.GenerateCode()
	hashedCode, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash OTP", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to send OTP"})
	}

	hash := string(hashedCode)
	expiresAt := time.Now().Add(resetTTL)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&user).Updates(map[string]interface{}{
		"otp_hash":       hash,
		"otp_expires_at": expiresAt,
	}).Error; err != nil {
		log.Error("Failed to store reset OTP", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to send OTP"})
	}

	body := fmt.Sprintf("Your password reset OTP is: %s. Valid for %d minutes.", code, int(resetTTL.Minutes()))
	if err := smsSender.Send(countryCode+req.Mobile, body); err != nil {
		log.Error("Failed to send reset OTP", zap.Error(err))

		message := "Failed to send OTP"
		if errors.Is(err, sms.ErrInvalidNumber) {
			prometheus.RecordSMSError("invalid_number")
			message = "Invalid mobile number"
		} else if errors.Is(err, sms.ErrNotSMSCapable) {
			prometheus.RecordSMSError("not_sms_capable")
			message = "This number cannot receive SMS"
		} else {
			prometheus.RecordSMSError("delivery_failed")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": message})
	}

	prometheus.RecordOTPSent("reset")
	log.Info("Reset OTP sent", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent to your mobile number"})
}

// ResetPassword completes the password-reset flow. Whether the code is wrong
// or merely expired is not distinguishable from the response.
func ResetPassword(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Mobile      string `json:"mobile"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse password reset request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	if !otp.ValidMobile(req.Mobile) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid mobile number"})
	}
	if !otp.ValidCode(req.OTP) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid OTP format"})
	}
	if len(req.NewPassword) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Password must be at least 6 characters"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := database.GetDB().Where("mobile = ?", req.Mobile).First(&user).Error; err != nil {
		log.Error("User not found for reset", zap.String("mobile", req.Mobile))
		return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
	}

	// A missing hash, a mismatched code and a lapsed expiry all collapse
	// into the same response.
	valid := user.OTPHash != nil && user.OTPExpiresAt != nil &&
		bcrypt.CompareHashAndPassword([]byte(*user.OTPHash), []byte(req.OTP)) == nil &&
		time.Now().Before(*user.OTPExpiresAt)
	if !valid {
		prometheus.RecordOTPVerify("reset_invalid")
		log.Warn("Invalid or expired reset OTP", zap.Uint("user_id", user.ID))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid or expired OTP"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash new password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to reset password"})
	}

	// New password and OTP-field clearing go in one update.
	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Model(&user).Updates(map[string]interface{}{
		"password":       string(hashedPassword),
		"otp_hash":       nil,
		"otp_expires_at": nil,
	}).Error; err != nil {
		log.Error("Failed to update password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to reset password"})
	}

	prometheus.RecordOTPVerify("reset_success")
	log.Info("Password reset completed", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Password updated successfully"})
}
