package handler

import (
	"time"

	"rental-service/internal/mailer"
	"rental-service/internal/otp"
	"rental-service/internal/sms"
	"rental-service/pkg/config"
)

// Handler collaborators, wired once at startup. Tests substitute fakes here.
var (
	otpService  *otp.Service
	smsSender   sms.Sender
	notifier    mailer.Notifier
	countryCode string
	resetTTL    time.Duration
)

// Configure wires the handlers' external collaborators and OTP policy.
func Configure(cfg *config.Config, service *otp.Service, sender sms.Sender, mail mailer.Notifier) {
	otpService = service
	smsSender = sender
	notifier = mail
	countryCode = cfg.SMS.CountryCode
	resetTTL = cfg.OTP.ResetTTL
}
