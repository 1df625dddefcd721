package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"rental-service/internal/model"
	"rental-service/pkg/config"
)

// Notifier sends the operator a notification about a newly added property.
// Delivery is fire-and-forget; callers log failures and move on.
type Notifier interface {
	NotifyNewProperty(owner *model.User, property *model.Property) error
}

// Mailer delivers notifications over SMTP.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	notifyTo string
}

// New creates a Mailer from the loaded configuration
func New(cfg *config.SMTPConfig) *Mailer {
	return &Mailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		notifyTo: cfg.NotifyTo,
	}
}

// NotifyNewProperty emails the configured operator address with the details
// of a property that was just registered.
func (m *Mailer) NotifyNewProperty(owner *model.User, property *model.Property) error {
	if m.notifyTo == "" {
		return nil
	}

	var amenities []string
	if property.Wifi {
		amenities = append(amenities, "WiFi")
	}
	if property.AC {
		amenities = append(amenities, "AC")
	}
	if property.WaterSupply {
		amenities = append(amenities, "Water Supply")
	}
	if property.PowerBackup {
		amenities = append(amenities, "Power Backup")
	}
	if property.Security {
		amenities = append(amenities, "Security")
	}

	body := fmt.Sprintf(`<h2>New Property Details</h2>
<p><strong>Address:</strong> %s</p>
<p><strong>Near:</strong> %s</p>
<p><strong>Description:</strong> %s</p>
<p><strong>Rent:</strong> %.0f</p>
<p><strong>Gender:</strong> %s</p>
<p><strong>Furnishing:</strong> %s</p>
<p><strong>Restriction:</strong> %s</p>
<p><strong>Status:</strong> %s</p>
<p><strong>Amenities:</strong> %s</p>
<p><strong>Submitted By:</strong> %s (%s)</p>`,
		property.Address, property.Near, property.Description, property.Rent,
		property.Gender, property.Furnishing, property.Restriction, property.Status,
		strings.Join(amenities, ", "), owner.Name, owner.Email)

	msg := strings.Join([]string{
		"From: Property Notifier <" + m.from + ">",
		"To: " + m.notifyTo,
		"Subject: New Property Registered",
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	addr := m.host + ":" + m.port
	return smtp.SendMail(addr, auth, m.from, []string{m.notifyTo}, []byte(msg))
}
