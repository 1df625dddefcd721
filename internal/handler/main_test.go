package handler

import (
	"encoding/json"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"rental-service/internal/model"
	"rental-service/internal/otp"
	"rental-service/pkg/config"
	"rental-service/pkg/database"
	"rental-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testCodeRe = regexp.MustCompile(`\d{6}`)

// fakeSender records outgoing SMS messages and can simulate provider errors.
type fakeSender struct {
	sent []string
	to   []string
	err  error
}

func (f *fakeSender) Send(to, body string) error {
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, to)
	f.sent = append(f.sent, body)
	return nil
}

func (f *fakeSender) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent, "no SMS was sent")
	code := testCodeRe.FindString(f.sent[len(f.sent)-1])
	require.Len(t, code, 6)
	return code
}

// fakeNotifier captures property notifications on a channel so tests can
// wait for the async send.
type fakeNotifier struct {
	notified chan *model.Property
	err      error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{notified: make(chan *model.Property, 4)}
}

func (f *fakeNotifier) NotifyNewProperty(owner *model.User, property *model.Property) error {
	f.notified <- property
	return f.err
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{SigningKey: "handler-test-key", ExpirationHours: 24},
		SMS: config.SMSConfig{CountryCode: "+91"},
		OTP: config.OTPConfig{
			VerifyTTL:   5 * time.Minute,
			ResetTTL:    10 * time.Minute,
			MaxAttempts: 5,
		},
	}
}

// setupTest swaps in an in-memory database and fake collaborators.
func setupTest(t *testing.T) (*fakeSender, *fakeNotifier) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Property{}), "failed to migrate tables")
	database.DB = db

	cfg := testConfig()
	jwtutil.Initialize(&cfg.JWT)

	sender := &fakeSender{}
	notifierFake := newFakeNotifier()
	service := otp.NewService(otp.NewMemoryStore(), sender, cfg)
	Configure(cfg, service, sender, notifierFake)

	return sender, notifierFake
}

// newContext builds an echo context with a JSON body.
func newContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// createUser persists a user with a bcrypt-hashed password.
func createUser(t *testing.T, mobile, password, role string) *model.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &model.User{
		Name:     "Test User",
		Email:    "test@example.com",
		Mobile:   mobile,
		Password: string(hashed),
		Role:     role,
	}
	require.NoError(t, database.GetDB().Create(user).Error)
	return user
}

// decodeBody unmarshals a JSON response body into a map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
