package sms

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rental-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *Client {
	return NewClient(&config.SMSConfig{
		BaseURL:    server.URL,
		AccountSID: "AC-test",
		AuthToken:  "token",
		FromNumber: "+15550006789",
	})
}

func TestSendPostsFormEncodedMessage(t *testing.T) {
	var gotPath, gotTo, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotTo = r.PostFormValue("To")
		gotBody = r.PostFormValue("Body")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(server)
	require.NoError(t, client.Send("+919876543210", "Your OTP code is: 123456"))

	assert.Equal(t, "/2010-04-01/Accounts/AC-test/Messages.json", gotPath)
	assert.Equal(t, "+919876543210", gotTo)
	assert.Equal(t, "Your OTP code is: 123456", gotBody)
}

func TestSendMapsProviderErrorCodes(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    error
	}{
		{"invalid number", `{"code":21211,"message":"Invalid 'To' Phone Number"}`, ErrInvalidNumber},
		{"not sms capable", `{"code":21614,"message":"'To' number is not a valid mobile number"}`, ErrNotSMSCapable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tc.payload))
			}))
			defer server.Close()

			err := newTestClient(server).Send("+911234567890", "hello")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSendUnknownErrorIsGeneric(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"code":20429,"message":"Too Many Requests"}`))
	}))
	defer server.Close()

	err := newTestClient(server).Send("+919876543210", "hello")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidNumber)
	assert.NotErrorIs(t, err, ErrNotSMSCapable)
}

func TestSendTruncatesOversizedErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(strings.Repeat("x", 4*maxErrorBodyBytes)))
	}))
	defer server.Close()

	err := newTestClient(server).Send("+919876543210", "hello")
	require.Error(t, err)
	assert.LessOrEqual(t, len(err.Error()), maxErrorBodyBytes+128,
		"error body must be capped, not streamed in full")
}
