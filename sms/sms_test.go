package sms

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendSuccess(t *testing.T) {
	var got sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(sendResponse{Status: "success"})
	}))
	defer server.Close()

	Configure(server.URL, "test-key")
	assert.True(t, Send("+260971234567", "Shift starts at 07:00"))
	assert.Equal(t, "test-key", got.APIKey)
	assert.Equal(t, "ZM-MINING", got.SenderID)
	assert.Equal(t, "+260971234567", got.Phone)
	assert.Equal(t, "Shift starts at 07:00", got.Message)
}

func TestSendGatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sendResponse{Status: "insufficient_credit"})
	}))
	defer server.Close()

	Configure(server.URL, "test-key")
	assert.False(t, Send("+260971234567", "hello"))
}

func TestSendHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	Configure(server.URL, "test-key")
	assert.False(t, Send("+260971234567", "hello"))
}

func TestSendWithoutAPIKey(t *testing.T) {
	Configure("http://127.0.0.1:1", "")
	assert.False(t, Send("+260971234567", "hello"))
}

func TestSendUnreachableGateway(t *testing.T) {
	// httptest URLs use a loopback IP, so DNS passes and the dial fails.
	Configure("http://127.0.0.1:1", "test-key")
	assert.False(t, Send("+260971234567", "hello"))
}

func TestCheckDNS(t *testing.T) {
	assert.True(t, checkDNS("http://127.0.0.1:9000/send"))

	orig := lookupHost
	defer func() { lookupHost = orig }()

	lookupHost = func(host string) ([]string, error) {
		return []string{"10.0.0.1"}, nil
	}
	assert.True(t, checkDNS("https://api.example.zm/v1/sms/send"))

	lookupHost = func(host string) ([]string, error) {
		return nil, &testDNSError{}
	}
	assert.False(t, checkDNS("https://api.example.zm/v1/sms/send"))
}

type testDNSError struct{}

func (e *testDNSError) Error() string { return "no such host" }
