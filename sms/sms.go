// Package sms sends outbound text messages through the Zamtel SMS API.
// Every failure here is soft: callers get a bool back and the batch they
// are working through continues.
package sms

import (
	"bytes"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

const defaultAPIURL = "https://api.zamtel.zm/v1/sms/send"
const senderID = "ZM-MINING"

var (
	apiURL     = defaultAPIURL
	apiKey     string
	httpClient = &http.Client{Timeout: 10 * time.Second}

	// swapped out in tests
	lookupHost = net.LookupHost
)

func Init() {
	apiKey = os.Getenv("ZAMTEL_API_KEY")
	if v := os.Getenv("ZAMTEL_API_URL"); v != "" {
		apiURL = v
	}
	if apiKey == "" {
		log.Println("Warning: ZAMTEL_API_KEY not set, SMS sending disabled")
	}
}

// Configure overrides the endpoint and key. Used by tests.
func Configure(endpoint, key string) {
	apiURL = endpoint
	apiKey = key
}

type sendRequest struct {
	APIKey   string `json:"api_key"`
	SenderID string `json:"sender_id"`
	Phone    string `json:"phone"`
	Message  string `json:"message"`
}

type sendResponse struct {
	Status string `json:"status"`
}

// checkDNS verifies the API host resolves before attempting the request,
// so an unresolvable gateway fails fast instead of eating the timeout.
func checkDNS(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "" {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		return true
	}
	if _, err := lookupHost(host); err != nil {
		log.Printf("SMS: cannot resolve %s: %v", host, err)
		return false
	}
	return true
}

// Send delivers one message to a +260 number. Returns false on any
// failure; it never panics or aborts the caller.
func Send(phone, message string) bool {
	if apiKey == "" {
		log.Println("SMS: API key not set, message not sent")
		return false
	}

	if !checkDNS(apiURL) {
		log.Println("SMS: cannot resolve gateway host, message not sent")
		return false
	}

	payload, err := json.Marshal(sendRequest{
		APIKey:   apiKey,
		SenderID: senderID,
		Phone:    phone,
		Message:  message,
	})
	if err != nil {
		log.Printf("SMS: marshal failed: %v", err)
		return false
	}

	resp, err := httpClient.Post(apiURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("SMS: request failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("SMS: gateway returned %d for %s", resp.StatusCode, phone)
		return false
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("SMS: bad gateway response: %v", err)
		return false
	}
	if result.Status != "success" {
		log.Printf("SMS: gateway rejected message to %s: %s", phone, result.Status)
		return false
	}

	log.Printf("SMS sent to %s", phone)
	return true
}
