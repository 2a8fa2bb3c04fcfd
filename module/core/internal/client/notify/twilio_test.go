package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleet-dispatch/module/core/domain"
)

func TestSendSMS_Success(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotTo = r.PostFormValue("To")
		gotFrom = r.PostFormValue("From")
		gotBody = r.PostFormValue("Body")

		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "secret" {
			t.Errorf("bad basic auth: %s/%s", user, pass)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewTwilioClient("AC123", "secret", "+15550001111", 2*time.Second).WithAPIBase(srv.URL)
	err := c.SendSMS(context.Background(), "+911234567890", "Emergency request")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/2010-04-01/Accounts/AC123/Messages.json" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotTo != "+911234567890" {
		t.Errorf("unexpected To: %s", gotTo)
	}
	if gotFrom != "+15550001111" {
		t.Errorf("unexpected From: %s", gotFrom)
	}
	if gotBody != "Emergency request" {
		t.Errorf("unexpected Body: %s", gotBody)
	}
}

func TestSendSMS_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewTwilioClient("AC123", "wrong", "+15550001111", 2*time.Second).WithAPIBase(srv.URL)
	err := c.SendSMS(context.Background(), "+911234567890", "hi")
	if !errors.Is(err, domain.ErrExternalCall) {
		t.Fatalf("expected ErrExternalCall, got %v", err)
	}
}
