package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"
	"github.com/boddenberg/cost-dashboard-go/internal/service"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := service.NewTokenIssuer("s3cret", time.Hour)

	tok, err := issuer.Issue("ops-bot")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := issuer.Validate(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "ops-bot" {
		t.Errorf("expected subject ops-bot, got %s", claims.Subject)
	}
}

func TestTokenIssuer_RejectsForeignAndExpired(t *testing.T) {
	issuer := service.NewTokenIssuer("s3cret", time.Hour)
	other := service.NewTokenIssuer("different", time.Hour)
	expired := service.NewTokenIssuer("s3cret", time.Nanosecond)

	foreign, _ := other.Issue("x")
	old, _ := expired.Issue("x")
	time.Sleep(5 * time.Millisecond)

	for name, tok := range map[string]string{"foreign": foreign, "expired": old, "garbage": "not-a-jwt"} {
		_, err := issuer.Validate(tok)
		var ue *domain.ErrUnauthorized
		if !errors.As(err, &ue) {
			t.Errorf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

func TestNewTokenIssuer_EmptySecretDisablesAuth(t *testing.T) {
	if service.NewTokenIssuer("", time.Hour) != nil {
		t.Error("expected nil issuer for empty secret")
	}
}
