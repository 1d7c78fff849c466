package auth

import (
	"testing"
	"time"

	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/model"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := CheckPassword(hash, "s3cret-pass"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := CheckPassword(hash, "wrong-pass"); err != ErrInvalidCredentials {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	user := &model.User{
		ID:    "user-1",
		Name:  "Asha",
		Email: "asha@example.com",
		Phone: "9999999999",
	}

	token, err := GenerateToken(user, "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	requester, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if requester.ID != user.ID || requester.Email != user.Email || requester.Name != user.Name || requester.Phone != user.Phone {
		t.Errorf("requester = %+v, want identity of %+v", requester, user)
	}

	if _, err := ParseToken(token, "other-secret"); err != ErrInvalidToken {
		t.Errorf("wrong secret: got %v, want ErrInvalidToken", err)
	}
	if _, err := ParseToken("not-a-token", "secret"); err != ErrInvalidToken {
		t.Errorf("garbage token: got %v, want ErrInvalidToken", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	user := &model.User{ID: "user-1"}
	token, err := GenerateToken(user, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken(token, "secret"); err != ErrInvalidToken {
		t.Errorf("expired token: got %v, want ErrInvalidToken", err)
	}
}
