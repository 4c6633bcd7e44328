package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/DarkZangetsu/medcare/internal/api"
	"github.com/DarkZangetsu/medcare/internal/keyring"
	"github.com/DarkZangetsu/medcare/internal/models"
)

type fakeAuthenticator struct {
	token string
	err   error
}

func (f fakeAuthenticator) Login(ctx context.Context, phone, password string) (string, models.User, error) {
	return f.token, models.User{ID: "u1", Phone: phone}, f.err
}

func (f fakeAuthenticator) Register(ctx context.Context, in api.RegisterInput) (string, models.User, error) {
	return f.token, models.User{ID: "u2", Phone: in.Phone, Name: in.Name}, f.err
}

type fakeCanceller struct {
	calls int
	err   error
}

func (f *fakeCanceller) CancelAll(ctx context.Context) error {
	f.calls++
	return f.err
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestTokenWhenLoggedOut(t *testing.T) {
	gokeyring.MockInit()

	token, err := NewSession().Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != "" {
		t.Errorf("Token() = %q, want empty", token)
	}
}

func TestLoginStoresToken(t *testing.T) {
	gokeyring.MockInit()
	s := NewSession()

	user, err := s.Login(context.Background(), fakeAuthenticator{token: "tok"}, "0340000000", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user = %+v", user)
	}
	if got, _ := s.Token(); got != "tok" {
		t.Errorf("Token() = %q, want tok", got)
	}
	if got, _ := keyring.GetToken(); got != "tok" {
		t.Errorf("keyring token = %q, want tok", got)
	}
}

func TestLoginFailureKeepsNoToken(t *testing.T) {
	gokeyring.MockInit()
	s := NewSession()

	if _, err := s.Login(context.Background(), fakeAuthenticator{err: errors.New("bad credentials")}, "x", "y"); err == nil {
		t.Fatal("Login() should fail")
	}
	if got, _ := s.Token(); got != "" {
		t.Errorf("Token() = %q, want empty", got)
	}
}

func TestLogoutCancelsAndClears(t *testing.T) {
	gokeyring.MockInit()
	s := NewSession()
	if _, err := s.Login(context.Background(), fakeAuthenticator{token: "tok"}, "x", "y"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	c := &fakeCanceller{err: errors.New("queue down")}
	err := s.Logout(context.Background(), c)
	if err == nil {
		t.Error("Logout() should report the cancellation failure")
	}
	if c.calls != 1 {
		t.Errorf("CancelAll calls = %d, want 1", c.calls)
	}
	if got, _ := s.Token(); got != "" {
		t.Errorf("Token() after logout = %q, want empty", got)
	}
	if _, err := keyring.GetToken(); !errors.Is(err, keyring.ErrNotFound) {
		t.Errorf("keyring token after logout error = %v, want not found", err)
	}
}

func TestStatus(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		claims      jwt.MapClaims
		wantExpired bool
		wantSubject string
	}{
		{
			name:        "valid token with username",
			claims:      jwt.MapClaims{"username": "0340000000", "exp": now.Add(time.Hour).Unix()},
			wantSubject: "0340000000",
		},
		{
			name:        "expired token",
			claims:      jwt.MapClaims{"sub": "u1", "exp": now.Add(-time.Minute).Unix()},
			wantExpired: true,
			wantSubject: "u1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gokeyring.MockInit()
			if err := keyring.SetToken(signedToken(t, tt.claims)); err != nil {
				t.Fatalf("SetToken() error = %v", err)
			}
			s := NewSession()
			s.now = func() time.Time { return now }

			st, err := s.Status()
			if err != nil {
				t.Fatalf("Status() error = %v", err)
			}
			if !st.LoggedIn || st.Expired != tt.wantExpired || st.Subject != tt.wantSubject {
				t.Errorf("Status() = %+v", st)
			}
		})
	}
}

func TestStatusMalformedToken(t *testing.T) {
	gokeyring.MockInit()
	if err := keyring.SetToken("not-a-jwt"); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}
	if _, err := NewSession().Status(); err == nil {
		t.Error("Status() should reject a malformed token")
	}
}
