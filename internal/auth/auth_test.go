package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/swipswaps/marketplace-bulk-editor/internal/store"
)

// fakeDirectory is an in-memory UserDirectory for exercising the service
// without a database.
type fakeDirectory struct {
	byID    map[string]store.User
	byEmail map[string]store.User
	nextID  int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		byID:    make(map[string]store.User),
		byEmail: make(map[string]store.User),
	}
}

func (d *fakeDirectory) Create(_ context.Context, email, passwordHash string) (store.User, error) {
	email = strings.ToLower(email)
	if _, ok := d.byEmail[email]; ok {
		return store.User{}, store.ErrEmailTaken
	}
	d.nextID++
	u := store.User{
		ID:           strings.Repeat("0", d.nextID),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	d.byID[u.ID] = u
	d.byEmail[email] = u
	return u, nil
}

func (d *fakeDirectory) ByEmail(_ context.Context, email string) (store.User, error) {
	u, ok := d.byEmail[strings.ToLower(email)]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (d *fakeDirectory) ByID(_ context.Context, id string) (store.User, error) {
	u, ok := d.byID[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func newTestService() (*Service, *fakeDirectory) {
	dir := newFakeDirectory()
	return NewService(dir, "test-secret", time.Hour, 24*time.Hour), dir
}

// ============================================================================
// Register Tests
// ============================================================================

func TestRegister_IssuesTokenPair(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, pair, err := svc.Register(ctx, "alice@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("Email = %q", u.Email)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("Register() should hand back both tokens")
	}
	if pair.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", pair.ExpiresIn)
	}
	if u.PasswordHash == "hunter2hunter2" {
		t.Error("password must not be stored in the clear")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"bad email", "not-an-email", "longenough", ErrInvalidEmail},
		{"empty email", "", "longenough", ErrInvalidEmail},
		{"short password", "bob@example.com", "short", ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "alice@example.com", "hunter2hunter2"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, _, err := svc.Register(ctx, "alice@example.com", "hunter2hunter2")
	if !errors.Is(err, store.ErrEmailTaken) {
		t.Errorf("second Register() error = %v, want ErrEmailTaken", err)
	}
}

// ============================================================================
// Login Tests
// ============================================================================

func TestLogin_RoundTrip(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	svc.Register(ctx, "alice@example.com", "hunter2hunter2")

	u, pair, err := svc.Login(ctx, "alice@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if u.Email != "alice@example.com" || pair.AccessToken == "" {
		t.Error("Login() should return the user and a token pair")
	}
}

func TestLogin_BadCredentialsAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	svc.Register(ctx, "alice@example.com", "hunter2hunter2")

	_, _, errUnknown := svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	_, _, errWrongPw := svc.Login(ctx, "alice@example.com", "wrong-password")

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v", errUnknown)
	}
	if !errors.Is(errWrongPw, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", errWrongPw)
	}
}

// ============================================================================
// Token Tests
// ============================================================================

func TestAuthenticate_AcceptsOnlyAccessTokens(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	u, pair, _ := svc.Register(ctx, "alice@example.com", "hunter2hunter2")

	got, err := svc.Authenticate(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate(access) error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("Authenticate() user = %q, want %q", got.ID, u.ID)
	}

	if _, err := svc.Authenticate(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Authenticate(refresh) error = %v, want ErrInvalidToken", err)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, pair, _ := svc.Register(ctx, "alice@example.com", "hunter2hunter2")

	if _, err := svc.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Refresh(access) error = %v, want ErrInvalidToken", err)
	}

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh(refresh) error = %v", err)
	}
	if fresh.AccessToken == "" || fresh.RefreshToken == "" {
		t.Error("Refresh() should issue a full pair")
	}
}

func TestRefresh_DeletedUser(t *testing.T) {
	svc, dir := newTestService()
	ctx := context.Background()
	u, pair, _ := svc.Register(ctx, "alice@example.com", "hunter2hunter2")

	delete(dir.byID, u.ID)
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Refresh() for deleted user error = %v, want ErrInvalidToken", err)
	}
}

func TestAuthenticate_RejectsTamperedToken(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, pair, _ := svc.Register(ctx, "alice@example.com", "hunter2hunter2")

	tampered := pair.AccessToken + "x"
	if _, err := svc.Authenticate(ctx, tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("tampered token error = %v, want ErrInvalidToken", err)
	}

	if _, err := svc.Authenticate(ctx, "not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token error = %v, want ErrInvalidToken", err)
	}
}

func TestAuthenticate_RejectsWrongKey(t *testing.T) {
	svcA, _ := newTestService()
	ctx := context.Background()
	_, pair, _ := svcA.Register(ctx, "alice@example.com", "hunter2hunter2")

	svcB := NewService(newFakeDirectory(), "other-secret", time.Hour, 24*time.Hour)
	if _, err := svcB.Authenticate(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign-key token error = %v, want ErrInvalidToken", err)
	}
}

func TestAuthenticate_RejectsExpiredToken(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewService(dir, "test-secret", -time.Minute, 24*time.Hour)
	ctx := context.Background()
	_, pair, _ := svc.Register(ctx, "alice@example.com", "hunter2hunter2")

	if _, err := svc.Authenticate(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token error = %v, want ErrInvalidToken", err)
	}
}
