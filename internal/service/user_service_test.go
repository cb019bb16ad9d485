package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"translation-api/internal/config"
	"translation-api/internal/domain"
	"translation-api/internal/repository"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		SigningKey: "secret",
		HashCost:   bcrypt.MinCost,
		TokenTTL:   time.Hour,
		ResetTTL:   time.Hour,
	}
}

// failingUserRepo simula un almacenamiento caído.
type failingUserRepo struct {
	repository.UserRepository
	err error
}

func (f failingUserRepo) Create(context.Context, domain.User) error { return f.err }
func (f failingUserRepo) GetByID(context.Context, string) (domain.User, error) {
	return domain.User{}, f.err
}
func (f failingUserRepo) GetByEmail(context.Context, string) (domain.User, error) {
	return domain.User{}, f.err
}

func registerTestUser(t *testing.T, svc *UserService, email, password string) domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  password,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func TestUserServiceRegister_StoresHashNotPlaintext(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := NewUserService(zap.NewNop(), repo, testAuthConfig())

	user := registerTestUser(t, svc, " A@B.com ", "secret123")
	if user.ID == "" {
		t.Fatalf("expected id to be assigned")
	}
	if user.Email != "a@b.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}

	stored, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("expected stored user, got %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "secret123" || strings.Contains(stored.PasswordHash, "secret123") {
		t.Fatalf("expected irreversible hash, got %q", stored.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")); err != nil {
		t.Fatalf("expected bcrypt hash of password: %v", err)
	}
	if stored.HasPendingReset() {
		t.Fatalf("expected no pending reset on new user")
	}
}

func TestUserServiceRegister_DuplicateEmail(t *testing.T) {
	svc := NewUserService(zap.NewNop(), repository.NewMemoryUserRepository(), testAuthConfig())
	registerTestUser(t, svc, "a@b.com", "secret123")

	_, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "A@b.COM",
		Password:  "another",
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserServiceRegister_ConcurrentSameEmail(t *testing.T) {
	svc := NewUserService(zap.NewNop(), repository.NewMemoryUserRepository(), testAuthConfig())

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), RegisterInput{
				FirstName: "Ada", LastName: "Lovelace", Email: "race@b.com", Password: "pw",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateEmail):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != workers-1 {
		t.Fatalf("expected exactly one registration, got ok=%d dup=%d", ok, dup)
	}
}

func TestUserServiceRegister_Validation(t *testing.T) {
	svc := NewUserService(zap.NewNop(), repository.NewMemoryUserRepository(), testAuthConfig())

	cases := map[string]RegisterInput{
		"missing first name": {LastName: "L", Email: "a@b.com", Password: "pw"},
		"missing last name":  {FirstName: "F", Email: "a@b.com", Password: "pw"},
		"missing email":      {FirstName: "F", LastName: "L", Password: "pw"},
		"blank password":     {FirstName: "F", LastName: "L", Email: "a@b.com", Password: "   "},
		"bad email":          {FirstName: "F", LastName: "L", Email: "not-an-email", Password: "pw"},
		"password too long":  {FirstName: "F", LastName: "L", Email: "a@b.com", Password: strings.Repeat("x", 73)},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), input)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestUserServiceRegister_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := NewUserService(zap.NewNop(), failingUserRepo{err: storeErr}, testAuthConfig())

	_, err := svc.Register(context.Background(), RegisterInput{
		FirstName: "F", LastName: "L", Email: "a@b.com", Password: "pw",
	})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrValidation) {
		t.Fatalf("store failure must not look like a client error: %v", err)
	}
}

func TestUserServiceAuthenticate(t *testing.T) {
	svc := NewUserService(zap.NewNop(), repository.NewMemoryUserRepository(), testAuthConfig())
	registered := registerTestUser(t, svc, "a@b.com", "secret123")

	user, err := svc.Authenticate(context.Background(), "A@B.COM", "secret123")
	if err != nil {
		t.Fatalf("expected login success, got %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %s, got %s", registered.ID, user.ID)
	}
}

func TestUserServiceAuthenticate_UnknownEmailAndWrongPasswordLookTheSame(t *testing.T) {
	svc := NewUserService(zap.NewNop(), repository.NewMemoryUserRepository(), testAuthConfig())
	registerTestUser(t, svc, "a@b.com", "secret123")

	_, errWrong := svc.Authenticate(context.Background(), "a@b.com", "wrong")
	_, errUnknown := svc.Authenticate(context.Background(), "nobody@x.com", "secret123")

	if !errors.Is(errWrong, ErrInvalidCredentials) || !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", errWrong, errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Fatalf("expected identical errors, got %q and %q", errWrong, errUnknown)
	}
}

func TestUserServiceAuthenticate_StoreFailureIsInternal(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := NewUserService(zap.NewNop(), failingUserRepo{err: storeErr}, testAuthConfig())

	_, err := svc.Authenticate(context.Background(), "a@b.com", "pw")
	if !errors.Is(err, storeErr) || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected internal store error, got %v", err)
	}
}

func TestUserServiceAuthenticate_CancelledContext(t *testing.T) {
	svc := NewUserService(zap.NewNop(), repository.NewMemoryUserRepository(), testAuthConfig())
	registerTestUser(t, svc, "a@b.com", "secret123")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Authenticate(ctx, "a@b.com", "secret123")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestUserServiceDummyPasswordHash(t *testing.T) {
	svc := NewUserService(zap.NewNop(), repository.NewMemoryUserRepository(), testAuthConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.dummyPasswordHash(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if svc.dummyHash != "" {
		t.Fatalf("expected failed dummy hash not cached")
	}
	if _, err := svc.Authenticate(ctx, "nobody@x.com", "pw"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected unknown email with cancelled context to fail, got %v", err)
	}

	hash, err := svc.dummyPasswordHash(context.Background())
	if err != nil {
		t.Fatalf("dummy hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil || cost != bcrypt.MinCost {
		t.Fatalf("expected bcrypt hash at configured cost, got cost=%d err=%v", cost, err)
	}
	again, _ := svc.dummyPasswordHash(context.Background())
	if again != hash {
		t.Fatalf("expected dummy hash reused")
	}
}

func TestUserServiceGetByID(t *testing.T) {
	svc := NewUserService(zap.NewNop(), repository.NewMemoryUserRepository(), testAuthConfig())
	registered := registerTestUser(t, svc, "a@b.com", "secret123")

	user, err := svc.GetByID(context.Background(), registered.ID)
	if err != nil || user.Email != "a@b.com" {
		t.Fatalf("expected user, got %+v, %v", user, err)
	}
	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserServiceChangePassword(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := NewUserService(zap.NewNop(), repo, testAuthConfig())
	user := registerTestUser(t, svc, "a@b.com", "secret123")
	if err := repo.SetResetToken(context.Background(), user.ID, "pending", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("set reset token: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, "wrong", "newpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), user.ID, "secret123", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), user.ID, "secret123", "newpass"); err != nil {
		t.Fatalf("expected change success, got %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "a@b.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "a@b.com", "newpass"); err != nil {
		t.Fatalf("expected new password accepted, got %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), user.ID)
	if stored.HasPendingReset() {
		t.Fatalf("expected pending reset cleared on password change")
	}
}

func TestRunBlocking_StopsWaitingOnDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)
	_, err := runBlocking(ctx, func() (int, error) {
		<-release
		return 1, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
