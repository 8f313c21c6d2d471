package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/slidespace/backend/internal/core/domain"
)

type fakeUsers struct {
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
	usage   []domain.UsageRow
	limit   int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*domain.User{}, byID: map[string]*domain.User{}}
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return domain.WrapError(domain.ErrInvalidInput, "create user", fmt.Errorf("email taken"))
	}
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("no user"))
	}
	return user, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("no user"))
	}
	return user, nil
}

func (f *fakeUsers) UsageReport(_ context.Context, limit int) ([]domain.UsageRow, error) {
	f.limit = limit
	return f.usage, nil
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	users := newFakeUsers()
	u := NewAuthUsecase(users, testLogger())

	created, err := u.Register(context.Background(), "Ada", "Ada@Example.com", "correct horse")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.Email != "ada@example.com" {
		t.Fatalf("email = %s, want lowercased", created.Email)
	}
	if created.PasswordHash == "correct horse" {
		t.Fatalf("password must be hashed")
	}

	logged, err := u.Login(context.Background(), "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != created.ID {
		t.Fatalf("login returned wrong user")
	}
}

func TestLoginWrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	users := newFakeUsers()
	u := NewAuthUsecase(users, testLogger())
	if _, err := u.Register(context.Background(), "Ada", "ada@example.com", "correct horse"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPass := u.Login(context.Background(), "ada@example.com", "wrong")
	_, unknown := u.Login(context.Background(), "ghost@example.com", "whatever")

	if !domain.IsKind(wrongPass, domain.ErrUnauthorized) || !domain.IsKind(unknown, domain.ErrUnauthorized) {
		t.Fatalf("both failures must be unauthorized, got %v and %v", wrongPass, unknown)
	}
}

func TestRegisterValidation(t *testing.T) {
	u := NewAuthUsecase(newFakeUsers(), testLogger())

	cases := []struct {
		name, userName, email, password string
	}{
		{"empty name", "", "a@example.com", "long enough"},
		{"bad email", "Ada", "not-an-email", "long enough"},
		{"short password", "Ada", "a@example.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := u.Register(context.Background(), tc.userName, tc.email, tc.password); !domain.IsKind(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestUsageReportAppliesConfiguredLimit(t *testing.T) {
	users := newFakeUsers()
	users.usage = []domain.UsageRow{{UserName: "Ada"}}

	report, err := NewReportUsecase(users, 250).UsageReport(context.Background())
	if err != nil {
		t.Fatalf("usage report: %v", err)
	}
	if len(report) != 1 || users.limit != 250 {
		t.Fatalf("report = %v, limit = %d", report, users.limit)
	}
}
