package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/datalab/datalab/internal/platform/auth"
)

type mockRepo struct {
	nextID int64
	users  map[int64]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{nextID: 1, users: map[int64]*User{}}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context) ([]*User, error) {
	var out []*User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockRepo) SetActive(_ context.Context, id int64, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Active = active
	return nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	issuer := auth.NewIssuer("test-secret", time.Hour)
	return NewService(repo, issuer, zerolog.Nop()), repo
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Ana@Study.org",
		Name:     "Ana",
		Password: "correcthorse",
		Role:     auth.RoleInvestigator,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "ana@study.org" {
		t.Errorf("email should be lowercased, got %q", u.Email)
	}
	if u.PasswordHash == "correcthorse" || u.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	token, got, err := svc.Login(context.Background(), "ana@study.org", "correcthorse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || got.ID != u.ID {
		t.Errorf("unexpected login result token=%q user=%+v", token, got)
	}
}

func TestService_Login_BadPassword(t *testing.T) {
	svc, _ := newTestService()
	_, _ = svc.Register(context.Background(), RegisterRequest{
		Email: "ana@study.org", Password: "correcthorse", Role: auth.RoleRecruiter,
	})

	if _, _, err := svc.Login(context.Background(), "ana@study.org", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	// unknown account yields the same error
	if _, _, err := svc.Login(context.Background(), "ghost@study.org", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestService_Login_Inactive(t *testing.T) {
	svc, repo := newTestService()
	u, _ := svc.Register(context.Background(), RegisterRequest{
		Email: "ana@study.org", Password: "correcthorse", Role: auth.RoleRecruiter,
	})
	_ = repo.SetActive(context.Background(), u.ID, false)

	if _, _, err := svc.Login(context.Background(), "ana@study.org", "correcthorse"); !errors.Is(err, ErrInactiveAccount) {
		t.Errorf("expected ErrInactiveAccount, got %v", err)
	}
}

func TestService_Register_Validation(t *testing.T) {
	svc, _ := newTestService()

	cases := []RegisterRequest{
		{Email: "", Password: "correcthorse", Role: auth.RoleAdmin},
		{Email: "not-an-email", Password: "correcthorse", Role: auth.RoleAdmin},
		{Email: "a@b.org", Password: "short", Role: auth.RoleAdmin},
		{Email: "a@b.org", Password: "correcthorse", Role: "superhero"},
	}
	for _, req := range cases {
		if _, err := svc.Register(context.Background(), req); err == nil {
			t.Errorf("Register(%+v) should fail", req)
		}
	}
}

func TestService_ResolveEditor(t *testing.T) {
	svc, repo := newTestService()
	u, _ := svc.Register(context.Background(), RegisterRequest{
		Email: "ana@study.org", Password: "correcthorse", Role: auth.RoleInvestigator,
	})

	if got, err := svc.ResolveEditor(context.Background(), "ana@study.org"); err != nil || got != "ana@study.org" {
		t.Errorf("resolve by email = %q, %v", got, err)
	}
	if got, err := svc.ResolveEditor(context.Background(), "1"); err != nil || got != "ana@study.org" {
		t.Errorf("resolve by id = %q, %v", got, err)
	}
	if _, err := svc.ResolveEditor(context.Background(), "ghost@study.org"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_ = repo.SetActive(context.Background(), u.ID, false)
	if _, err := svc.ResolveEditor(context.Background(), "ana@study.org"); !errors.Is(err, ErrInactiveAccount) {
		t.Errorf("expected ErrInactiveAccount, got %v", err)
	}
}
