package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/datalab/datalab/internal/platform/auth"
)

// ErrInvalidCredentials is returned on a failed login. The message never
// distinguishes a missing account from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInactiveAccount is returned when a deactivated account tries to act.
var ErrInactiveAccount = errors.New("account is deactivated")

var validRoles = map[string]bool{
	auth.RoleAdmin:        true,
	auth.RoleInvestigator: true,
	auth.RoleRecruiter:    true,
}

// Service implements account management and login.
type Service struct {
	repo   Repository
	issuer *auth.Issuer
	log    zerolog.Logger
}

func NewService(repo Repository, issuer *auth.Issuer, log zerolog.Logger) *Service {
	return &Service{repo: repo, issuer: issuer, log: log}
}

// RegisterRequest is the wire shape for creating an account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates an active account with a hashed password.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", req.Email)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if !validRoles[req.Role] {
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info().Str("email", u.Email).Str("role", u.Role).Msg("user registered")
	return u, nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !u.Active {
		return "", nil, ErrInactiveAccount
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// Get returns an account by id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// SetActive activates or deactivates an account.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

// ResolveEditor resolves an editor key (account id or email) to the display
// identity used in audit records. Inactive accounts do not resolve.
func (s *Service) ResolveEditor(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	var (
		u   *User
		err error
	)
	if id, perr := strconv.ParseInt(key, 10, 64); perr == nil {
		u, err = s.repo.GetByID(ctx, id)
	} else {
		u, err = s.repo.GetByEmail(ctx, key)
	}
	if err != nil {
		return "", err
	}
	if !u.Active {
		return "", ErrInactiveAccount
	}
	return u.Email, nil
}
