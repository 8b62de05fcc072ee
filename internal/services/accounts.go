package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/yatube/internal/forms"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

var usernameUnsafe = regexp.MustCompile(`[^\w.@+-]`)

// Accounts creates and authenticates users
type Accounts struct {
	users repositories.UserRepository
}

func NewAccounts(users repositories.UserRepository) *Accounts {
	return &Accounts{users: users}
}

// User resolves a session's user id. Used by the session middleware.
func (a *Accounts) User(ctx context.Context, id uint) (*models.User, error) {
	return a.users.GetUserByID(ctx, id)
}

// CreateUser hashes the password and stores a new user
func (a *Accounts) CreateUser(ctx context.Context, username, email, password string, staff bool) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username: username,
		Password: string(hashedPassword),
		IsStaff:  staff,
	}
	if email != "" {
		user.Email = &email
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}
	return user, nil
}

// Signup registers the user of a validated signup form. A taken username
// is reported on the form and yields a nil user.
func (a *Accounts) Signup(ctx context.Context, form *forms.SignupForm) (*models.User, error) {
	taken, err := a.users.UsernameTaken(ctx, form.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		form.UsernameTaken()
		return nil, nil
	}
	user, err := a.CreateUser(ctx, form.Username, form.Email, form.Password, false)
	if errors.Is(err, repositories.ErrDuplicateUser) {
		form.UsernameTaken()
		return nil, nil
	}
	return user, err
}

// Authenticate checks a username and password pair
func (a *Accounts) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := a.users.GetUserByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// FirebaseLogin maps a verified Firebase token onto a local user. Users are
// matched by Firebase UID, then by email, and created when neither exists.
func (a *Accounts) FirebaseLogin(ctx context.Context, token *auth.Token) (*models.User, error) {
	user, err := a.users.GetUserByFirebaseUID(ctx, token.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("load user by firebase uid: %w", err)
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	uid := token.UID

	if email != "" {
		user, err = a.users.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			user.FirebaseUID = &uid
			if err := a.users.UpdateUser(ctx, user); err != nil {
				return nil, fmt.Errorf("link firebase uid: %w", err)
			}
			return user, nil
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, fmt.Errorf("load user by email: %w", err)
		}
	}

	username, err := a.freeUsername(ctx, email, uid)
	if err != nil {
		return nil, err
	}
	user = &models.User{Username: username, FullName: name, FirebaseUID: &uid}
	if email != "" {
		user.Email = &email
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create firebase user: %w", err)
	}
	log.Info().Str("username", username).Msg("Created user from Firebase login")
	return user, nil
}

// freeUsername derives a username from the email's local part, falling
// back to the uid when that is empty or taken
func (a *Accounts) freeUsername(ctx context.Context, email, uid string) (string, error) {
	base, _, _ := strings.Cut(email, "@")
	base = usernameUnsafe.ReplaceAllString(base, "")
	candidates := []string{base, base + "-" + shorten(uid, 8), "fb-" + shorten(uid, 140)}
	for _, candidate := range candidates {
		if candidate == "" || strings.HasPrefix(candidate, "-") {
			continue
		}
		candidate = shorten(candidate, 150)
		taken, err := a.users.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free username for firebase user %s", uid)
}

func shorten(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
