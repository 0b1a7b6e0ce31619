// Package services contains the application services of the taskgate client.
// This file defines the session service: demo-credential login, signup and
// session token issuing. Nothing here touches the persistent store; storing
// the resulting session is the controller's job.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskgate/internal/client/models"
	"github.com/dmitrijs2005/taskgate/internal/common"
	"github.com/dmitrijs2005/taskgate/internal/cryptox"
	"github.com/dmitrijs2005/taskgate/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// The single account Login accepts.
const (
	DemoEmail    = "user@example.com"
	DemoPassword = "password"
)

// DemoUser is the identity returned by a successful Login.
var DemoUser = models.User{ID: "1", Name: "John Doe", Email: DemoEmail}

// AuthService defines the session operations used by the controller.
//
// Contract:
//   - Login: accept the demo credentials only, after the configured latency.
//   - Signup: always succeed, after the configured latency, with a fresh user id.
//     Emails are not checked for uniqueness.
//   - IssueToken: mint the opaque token stored alongside the user.
//
// Login and Signup return ctx.Err() if ctx is done before the latency elapses.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) (models.User, error)
	Signup(ctx context.Context, name, email string, password []byte) (models.User, error)
	IssueToken(user models.User) (string, error)
}

// Claims is the payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type authService struct {
	clock  clockwork.Clock
	delay  time.Duration
	secret []byte
	log    logging.Logger

	demoSalt     []byte
	demoVerifier []byte
}

// NewAuthService constructs an AuthService. delay is the simulated round-trip
// latency applied to Login and Signup; secret signs session tokens.
func NewAuthService(clock clockwork.Clock, delay time.Duration, secret []byte, log logging.Logger) AuthService {
	salt := common.GenerateRandByteArray(16)
	return &authService{
		clock:        clock,
		delay:        delay,
		secret:       secret,
		log:          log.With("component", "auth"),
		demoSalt:     salt,
		demoVerifier: cryptox.MakeVerifier(cryptox.DeriveKey([]byte(DemoPassword), salt)),
	}
}

// Login checks email and password against the demo account. Any other pair
// fails with common.ErrorInvalidCredentials.
func (a *authService) Login(ctx context.Context, email string, password []byte) (models.User, error) {
	if err := a.wait(ctx); err != nil {
		return models.User{}, err
	}

	if email != DemoEmail || !cryptox.Verify(password, a.demoSalt, a.demoVerifier) {
		a.log.Info(ctx, "login rejected", "email", email)
		return models.User{}, common.ErrorInvalidCredentials
	}

	a.log.Info(ctx, "login accepted", "user_id", DemoUser.ID)
	return DemoUser, nil
}

// Signup fabricates a new user echoing name and email. The password is
// accepted but not stored anywhere.
func (a *authService) Signup(ctx context.Context, name, email string, password []byte) (models.User, error) {
	if err := a.wait(ctx); err != nil {
		return models.User{}, err
	}

	user := models.User{ID: uuid.NewString(), Name: name, Email: email}
	a.log.Info(ctx, "signup accepted", "user_id", user.ID)
	return user, nil
}

func (a *authService) IssueToken(user models.User) (string, error) {
	now := a.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  user.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Email: user.Email,
	})

	s, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// wait simulates network latency on the injected clock.
func (a *authService) wait(ctx context.Context) error {
	if a.delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-a.clock.After(a.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
