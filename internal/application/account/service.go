package account

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/classifieds-api/internal/domain"
	"github.com/classifieds-api/internal/infrastructure/google"
	"github.com/classifieds-api/internal/logger"
	"github.com/classifieds-api/internal/pkg/id"
	pkgtoken "github.com/classifieds-api/internal/pkg/token"
	"github.com/classifieds-api/internal/pkg/validate"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = 12
	verificationTTL   = time.Hour
	registeredMessage = "Account created. Please check your email to verify."
)

// RegisterResult is the public view of a freshly registered account.
type RegisterResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Session is a signed bearer token and the user it was issued to.
type Session struct {
	Bearer string
	User   *domain.User
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*RegisterResult, error)
	VerifyEmail(ctx context.Context, token string) error
	CheckUser(ctx context.Context, req domain.CredentialsRequest) error
	Login(ctx context.Context, req domain.CredentialsRequest) (*Session, error)
	GoogleSignIn(ctx context.Context, idToken string) (*Session, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, userID string, at time.Time) error
	LinkGoogle(ctx context.Context, userID, sub string, image *string) error
}

type tokenStore interface {
	Put(ctx context.Context, v *domain.VerificationToken) error
	// Consume atomically removes and returns a token; domain.ErrNotFound when absent.
	Consume(ctx context.Context, token string) (*domain.VerificationToken, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

type jwtSigner interface {
	Sign(userID, name, email string) (string, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type service struct {
	users      userStore
	tokens     tokenStore
	mailer     mailer
	jwt        jwtSigner
	google     googleVerifier
	appBaseURL string
	log        *zap.Logger
	now        func() time.Time
}

type ServiceDeps struct {
	UserRepo   userStore
	TokenRepo  tokenStore
	Mailer     mailer
	JWT        jwtSigner
	Google     googleVerifier
	AppBaseURL string
	Log        *zap.Logger
	Now        func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		users:      deps.UserRepo,
		tokens:     deps.TokenRepo,
		mailer:     deps.Mailer,
		jwt:        deps.JWT,
		google:     deps.Google,
		appBaseURL: strings.TrimRight(deps.AppBaseURL, "/"),
		log:        logger.OrNop(deps.Log),
		now:        deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*RegisterResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("Missing required fields: %w", domain.ErrValidation)
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("Password must be at least 6 characters: %w", domain.ErrValidation)
	}
	if err := validate.First(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation)
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("User with this email already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		s.log.Error("lookup user by email", zap.Error(err))
		return nil, fmt.Errorf("Internal Server Error: %w", domain.ErrPersistence)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		AuthProvider: domain.AuthProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("User with this email already exists: %w", domain.ErrConflict)
		}
		s.log.Error("create user", zap.Error(err))
		return nil, fmt.Errorf("Internal Server Error: %w", domain.ErrPersistence)
	}

	if err := s.sendVerification(ctx, u); err != nil {
		s.log.Error("verification email not sent", zap.String("user_id", u.UserID), zap.Error(err))
	}

	return &RegisterResult{ID: u.UserID, Name: u.Name, Email: u.Email, Message: registeredMessage}, nil
}

// sendVerification replaces any previous token of u and mails the new link.
func (s *service) sendVerification(ctx context.Context, u *domain.User) error {
	tok, err := pkgtoken.NewVerificationToken()
	if err != nil {
		return err
	}
	if err := s.tokens.DeleteByUser(ctx, u.UserID); err != nil {
		return fmt.Errorf("delete previous tokens: %w", err)
	}
	if err := s.tokens.Put(ctx, &domain.VerificationToken{
		Token:   tok,
		UserID:  u.UserID,
		Expires: s.now().Add(verificationTTL).Unix(),
	}); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	link := fmt.Sprintf("%s/verify-email?token=%s", s.appBaseURL, url.QueryEscape(tok))
	body := fmt.Sprintf(`<h1>Welcome!</h1>
<p>Please click the link below to verify your email address:</p>
<a href="%s">Verify Email</a>`, html.EscapeString(link))
	if err := s.mailer.SendEmail(u.Email, "Verify your email address", body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (s *service) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("Missing token: %w", domain.ErrValidation)
	}
	v, err := s.tokens.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("Invalid or expired token: %w", domain.ErrValidation)
		}
		s.log.Error("consume verification token", zap.Error(err))
		return fmt.Errorf("Internal Server Error: %w", domain.ErrPersistence)
	}
	now := s.now()
	if time.Unix(v.Expires, 0).Before(now) {
		return fmt.Errorf("Invalid or expired token: %w", domain.ErrValidation)
	}

	if err := s.users.MarkEmailVerified(ctx, v.UserID, now); err != nil {
		s.log.Error("mark email verified", zap.String("user_id", v.UserID), zap.Error(err))
		// Put the token back so the link still works on retry.
		if perr := s.tokens.Put(ctx, v); perr != nil {
			s.log.Error("restore verification token", zap.String("user_id", v.UserID), zap.Error(perr))
		}
		return fmt.Errorf("Internal Server Error: %w", domain.ErrPersistence)
	}
	return nil
}

func (s *service) CheckUser(ctx context.Context, req domain.CredentialsRequest) error {
	_, err := s.checkCredentials(ctx, req)
	return err
}

func (s *service) Login(ctx context.Context, req domain.CredentialsRequest) (*Session, error) {
	u, err := s.checkCredentials(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// checkCredentials runs the login pre-checks in order: presence, existence,
// provider, verification, password.
func (s *service) checkCredentials(ctx context.Context, req domain.CredentialsRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("Please enter your email and password.: %w", domain.ErrValidation)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("No user found! You need to Sign Up!: %w", domain.ErrNotFound)
		}
		s.log.Error("lookup user by email", zap.Error(err))
		return nil, fmt.Errorf("An unexpected error occurred.: %w", domain.ErrPersistence)
	}
	if u.PasswordHash == "" {
		return nil, fmt.Errorf("This account was created with Google. Sign in with Google.: %w", domain.ErrValidation)
	}
	if u.EmailVerified == nil {
		return nil, fmt.Errorf("Email not verified! Check your inbox.: %w", domain.ErrForbidden)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, fmt.Errorf("Invalid password! Try again.: %w", domain.ErrUnauthorized)
	}
	return u, nil
}

func (s *service) GoogleSignIn(ctx context.Context, idToken string) (*Session, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, fmt.Errorf("Missing Google ID token: %w", domain.ErrValidation)
	}
	p, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("Invalid Google credentials: %w", domain.ErrUnauthorized)
	}
	if p.Email == "" || !p.EmailVerified {
		return nil, fmt.Errorf("Google account email is not verified: %w", domain.ErrUnauthorized)
	}
	email := strings.ToLower(p.Email)
	var image *string
	if p.Picture != "" {
		image = &p.Picture
	}

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.linkGoogle(ctx, u, p.Sub, image); err != nil {
			return nil, err
		}
	case errors.Is(err, domain.ErrNotFound):
		now := s.now().UTC()
		name := p.Name
		if name == "" {
			name = email
		}
		u = &domain.User{
			UserID:        id.New(),
			Name:          name,
			Email:         email,
			EmailVerified: &now,
			Image:         image,
			AuthProvider:  domain.AuthProviderGoogle,
			GoogleSub:     p.Sub,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.users.Create(ctx, u); err != nil {
			s.log.Error("create google user", zap.Error(err))
			return nil, fmt.Errorf("Internal Server Error: %w", domain.ErrPersistence)
		}
	default:
		s.log.Error("lookup user by email", zap.Error(err))
		return nil, fmt.Errorf("Internal Server Error: %w", domain.ErrPersistence)
	}
	return s.issue(u)
}

// linkGoogle attaches the Google identity to an existing account. Google has
// verified the address, so an unverified account becomes verified.
func (s *service) linkGoogle(ctx context.Context, u *domain.User, sub string, image *string) error {
	if u.GoogleSub != "" && u.GoogleSub != sub {
		return fmt.Errorf("This email is linked to a different Google account: %w", domain.ErrConflict)
	}
	if u.GoogleSub == "" {
		if err := s.users.LinkGoogle(ctx, u.UserID, sub, image); err != nil {
			s.log.Error("link google account", zap.String("user_id", u.UserID), zap.Error(err))
			return fmt.Errorf("Internal Server Error: %w", domain.ErrPersistence)
		}
		u.GoogleSub = sub
		if u.Image == nil {
			u.Image = image
		}
	}
	if u.EmailVerified == nil {
		now := s.now().UTC()
		if err := s.users.MarkEmailVerified(ctx, u.UserID, now); err != nil {
			s.log.Error("mark email verified", zap.String("user_id", u.UserID), zap.Error(err))
			return fmt.Errorf("Internal Server Error: %w", domain.ErrPersistence)
		}
		u.EmailVerified = &now
	}
	return nil
}

func (s *service) issue(u *domain.User) (*Session, error) {
	bearer, err := s.jwt.Sign(u.UserID, u.Name, u.Email)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Bearer: bearer, User: u}, nil
}
