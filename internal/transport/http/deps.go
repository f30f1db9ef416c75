package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/classifieds-api/internal/application/ai"
	"github.com/classifieds-api/internal/domain"
	"github.com/classifieds-api/internal/infrastructure/google"
	jwtinfra "github.com/classifieds-api/internal/infrastructure/jwt"
	"go.uber.org/zap"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetMany(ctx context.Context, userIDs []string) (map[string]*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, userID string, at time.Time) error
	LinkGoogle(ctx context.Context, userID, sub string, image *string) error
}

// AdRepository is the minimal interface the router requires from an ad store.
type AdRepository interface {
	Put(ctx context.Context, ad *domain.Ad) error
	Get(ctx context.Context, adID string) (*domain.Ad, error)
	Delete(ctx context.Context, adID string) error
	// ListFeed pages the feed-index GSI newest first.
	ListFeed(ctx context.Context, limit int32, cursor string) ([]domain.Ad, string, error)
}

// VerificationRepository is the minimal interface the router requires from a verification token store.
type VerificationRepository interface {
	Put(ctx context.Context, v *domain.VerificationToken) error
	Consume(ctx context.Context, token string) (*domain.VerificationToken, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// MediaStore is the minimal interface the router requires from a media backend.
type MediaStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, publicPath string) error
	StoredName(publicPath string) (string, error)
}

// Notifier fans a created ad out to the social channels.
type Notifier interface {
	Share(ad *domain.Ad, author *domain.Author)
}

// Mailer sends HTML email.
type Mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

// GoogleVerifier checks Google ID tokens.
type GoogleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         UserRepository
	AdRepo           AdRepository
	VerificationRepo VerificationRepository
	Media            MediaStore
	// Uploads serves stored media; nil when media lives in S3.
	Uploads     http.FileSystem
	Notifier    Notifier
	Content     *ai.ContentGenerator
	Image       *ai.ImageGenerator
	Mailer      Mailer
	Google      GoogleVerifier
	JWTProvider *jwtinfra.Provider
	Log         *zap.Logger
}
