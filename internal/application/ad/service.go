package ad

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/classifieds-api/internal/domain"
	"github.com/classifieds-api/internal/logger"
	"github.com/classifieds-api/internal/pkg/filename"
	"github.com/classifieds-api/internal/pkg/id"
	"github.com/classifieds-api/internal/pkg/validate"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// Upload is one uploaded file part. Open is called at most once, in upload order.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

type Service interface {
	Create(ctx context.Context, authorID string, req domain.CreateAdRequest, uploads []Upload) (*domain.Ad, error)
	Delete(ctx context.Context, adID, requesterID string) error
	List(ctx context.Context, limit int, cursor string) ([]domain.Ad, string, error)
	Get(ctx context.Context, adID string) (*domain.Ad, error)
}

type adStore interface {
	Put(ctx context.Context, ad *domain.Ad) error
	Get(ctx context.Context, adID string) (*domain.Ad, error)
	Delete(ctx context.Context, adID string) error
	ListFeed(ctx context.Context, limit int32, cursor string) ([]domain.Ad, string, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetMany(ctx context.Context, userIDs []string) (map[string]*domain.User, error)
}

type mediaStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, publicPath string) error
	StoredName(publicPath string) (string, error)
}

type notifier interface {
	Share(ad *domain.Ad, author *domain.Author)
}

type service struct {
	ads      adStore
	users    userStore
	media    mediaStore
	notifier notifier
	log      *zap.Logger
	now      func() time.Time
}

type ServiceDeps struct {
	AdRepo   adStore
	UserRepo userStore
	Media    mediaStore
	Notifier notifier
	Log      *zap.Logger
	Now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		ads:      deps.AdRepo,
		users:    deps.UserRepo,
		media:    deps.Media,
		notifier: deps.Notifier,
		log:      logger.OrNop(deps.Log),
		now:      deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create validates the submission, stores its media, persists the ad and
// hands it to the notifier. The notifier never influences the result.
func (s *service) Create(ctx context.Context, authorID string, req domain.CreateAdRequest, uploads []Upload) (*domain.Ad, error) {
	price, err := validateRequest(req)
	if err != nil {
		return nil, err
	}
	aiImage := strings.TrimSpace(req.AIImageURL)
	if aiImage != "" && !s.isAIImage(aiImage) {
		return nil, fmt.Errorf("Invalid AI image URL: %w", domain.ErrValidation)
	}

	author, err := s.users.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Not authenticated: %w", domain.ErrUnauthorized)
		}
		s.log.Error("load ad author", zap.String("user_id", authorID), zap.Error(err))
		return nil, fmt.Errorf("Failed to create ad: %w", domain.ErrPersistence)
	}

	mediaURLs, err := s.saveUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}
	if len(mediaURLs) == 0 && aiImage == "" {
		return nil, fmt.Errorf("You must upload at least one image or generate an AI thumbnail.: %w", domain.ErrValidation)
	}

	ad := &domain.Ad{
		AdID:        id.New(),
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		Category:    domain.Category(req.Category),
		SubCategory: req.SubCategory,
		MediaURLs:   mediaURLs,
		AIHashtags:  strings.Fields(req.Hashtags),
		AuthorID:    authorID,
		CreatedAt:   s.now().UTC().Truncate(time.Second),
	}
	if ad.AIHashtags == nil {
		ad.AIHashtags = []string{}
	}
	if aiImage != "" {
		ad.AIImageURL = &aiImage
	}
	if err := s.ads.Put(ctx, ad); err != nil {
		// Media already written stays behind as orphans.
		s.log.Error("persist ad", zap.String("ad_id", ad.AdID), zap.Strings("orphaned_media", mediaURLs), zap.Error(err))
		return nil, fmt.Errorf("Failed to create ad: %w", domain.ErrPersistence)
	}

	ad.Author = author.AsAuthor()
	if s.notifier != nil {
		s.notifier.Share(ad, ad.Author)
	}
	return ad, nil
}

// isAIImage accepts only thumbnails the AI image generator wrote to this store.
func (s *service) isAIImage(p string) bool {
	name, err := s.media.StoredName(p)
	return err == nil && domain.IsAIImageName(name)
}

// validateRequest reports the first failing field in declaration order, then
// the category/subcategory pairing.
func validateRequest(req domain.CreateAdRequest) (float64, error) {
	if err := validate.First(req); err != nil {
		return 0, fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation)
	}
	price, _ := validate.ParsePrice(req.Price)
	if !domain.ValidSubCategory(domain.Category(req.Category), req.SubCategory) {
		return 0, fmt.Errorf("Invalid sub-category for selected category: %w", domain.ErrValidation)
	}
	return price, nil
}

// saveUploads persists non-empty parts in order as <unixMillis>-<index>-<name>.
func (s *service) saveUploads(ctx context.Context, uploads []Upload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, up := range uploads {
		if up.Size <= 0 || up.Open == nil {
			continue
		}
		name := filename.Sanitize(up.Filename)
		if name == "" {
			name = "upload"
		}
		name = fmt.Sprintf("%d-%d-%s", s.now().UnixMilli(), len(urls), name)

		p, err := s.saveOne(ctx, name, up)
		if err != nil {
			s.log.Error("save ad media", zap.String("name", name), zap.Strings("orphaned_media", urls), zap.Error(err))
			return nil, fmt.Errorf("Failed to upload media: %w", domain.ErrPersistence)
		}
		urls = append(urls, p)
	}
	return urls, nil
}

func (s *service) saveOne(ctx context.Context, name string, up Upload) (string, error) {
	rc, err := up.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return s.media.Save(ctx, name, rc)
}

// Delete removes the ad's files best-effort, then the record.
func (s *service) Delete(ctx context.Context, adID, requesterID string) error {
	ad, err := s.ads.Get(ctx, adID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("Ad not found: %w", domain.ErrNotFound)
		}
		s.log.Error("load ad for deletion", zap.String("ad_id", adID), zap.Error(err))
		return fmt.Errorf("Failed to delete ad: %w", domain.ErrPersistence)
	}
	if ad.AuthorID != requesterID {
		return fmt.Errorf("Not authorized to delete this ad: %w", domain.ErrForbidden)
	}

	for _, f := range ad.Files() {
		// The placeholder is shared by every fallback ad.
		if name, err := s.media.StoredName(f); err == nil && name == domain.PlaceholderImageName {
			continue
		}
		if err := s.media.Delete(ctx, f); err != nil {
			s.log.Warn("could not delete ad file", zap.String("ad_id", adID), zap.String("path", f), zap.Error(err))
		}
	}

	if err := s.ads.Delete(ctx, adID); err != nil {
		s.log.Error("delete ad record", zap.String("ad_id", adID), zap.Error(err))
		return fmt.Errorf("Failed to delete ad: %w", domain.ErrPersistence)
	}
	return nil
}

// List returns a newest-first page of ads with their authors.
func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.Ad, string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	ads, next, err := s.ads.ListFeed(ctx, int32(limit), cursor)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, "", fmt.Errorf("Invalid cursor: %w", domain.ErrValidation)
		}
		s.log.Error("list ads", zap.Error(err))
		return nil, "", fmt.Errorf("Failed to load ads: %w", domain.ErrPersistence)
	}

	ids := make([]string, 0, len(ads))
	for _, a := range ads {
		ids = append(ids, a.AuthorID)
	}
	authors, err := s.users.GetMany(ctx, ids)
	if err != nil {
		s.log.Warn("load ad authors", zap.Error(err))
		authors = nil
	}
	for i := range ads {
		if u, ok := authors[ads[i].AuthorID]; ok {
			ads[i].Author = u.AsAuthor()
		}
	}
	return ads, next, nil
}

func (s *service) Get(ctx context.Context, adID string) (*domain.Ad, error) {
	ad, err := s.ads.Get(ctx, adID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Ad not found: %w", domain.ErrNotFound)
		}
		s.log.Error("get ad", zap.String("ad_id", adID), zap.Error(err))
		return nil, fmt.Errorf("Failed to load ad: %w", domain.ErrPersistence)
	}
	if u, err := s.users.Get(ctx, ad.AuthorID); err == nil {
		ad.Author = u.AsAuthor()
	} else if !errors.Is(err, domain.ErrNotFound) {
		s.log.Warn("load ad author", zap.String("ad_id", adID), zap.Error(err))
	}
	return ad, nil
}
