package domain

import (
	"slices"
	"strings"
	"time"
)

type Category string

const (
	CategoryElectronics Category = "ELECTRONICS"
	CategoryVehicles    Category = "VEHICLES"
	CategoryProperty    Category = "PROPERTY"
	CategoryJobs        Category = "JOBS"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryElectronics, CategoryVehicles, CategoryProperty, CategoryJobs}

// SubCategories is the fixed category -> subcategory table.
var SubCategories = map[Category][]string{
	CategoryElectronics: {"PHONES", "LAPTOPS", "CAMERAS"},
	CategoryVehicles:    {"CARS", "MOTORCYCLES"},
	CategoryProperty:    {"HOUSE_FOR_RENT", "HOUSE_FOR_SALE"},
	CategoryJobs:        {"FULL_TIME", "PART_TIME"},
}

// ValidSubCategory reports whether sub belongs to category.
func ValidSubCategory(category Category, sub string) bool {
	return slices.Contains(SubCategories[category], sub)
}

const (
	// PlaceholderImageName is the shared fallback thumbnail. Every ad that
	// references it points at the same stored file.
	PlaceholderImageName = "ai-placeholder-iphone.jpg"
	// GeneratedImagePrefix starts the stored name of every model-generated thumbnail.
	GeneratedImagePrefix = "ai-real-"
)

// IsAIImageName reports whether a stored name was produced by the AI image generator.
func IsAIImageName(name string) bool {
	return name == PlaceholderImageName || strings.HasPrefix(name, GeneratedImagePrefix)
}

type Ad struct {
	AdID        string    `json:"id" dynamodbav:"ad_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"`
	Price       float64   `json:"price" dynamodbav:"price"`
	Category    Category  `json:"category" dynamodbav:"category"`
	SubCategory string    `json:"subCategory" dynamodbav:"sub_category"`
	MediaURLs   []string  `json:"mediaUrls" dynamodbav:"media_urls"`
	AIImageURL  *string   `json:"aiImageUrl" dynamodbav:"ai_image_url"`
	AIHashtags  []string  `json:"aiHashtags" dynamodbav:"ai_hashtags"`
	AuthorID    string    `json:"authorId" dynamodbav:"author_id"`
	Feed        string    `json:"-" dynamodbav:"feed"` // constant partition of the feed-index GSI
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
	Author      *Author   `json:"author,omitempty" dynamodbav:"-"`
}

// Files returns every stored path owned by the ad, media first.
func (a *Ad) Files() []string {
	files := append([]string{}, a.MediaURLs...)
	if a.AIImageURL != nil && *a.AIImageURL != "" {
		files = append(files, *a.AIImageURL)
	}
	return files
}

// Author is the public projection of a User embedded in ad responses.
type Author struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Image *string `json:"image"`
}

// CreateAdRequest carries the multipart text fields of an ad submission.
// Price stays a string until validation so a non-numeric value is reported, not dropped.
type CreateAdRequest struct {
	Title       string `validate:"min=3"`
	Description string `validate:"min=10"`
	Price       string `validate:"price"`
	Category    string `validate:"oneof=ELECTRONICS VEHICLES PROPERTY JOBS"`
	SubCategory string
	Hashtags    string
	AIImageURL  string
}
