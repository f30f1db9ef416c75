package social

import "github.com/classifieds-api/internal/domain"

// Payload is the ad summary shared with social channels.
type Payload struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	ImageURL    *string  `json:"imageUrl"`
	Hashtags    []string `json:"hashtags"`
	AuthorName  *string  `json:"authorName"`
}

// NewPayload summarises ad. The image is the AI thumbnail, else the first
// uploaded media, else null.
func NewPayload(ad *domain.Ad, author *domain.Author) Payload {
	p := Payload{
		ID:          ad.AdID,
		Title:       ad.Title,
		Description: ad.Description,
		Price:       ad.Price,
		Category:    string(ad.Category),
		Hashtags:    ad.AIHashtags,
	}
	if p.Hashtags == nil {
		p.Hashtags = []string{}
	}
	switch {
	case ad.AIImageURL != nil && *ad.AIImageURL != "":
		img := *ad.AIImageURL
		p.ImageURL = &img
	case len(ad.MediaURLs) > 0:
		img := ad.MediaURLs[0]
		p.ImageURL = &img
	}
	if author != nil {
		name := author.Name
		p.AuthorName = &name
	}
	return p
}
