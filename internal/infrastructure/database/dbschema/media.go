package dbschema

import (
	"time"

	"github.com/lib/pq"

	"github.com/janhq/library-api/internal/domain/media"
)

// Media represents the database schema for catalog items
type Media struct {
	ID          string         `gorm:"primaryKey;size:40"`
	Title       string         `gorm:"size:512;not null"`
	Author      string         `gorm:"size:512;not null;default:''"`
	Type        string         `gorm:"size:16;not null;index:idx_media_type"`
	Description string         `gorm:"type:text;not null;default:''"`
	Category    string         `gorm:"size:128;not null;default:'';index:idx_media_category"`
	Tags        pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	ReleaseYear *int
	ISBN        string `gorm:"column:isbn;size:32;not null;default:''"`
	ExternalID  string `gorm:"size:128;not null;default:''"`
	CoverKey    string `gorm:"size:512;not null;default:''"`
	Available   bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Media) TableName() string {
	return "media"
}

// EtoD converts database schema to domain media (Entity to Domain)
func (m *Media) EtoD() *media.Media {
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &media.Media{
		ID:          m.ID,
		Title:       m.Title,
		Author:      m.Author,
		Type:        media.Type(m.Type),
		Description: m.Description,
		Category:    m.Category,
		Tags:        tags,
		ReleaseYear: m.ReleaseYear,
		ISBN:        m.ISBN,
		ExternalID:  m.ExternalID,
		CoverKey:    m.CoverKey,
		Available:   m.Available,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// MediaDtoE converts domain media to database schema (Domain to Entity)
func MediaDtoE(m *media.Media) *Media {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return &Media{
		ID:          m.ID,
		Title:       m.Title,
		Author:      m.Author,
		Type:        string(m.Type),
		Description: m.Description,
		Category:    m.Category,
		Tags:        pq.StringArray(tags),
		ReleaseYear: m.ReleaseYear,
		ISBN:        m.ISBN,
		ExternalID:  m.ExternalID,
		CoverKey:    m.CoverKey,
		Available:   m.Available,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
