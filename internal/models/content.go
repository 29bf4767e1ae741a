package models

import "time"

// Report statuses
const (
	ReportOpen     = "open"
	ReportResolved = "resolved"
)

type Report struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	Category  string    `bson:"category,omitempty" json:"category,omitempty"`
	Status    string    `bson:"status" json:"status"`
	AuthorID  string    `bson:"authorId" json:"author_id"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
}

// Department is an SRC department (stored in src_departments).
type Department struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	IsActive    bool      `bson:"isActive" json:"is_active"`
	CreatedAt   time.Time `bson:"createdAt" json:"created_at"`
}

type NewsArticle struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Summary   string    `bson:"summary,omitempty" json:"summary,omitempty"`
	Content   string    `bson:"content" json:"content"`
	AuthorID  string    `bson:"authorId,omitempty" json:"author_id,omitempty"`
	ImageURL  string    `bson:"imageUrl,omitempty" json:"image_url,omitempty"`
	Published bool      `bson:"published" json:"published"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
}
