package requests

// CreateMediaRequest is the body of POST /api/media.
type CreateMediaRequest struct {
	Title       string   `json:"title" validate:"required,max=300"`
	Author      string   `json:"author,omitempty" validate:"max=300"`
	Type        string   `json:"type" validate:"required,mediatype"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty" validate:"max=100"`
	Tags        []string `json:"tags,omitempty" validate:"max=20,dive,max=50"`
	ReleaseYear *int     `json:"releaseYear,omitempty" validate:"omitempty,gte=0,lte=3000"`
	ISBN        string   `json:"isbn,omitempty" validate:"max=20"`
	ExternalID  string   `json:"externalId,omitempty" validate:"max=100"`
}

// UpdateMediaRequest is the body of PUT /api/media/:id. Absent fields are left as they are.
type UpdateMediaRequest struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,max=300"`
	Author      *string   `json:"author,omitempty" validate:"omitempty,max=300"`
	Type        *string   `json:"type,omitempty" validate:"omitempty,mediatype"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty" validate:"omitempty,max=100"`
	Tags        *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	ReleaseYear *int      `json:"releaseYear,omitempty" validate:"omitempty,gte=0,lte=3000"`
	ISBN        *string   `json:"isbn,omitempty" validate:"omitempty,max=20"`
	ExternalID  *string   `json:"externalId,omitempty" validate:"omitempty,max=100"`
}

// CreateReviewRequest is the body of POST /api/media/:id/reviews.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}
