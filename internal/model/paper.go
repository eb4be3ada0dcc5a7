package model

import "time"

// Paper statuses.
const (
	PaperStatusPublished = "published"
	PaperStatusDraft     = "draft"
)

// Section is one titled part of an AI generated paper breakdown.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// WhitePaper is a catalog entry. Only published papers are visible to readers.
type WhitePaper struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Author          string    `json:"author"`
	CategoryID      *int64    `json:"category_id"`
	PDFURL          string    `json:"pdf_url"`
	PresentationURL *string   `json:"presentation_url,omitempty"`
	AudioURL        *string   `json:"audio_url,omitempty"`
	AISummary       string    `json:"ai_summary"`
	AISections      []Section `json:"ai_sections"`
	Status          string    `json:"status"`
	Views           int64     `json:"views"`
	UploadedBy      *string   `json:"uploaded_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PaperUpdate carries a partial update; nil fields are left untouched.
type PaperUpdate struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Author          *string    `json:"author"`
	CategoryID      *int64     `json:"category_id"`
	Status          *string    `json:"status"`
	AISummary       *string    `json:"ai_summary"`
	AISections      *[]Section `json:"ai_sections"`
	PresentationURL *string    `json:"presentation_url"`
	AudioURL        *string    `json:"audio_url"`
}

// Empty reports whether the update changes nothing.
func (u PaperUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Author == nil && u.CategoryID == nil &&
		u.Status == nil && u.AISummary == nil && u.AISections == nil &&
		u.PresentationURL == nil && u.AudioURL == nil
}
