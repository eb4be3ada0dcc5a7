package model

import "time"

// Submission statuses.
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// Submission is a user-uploaded paper waiting for admin review.
type Submission struct {
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
	SubmittedBy     *string   `json:"submitted_by"`
	ReviewedBy      *string   `json:"reviewed_by,omitempty"`
	ReviewNotes     *string   `json:"review_notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
