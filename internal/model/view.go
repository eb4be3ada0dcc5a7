package model

import "time"

// PaperView is one logged read of a paper.
type PaperView struct {
	ID        int64     `json:"id"`
	PaperID   int64     `json:"paper_id"`
	UserID    *string   `json:"user_id,omitempty"`
	IPAddress *string   `json:"ip_address,omitempty"`
	ViewedAt  time.Time `json:"viewed_at"`
}
