package domain

import "time"

// Comment — неизменяемая аннотация к заявке. Добавляется либо как побочный
// эффект перехода (approve/reject/return), либо отдельной операцией в любом
// статусе. Удаление только мягкое.
type Comment struct {
	ID              string    `json:"id"`
	TravelRequestID string    `json:"travel_request_id"`
	UserID          string    `json:"user_id"`
	CommentText     string    `json:"comment_text"`
	CreatedDate     time.Time `json:"created_date"`
	IsDeleted       bool      `json:"is_deleted"`

	// AuthorName заполняется только на чтении (join с users), в базе не хранится.
	AuthorName string `json:"author_name,omitempty"`
}
