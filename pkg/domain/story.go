package domain

import (
	"time"

	"github.com/google/uuid"
)

// StoryStatus は物語全体の生成ステータスです。
type StoryStatus string

const (
	StoryStatusPending   StoryStatus = "pending"
	StoryStatusCompleted StoryStatus = "completed"
	StoryStatusError     StoryStatus = "error"
)

// GeneratedStory は最終成果物となるマニフェストです。
// 完了報告後は変更しません。
type GeneratedStory struct {
	StoryID   string      `json:"story_id"`
	Panels    Panels      `json:"panels"`
	Status    StoryStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewStoryID は新しい物語IDを生成します。
func NewStoryID() string {
	return uuid.NewString()
}
