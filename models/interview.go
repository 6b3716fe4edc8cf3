package models

import (
	"time"

	"gorm.io/gorm"
)

// Interview statuses.
const (
	InterviewStatusAvailable  = "available"
	InterviewStatusInProgress = "in_progress"
	InterviewStatusCompleted  = "completed"
)

// Feedback statuses.
const (
	FeedbackStatusPending  = "pending"
	FeedbackStatusComplete = "complete"
)

// Interview is one prepared interview: the role it targets and the ordered
// question list a session walks through.
type Interview struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Role      string         `gorm:"size:255;not null" json:"role"`
	Type      string         `gorm:"size:100;not null" json:"type"` // technical, behavioral, system-design, mixed
	Level     string         `gorm:"size:50" json:"level,omitempty"`
	Techstack StringSlice    `gorm:"type:jsonb" json:"techstack"`
	Questions StringSlice    `gorm:"type:jsonb;not null" json:"questions"`
	Status    string         `gorm:"not null;default:'available';check:status IN ('available', 'in_progress', 'completed')" json:"status"`
	Finalized bool           `gorm:"default:true" json:"finalized"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Feedback *Feedback `gorm:"foreignKey:InterviewID" json:"feedback,omitempty"`
}

// Feedback is the scored assessment of one finished interview session.
// TotalScore is the rounded mean of the category scores. The transcript is
// retained here only; the live session's raw message sequence is discarded
// once synthesis completes.
type Feedback struct {
	ID                  string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InterviewID         string         `gorm:"type:uuid;not null;index" json:"interview_id"`
	UserID              string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Transcript          Transcript     `gorm:"type:jsonb" json:"transcript"`
	TotalScore          int            `json:"total_score"`
	CategoryScores      CategoryScores `gorm:"type:jsonb" json:"category_scores"`
	Strengths           StringSlice    `gorm:"type:jsonb" json:"strengths"`
	AreasForImprovement StringSlice    `gorm:"type:jsonb" json:"areas_for_improvement"`
	FinalAssessment     string         `gorm:"type:text" json:"final_assessment"`
	Status              string         `gorm:"not null;default:'pending';check:status IN ('pending', 'complete')" json:"status"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Interview Interview `gorm:"foreignKey:InterviewID" json:"interview,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
