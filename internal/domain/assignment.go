package domain

import "time"

type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentSubmitted AssignmentStatus = "submitted"
	AssignmentGraded    AssignmentStatus = "graded"
)

type Assignment struct {
	ID          uint             `json:"id"`
	UserID      string           `json:"userId"`
	Title       string           `json:"title"`
	Subject     string           `json:"subject"`
	Description string           `json:"description"`
	FileName    string           `json:"fileName,omitempty"`
	FileURL     string           `json:"fileUrl,omitempty"`
	FileType    string           `json:"fileType,omitempty"`
	Status      AssignmentStatus `json:"status"`
	Grade       string           `json:"grade,omitempty"`
	DueDate     *time.Time       `json:"dueDate"`
	SubmittedAt *time.Time       `json:"submittedAt"`
	CreatedAt   time.Time        `json:"createdAt"`
}

type AssignmentStats struct {
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
	Graded    int64 `json:"graded"`
}
