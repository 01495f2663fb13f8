package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Assignment struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      string `gorm:"type:varchar(36);not null;index"`
	User        User   `gorm:"foreignKey:UserID"`
	Title       string `gorm:"not null"`
	Subject     string `gorm:"not null"`
	Description string
	FileName    string
	FileURL     string
	FileType    string
	Status      string `gorm:"not null;default:pending"` // "pending", "submitted" or "graded"
	Grade       string
	DueDate     *time.Time
	SubmittedAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
}

type AssignmentDAO struct {
	db *gorm.DB
}

func NewAssignmentDAO(db *gorm.DB) *AssignmentDAO {
	return &AssignmentDAO{
		db: db,
	}
}

func (d *AssignmentDAO) Insert(ctx context.Context, assignment Assignment) (Assignment, error) {
	result := d.db.WithContext(ctx).Omit("User").Create(&assignment)
	if result.Error != nil {
		return Assignment{}, result.Error
	}

	return assignment, nil
}

func (d *AssignmentDAO) FindByUserID(ctx context.Context, userID string) ([]Assignment, error) {
	var assignments []Assignment

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&assignments)
	if result.Error != nil {
		return nil, result.Error
	}

	return assignments, nil
}

type StatusCount struct {
	Status string
	Count  int64
}

func (d *AssignmentDAO) CountByStatus(ctx context.Context, userID string) ([]StatusCount, error) {
	var counts []StatusCount

	result := d.db.WithContext(ctx).
		Model(&Assignment{}).
		Select("status, count(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&counts)
	if result.Error != nil {
		return nil, result.Error
	}

	return counts, nil
}
