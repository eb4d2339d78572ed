package models

import (
	"time"

	"gorm.io/gorm"
)

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

type Course struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string      `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Status      CourseStatus `json:"status" gorm:"default:draft;index" validate:"omitempty,oneof=draft published archived"`
	CreatedBy   uint         `json:"created_by" gorm:"not null;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Modules []CourseModule `json:"modules" gorm:"foreignKey:CourseID"`
}

// CourseModule is one unit of course content ("topic" or "chapter" in the
// web app). Order defines the gating chain; it is unique within a course.
type CourseModule struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	CourseID    uint    `json:"course_id" gorm:"not null;uniqueIndex:idx_course_module_order,priority:1;index"`
	Title       string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text"`
	Order       int     `json:"order" gorm:"column:order;not null;uniqueIndex:idx_course_module_order,priority:2" validate:"min=0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Course Course      `json:"-" gorm:"foreignKey:CourseID"`
	Test   *ModuleTest `json:"test,omitempty" gorm:"foreignKey:ModuleID"`
}

func (Course) TableName() string {
	return "courses"
}

func (CourseModule) TableName() string {
	return "course_modules"
}
