package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of learning events this service emits.
type EventType string

const (
	// Assessment events
	EventAssessmentPassed EventType = "assessment.passed"
	EventAssessmentFailed EventType = "assessment.failed"

	// Progression events
	EventModuleCompleted EventType = "module.completed"
	EventModuleAccessed  EventType = "module.accessed"
	EventCourseCompleted EventType = "course.completed"
)

const (
	eventSource  = "assessment-service"
	eventVersion = "1.0"
)

// LearningEvent is the envelope shared by all emitted events.
type LearningEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewLearningEvent wraps a payload in a fresh envelope.
func NewLearningEvent(eventType EventType, data interface{}) *LearningEvent {
	return &LearningEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// Assessment event payloads

type AssessmentResultEvent struct {
	AttemptID     uint      `json:"attempt_id"`
	TestID        uint      `json:"test_id"`
	TestTitle     string    `json:"test_title"`
	ModuleID      uint      `json:"module_id"`
	StudentID     uint      `json:"student_id"`
	Score         int       `json:"score"`
	Passed        bool      `json:"passed"`
	AttemptNumber int       `json:"attempt_number"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// Progression event payloads

type ModuleCompletedEvent struct {
	StudentID   uint      `json:"student_id"`
	CourseID    uint      `json:"course_id"`
	ModuleID    uint      `json:"module_id"`
	ModuleTitle string    `json:"module_title"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

type ModuleAccessedEvent struct {
	StudentID  uint      `json:"student_id"`
	CourseID   uint      `json:"course_id"`
	ModuleID   uint      `json:"module_id"`
	Position   int       `json:"position"`
	AccessedAt time.Time `json:"accessed_at"`
}

type CourseCompletedEvent struct {
	StudentID    uint      `json:"student_id"`
	CourseID     uint      `json:"course_id"`
	CourseTitle  string    `json:"course_title"`
	ModuleCount  int       `json:"module_count"`
	AverageScore float64   `json:"average_score"`
	CompletedAt  time.Time `json:"completed_at"`
}
