package models

import "gorm.io/gorm"

// Course is a training course. Content authoring lives in the external CMS;
// the workflow only needs the certification policy fields.
type Course struct {
	gorm.Model
	Title                   string `json:"title" gorm:"size:200;not null"`
	Description             string `json:"description"`
	Category                string `json:"category" gorm:"size:50"` // industrial_safety, fire_safety, ...
	Status                  string `json:"status" gorm:"size:20;default:'published'"`
	DurationHours           int    `json:"duration_hours" gorm:"default:0"`
	RequiresCommitteeReview bool   `json:"requires_committee_review" gorm:"default:false"`
	ValidityMonths          int    `json:"validity_months" gorm:"default:0"` // 0 = certificate never expires
	IsDeleted               bool   `gorm:"default:false"`
}

// CourseTest is the final test for a course: passing threshold and the
// default attempt budget before an extra-attempt approval is needed.
type CourseTest struct {
	gorm.Model
	CourseID     uint   `json:"course_id" gorm:"index;not null"`
	Title        string `json:"title" gorm:"size:200"`
	PassingScore int    `json:"passing_score" gorm:"default:80"` // percent
	MaxAttempts  int    `json:"max_attempts" gorm:"default:3"`
	TimeLimit    int    `json:"time_limit" gorm:"default:0"` // minutes, 0 = untimed
	IsActive     bool   `json:"is_active" gorm:"default:true"`
	IsDeleted    bool   `gorm:"default:false"`
}
