// Package domain – care-content entities.
//
// Clinic locations visitors can be referred to, the referrals themselves,
// and per-method interaction records used by the content team to see which
// family planning methods visitors engage with.
package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ClinicLocation is a physical clinic a visitor can be referred to,
// addressable by state and local government area.
type ClinicLocation struct {
	ID        string         `json:"id"      gorm:"type:char(36);primaryKey"`
	Name      string         `json:"name"    gorm:"type:varchar(255);not null"`
	State     string         `json:"state"   gorm:"type:varchar(64);not null;index:idx_clinic_state_lga,priority:1"`
	LGA       string         `json:"lga"     gorm:"type:varchar(64);not null;index:idx_clinic_state_lga,priority:2;column:lga"`
	Address   string         `json:"address" gorm:"type:text;not null"`
	Phone     *string        `json:"phone,omitempty" gorm:"type:varchar(32)"`
	Services  datatypes.JSON `json:"services,omitempty" gorm:"type:json"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"       gorm:"index"`
}

// TableName returns the database table name for ClinicLocation.
func (ClinicLocation) TableName() string { return "clinic_locations" }

// Referral links a session to a clinic it was pointed at. Referrals require
// an existing clinic; they are created by the flow's "find a clinic" branch
// or by an agent during a handoff.
type Referral struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	SessionID string         `json:"session_id" gorm:"type:varchar(64);not null;index"`
	ClinicID  string         `json:"clinic_id"  gorm:"type:char(36);not null;index"`
	Method    *string        `json:"method,omitempty" gorm:"type:varchar(64)"`
	Status    string         `json:"status"     gorm:"type:varchar(16);not null;default:'SENT';check:status IN ('SENT','VISITED','EXPIRED')"`
	Notes     *string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`

	Clinic ClinicLocation `json:"-" gorm:"foreignKey:ClinicID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Referral.
func (Referral) TableName() string { return "referrals" }

// FpmInteraction records a session's engagement with one family planning
// method (viewed details, raised a concern, picked it). One row per
// (session, method) pair, updated in place as the interaction deepens.
type FpmInteraction struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	SessionID string         `json:"session_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_fpm_session_method,priority:1"`
	Method    string         `json:"method"     gorm:"type:varchar(64);not null;uniqueIndex:ux_fpm_session_method,priority:2"`
	Action    string         `json:"action"     gorm:"type:varchar(32);not null;check:action IN ('viewed','concern','selected','switched','stopped')"`
	Detail    *string        `json:"detail,omitempty" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for FpmInteraction.
func (FpmInteraction) TableName() string { return "fpm_interactions" }
