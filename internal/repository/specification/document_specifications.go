package specification

import (
	"gorm.io/gorm"
)

// ByStatus filters documents by lifecycle status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByRequesterId filters audit records by the requester identity.
type ByRequesterId struct {
	RequesterId string
}

func (s ByRequesterId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("requester_id = ?", s.RequesterId)
}

// ActiveVersionOnly keeps only active document versions.
type ActiveVersionOnly struct{}

func (s ActiveVersionOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = true")
}
