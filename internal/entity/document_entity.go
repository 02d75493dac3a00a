package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is a corpus document. Only status "approved" is eligible for
// retrieval; that invariant is enforced at query time and never relaxed by
// caller input.
type Document struct {
	Id         uuid.UUID
	Title      string
	Language   string
	Status     string
	AccessTags map[string]interface{}
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// DocumentVersion is immutable once created. One active version per
// document at a time.
type DocumentVersion struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Version    string
	SourceURI  string
	Checksum   string
	IsActive   bool
	CreatedAt  time.Time
}

// AccessGrant gives a role read visibility over a document. A document with
// zero grants is visible to nobody regardless of status.
type AccessGrant struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	RoleId     uuid.UUID
	CreatedAt  time.Time
}

type Role struct {
	Id   uuid.UUID
	Name string
}
