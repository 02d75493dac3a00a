package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Document struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title      string            `gorm:"type:text;not null"`
	Language   string            `gorm:"type:varchar(8);not null;default:'en'"`
	Status     string            `gorm:"type:varchar(16);not null;default:'draft';index"`
	AccessTags datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"` // ABAC predicate: tags must be a subset of requester attributes
	CreatedAt  time.Time         `gorm:"autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}

type DocumentVersion struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;index"`
	Version    string    `gorm:"type:varchar(32);not null"`
	SourceURI  string    `gorm:"type:text;not null"`
	Checksum   string    `gorm:"type:varchar(64)"`
	IsActive   bool      `gorm:"not null;default:false;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	Document *Document `gorm:"foreignKey:DocumentId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (DocumentVersion) TableName() string {
	return "document_versions"
}

type Role struct {
	Id   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"type:varchar(64);not null;uniqueIndex"`
}

func (Role) TableName() string {
	return "roles"
}

type AccessGrant struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;index:idx_grant_doc_role,unique"`
	RoleId     uuid.UUID `gorm:"type:uuid;not null;index:idx_grant_doc_role,unique"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`

	Document *Document `gorm:"foreignKey:DocumentId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Role     *Role     `gorm:"foreignKey:RoleId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (AccessGrant) TableName() string {
	return "access_grants"
}
