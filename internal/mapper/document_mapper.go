package mapper

import (
	"time"

	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Document{
		Id:         d.Id,
		Title:      d.Title,
		Language:   d.Language,
		Status:     d.Status,
		AccessTags: map[string]interface{}(d.AccessTags),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Document{
		Id:         d.Id,
		Title:      d.Title,
		Language:   d.Language,
		Status:     d.Status,
		AccessTags: d.AccessTags,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *DocumentMapper) VersionToEntity(v *model.DocumentVersion) *entity.DocumentVersion {
	if v == nil {
		return nil
	}
	return &entity.DocumentVersion{
		Id:         v.Id,
		DocumentId: v.DocumentId,
		Version:    v.Version,
		SourceURI:  v.SourceURI,
		Checksum:   v.Checksum,
		IsActive:   v.IsActive,
		CreatedAt:  v.CreatedAt,
	}
}

func (m *DocumentMapper) VersionToModel(v *entity.DocumentVersion) *model.DocumentVersion {
	if v == nil {
		return nil
	}
	return &model.DocumentVersion{
		Id:         v.Id,
		DocumentId: v.DocumentId,
		Version:    v.Version,
		SourceURI:  v.SourceURI,
		Checksum:   v.Checksum,
		IsActive:   v.IsActive,
		CreatedAt:  v.CreatedAt,
	}
}
