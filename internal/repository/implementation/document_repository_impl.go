package implementation

import (
	"context"
	"encoding/json"
	"errors"

	"knowledge-copilot-be/internal/constant"
	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/mapper"
	"knowledge-copilot-be/internal/model"
	"knowledge-copilot-be/internal/repository/contract"
	"knowledge-copilot-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, doc *entity.Document) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) CreateVersion(ctx context.Context, version *entity.DocumentVersion) error {
	m := r.mapper.VersionToModel(version)
	// A new active version deactivates the previous one. Versions are
	// otherwise immutable.
	if m.IsActive {
		if err := r.db.WithContext(ctx).
			Model(&model.DocumentVersion{}).
			Where("document_id = ? AND is_active = true", m.DocumentId).
			Update("is_active", false).Error; err != nil {
			return err
		}
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*version = *r.mapper.VersionToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	var m model.Document
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	var models []*model.Document
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Document, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *DocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Document{}).Count(&count).Error
	return count, err
}

// FindVisible applies the same eligibility predicate as retrieval, without
// the similarity ranking: approved status, role grant, tag containment.
func (r *DocumentRepositoryImpl) FindVisible(ctx context.Context, roleNames []string, attributes map[string]interface{}, limit, offset int) ([]*contract.VisibleDocument, error) {
	if len(roleNames) == 0 {
		return []*contract.VisibleDocument{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	if attributes == nil {
		attributes = map[string]interface{}{}
	}
	attrsJSON, err := json.Marshal(attributes)
	if err != nil {
		return nil, err
	}

	var models []*model.Document
	err = r.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("status = ?", constant.DocumentStatusApproved).
		Where("access_tags <@ ?::jsonb", string(attrsJSON)).
		Where(`EXISTS (
			SELECT 1 FROM access_grants
			JOIN roles ON roles.id = access_grants.role_id
			WHERE access_grants.document_id = documents.id
			  AND roles.name IN ?)`, roleNames).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	results := make([]*contract.VisibleDocument, 0, len(models))
	for _, m := range models {
		doc := r.mapper.ToEntity(m)
		version, err := r.FindActiveVersion(ctx, doc.Id)
		if err != nil {
			return nil, err
		}
		results = append(results, &contract.VisibleDocument{
			Document:      doc,
			ActiveVersion: version,
		})
	}
	return results, nil
}

func (r *DocumentRepositoryImpl) FindActiveVersion(ctx context.Context, documentId uuid.UUID) (*entity.DocumentVersion, error) {
	var m model.DocumentVersion
	err := r.db.WithContext(ctx).
		Where("document_id = ? AND is_active = true", documentId).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.VersionToEntity(&m), nil
}
