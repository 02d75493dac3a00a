package implementation

import (
	"context"
	"errors"

	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/model"
	"knowledge-copilot-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleRepositoryImpl struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) contract.RoleRepository {
	return &RoleRepositoryImpl{db: db}
}

func (r *RoleRepositoryImpl) Create(ctx context.Context, role *entity.Role) error {
	m := &model.Role{Id: role.Id, Name: role.Name}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	role.Id = m.Id
	return nil
}

func (r *RoleRepositoryImpl) FindByName(ctx context.Context, name string) (*entity.Role, error) {
	var m model.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity.Role{Id: m.Id, Name: m.Name}, nil
}

func (r *RoleRepositoryImpl) FindAll(ctx context.Context) ([]*entity.Role, error) {
	var models []*model.Role
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	roles := make([]*entity.Role, len(models))
	for i, m := range models {
		roles[i] = &entity.Role{Id: m.Id, Name: m.Name}
	}
	return roles, nil
}

type AccessGrantRepositoryImpl struct {
	db *gorm.DB
}

func NewAccessGrantRepository(db *gorm.DB) contract.AccessGrantRepository {
	return &AccessGrantRepositoryImpl{db: db}
}

func (r *AccessGrantRepositoryImpl) Create(ctx context.Context, grant *entity.AccessGrant) error {
	m := &model.AccessGrant{
		Id:         grant.Id,
		DocumentId: grant.DocumentId,
		RoleId:     grant.RoleId,
		CreatedAt:  grant.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	grant.Id = m.Id
	grant.CreatedAt = m.CreatedAt
	return nil
}

func (r *AccessGrantRepositoryImpl) FindByDocumentId(ctx context.Context, documentId uuid.UUID) ([]*entity.AccessGrant, error) {
	var models []*model.AccessGrant
	if err := r.db.WithContext(ctx).Where("document_id = ?", documentId).Find(&models).Error; err != nil {
		return nil, err
	}
	grants := make([]*entity.AccessGrant, len(models))
	for i, m := range models {
		grants[i] = &entity.AccessGrant{
			Id:         m.Id,
			DocumentId: m.DocumentId,
			RoleId:     m.RoleId,
			CreatedAt:  m.CreatedAt,
		}
	}
	return grants, nil
}

func (r *AccessGrantRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.AccessGrant{}).Error
}
