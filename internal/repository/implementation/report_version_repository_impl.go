package implementation

import (
	"context"

	"ai-reportgen-be/internal/entity"
	"ai-reportgen-be/internal/mapper"
	"ai-reportgen-be/internal/model"
	"ai-reportgen-be/internal/repository/contract"
	"ai-reportgen-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportVersionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewReportVersionRepository(db *gorm.DB) contract.ReportVersionRepository {
	return &ReportVersionRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ReportVersionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ReportVersionRepositoryImpl) Create(ctx context.Context, version *entity.ReportVersion) error {
	m := r.mapper.VersionToModel(version)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*version = *r.mapper.VersionToEntity(m)
	return nil
}

func (r *ReportVersionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReportVersion, error) {
	var models []*model.ReportVersion
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ReportVersion, len(models))
	for i, m := range models {
		entities[i] = r.mapper.VersionToEntity(m)
	}
	return entities, nil
}

func (r *ReportVersionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ReportVersion{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ReportVersionRepositoryImpl) LatestVersion(ctx context.Context, conversationId uuid.UUID) (int, error) {
	var latest int
	err := r.db.WithContext(ctx).
		Model(&model.ReportVersion{}).
		Select("COALESCE(MAX(version), 0)").
		Where("conversation_id = ?", conversationId).
		Scan(&latest).Error
	if err != nil {
		return 0, err
	}
	return latest, nil
}

func (r *ReportVersionRepositoryImpl) DeleteOldest(ctx context.Context, conversationId uuid.UUID, keep int) error {
	subQuery := r.db.Table("report_versions").
		Select("id").
		Where("conversation_id = ?", conversationId).
		Order("version DESC").
		Limit(keep)
	return r.db.WithContext(ctx).
		Where("conversation_id = ? AND id NOT IN (?)", conversationId, subQuery).
		Delete(&model.ReportVersion{}).Error
}
