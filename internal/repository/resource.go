package repository

import (
	"context"
	"fmt"

	"books-storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResourceCacheRepository holds the last known home listing.
type ResourceCacheRepository interface {
	Seed(ctx context.Context) error
	Replace(ctx context.Context, resources []model.Resource) error
	GetByType(ctx context.Context, resourceType model.ResourceType) ([]model.Resource, error)
}

type resourceCacheRepoImpl struct {
	db *gorm.DB
}

func NewResourceCacheRepository(db *gorm.DB) ResourceCacheRepository {
	return &resourceCacheRepoImpl{
		db: db,
	}
}

func sampleCatalogue() []model.CachedResource {
	placeholder := "assets/placeholder.jpg"
	return []model.CachedResource{
		{ID: "1", ResourceType: model.ResourceTypeBook, Title: "Form 2", ClassGrade: "Form 2", Subject: "Mathematics", Cover: placeholder, Position: 0,
			Description: "Comprehensive guide covering algebra, geometry, and statistics for secondary students."},
		{ID: "2", ResourceType: model.ResourceTypeBook, Title: "Science Explorer", ClassGrade: "Standard 7", Subject: "Science", Cover: placeholder, Position: 1,
			Description: "Interactive science textbook with experiments and activities for primary students."},
		{ID: "3", ResourceType: model.ResourceTypeBook, Title: "CBC Life Skills", ClassGrade: "Grade 5", Subject: "Life Skills", Cover: placeholder, Position: 2,
			Description: "Essential life skills curriculum for Competency Based Curriculum implementation."},
		{ID: "4", ResourceType: model.ResourceTypePaper, Title: "KCPE Mathematics 2023", ClassGrade: "Standard 8", Subject: "Mathematics", Cover: "assets/exam paper2.jpg", Position: 3,
			Description: "Complete KCPE Mathematics past paper with marking scheme."},
		{ID: "5", ResourceType: model.ResourceTypePaper, Title: "KCSE English 2023", ClassGrade: "Form 4", Subject: "English", Cover: placeholder, Position: 4,
			Description: "KCSE English paper with comprehensive answers."},
		{ID: "6", ResourceType: model.ResourceTypeSetbook, Title: "The River and the Source", ClassGrade: "Form 3", Subject: "Literature", Cover: placeholder, Position: 5,
			Description: "Classic Kenyan literature for secondary school students."},
		{ID: "7", ResourceType: model.ResourceTypeSetbook, Title: "A Doll's House", ClassGrade: "Form 4", Subject: "Literature", Cover: placeholder, Position: 6,
			Description: "Modern drama text for advanced literature studies."},
	}
}

// Seed installs the sample catalogue unless a listing is already cached.
func (r *resourceCacheRepoImpl) Seed(ctx context.Context) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.CachedResource{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count cached resources: %w", err)
	}
	if count > 0 {
		return nil
	}

	resources := sampleCatalogue()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&resources).Error
}

// Replace swaps the cached listing for resources, in order.
func (r *resourceCacheRepoImpl) Replace(ctx context.Context, resources []model.Resource) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.CachedResource{}).Error; err != nil {
			return err
		}
		if len(resources) == 0 {
			return nil
		}

		rows := make([]model.CachedResource, 0, len(resources))
		seen := make(map[string]bool, len(resources))
		for i, res := range resources {
			if res.ID.Empty() || seen[res.ID.String()] {
				continue
			}
			seen[res.ID.String()] = true
			rows = append(rows, model.CachedFromResource(res, i))
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (r *resourceCacheRepoImpl) GetByType(ctx context.Context, resourceType model.ResourceType) ([]model.Resource, error) {
	var rows []model.CachedResource
	err := r.db.WithContext(ctx).
		Where("resource_type = ?", resourceType).
		Order("position asc").
		Find(&rows).
		Error

	if err != nil {
		return nil, err
	}

	resources := make([]model.Resource, 0, len(rows))
	for _, row := range rows {
		resources = append(resources, row.ToResource())
	}
	return resources, nil
}
