package repository

import (
	"errors"
	"gorm.io/gorm"
	"promptlib/cmd/internal/domain/entity"
)

type DefaultPromptRepository struct {
	db *gorm.DB
}

func NewPromptRepository(db *gorm.DB) *DefaultPromptRepository {
	return &DefaultPromptRepository{db: db}
}

func (d *DefaultPromptRepository) FindAll() ([]*entity.Prompt, error) {
	var prompts []*entity.Prompt
	err := d.db.Order("id ASC").Find(&prompts).Error
	if err != nil {
		return nil, err
	}
	return prompts, nil
}

func (d *DefaultPromptRepository) FindByID(id int) (*entity.Prompt, error) {
	var prompt entity.Prompt
	err := d.db.First(&prompt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &prompt, nil
}

func (d *DefaultPromptRepository) Count() (int64, error) {
	var count int64
	err := d.db.Model(&entity.Prompt{}).Count(&count).Error
	return count, err
}

// Create inserts prompt and fills in its new ID.
func (d *DefaultPromptRepository) Create(prompt *entity.Prompt) error {
	return d.db.Create(prompt).Error
}

// CreateBatch inserts all prompts in a single transaction.
func (d *DefaultPromptRepository) CreateBatch(prompts []*entity.Prompt) error {
	if len(prompts) == 0 {
		return nil
	}
	return d.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(prompts).Error
	})
}

// Save writes every column, including zero values. A prompt deleted in the
// meantime stays deleted.
func (d *DefaultPromptRepository) Save(prompt *entity.Prompt) error {
	return d.db.Model(prompt).Select("*").Updates(prompt).Error
}

func (d *DefaultPromptRepository) SetLocked(id int, locked bool) error {
	return d.db.Model(&entity.Prompt{}).
		Where("id = ?", id).
		Update("locked", locked).Error
}

func (d *DefaultPromptRepository) Delete(prompt *entity.Prompt) error {
	return d.db.Delete(prompt).Error
}
