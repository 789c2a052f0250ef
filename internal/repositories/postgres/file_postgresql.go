package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/repositories"
)

type FilePostgreSQL struct {
	db *gorm.DB
}

func NewFilePostgreSQL(db *gorm.DB) repositories.FileRepository {
	return &FilePostgreSQL{db: db}
}

func (f *FilePostgreSQL) Create(ctx context.Context, file *models.StoredFile) error {
	return f.db.WithContext(ctx).Create(file).Error
}

func (f *FilePostgreSQL) Delete(ctx context.Context, id uint) error {
	return f.db.WithContext(ctx).Delete(&models.StoredFile{}, id).Error
}

func (f *FilePostgreSQL) GetByID(ctx context.Context, id uint) (*models.StoredFile, error) {
	var file models.StoredFile
	if err := f.db.WithContext(ctx).First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *FilePostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]*models.StoredFile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var files []*models.StoredFile
	if err := f.db.WithContext(ctx).Where("id IN ?", ids).Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to get files: %w", err)
	}
	return files, nil
}

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
