package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/repositories"
)

const (
	// MaxUploadSize is the per-file upload limit in bytes (2 MiB).
	MaxUploadSize = 2097152
)

// AllowedUploadExtensions lists the accepted answer file types.
var AllowedUploadExtensions = []string{".doc", ".docx", ".pdf", ".jpg", ".jpeg", ".png"}

// FileService validates and persists answer uploads. Metadata rows go
// through the repository passed per call so they join the caller's
// transaction; the bytes themselves live on local disk.
type FileService interface {
	// Validate checks size and extension without touching the disk.
	Validate(header *multipart.FileHeader, questionID uint) error

	// Save validates nothing; call Validate first. It writes the bytes to
	// disk and creates the metadata row through repo.
	Save(ctx context.Context, repo repositories.Repository, header *multipart.FileHeader, userID, assessmentID uint) (*models.StoredFile, error)

	// Delete removes the metadata row and the bytes. Missing files are
	// not an error.
	Delete(ctx context.Context, repo repositories.Repository, fileID uint) error

	// GetByID fetches a file's metadata row.
	GetByID(ctx context.Context, fileID uint) (*models.StoredFile, error)
}

type fileService struct {
	repo      repositories.Repository
	uploadDir string
	logger    *slog.Logger
}

func NewFileService(repo repositories.Repository, uploadDir string, logger *slog.Logger) FileService {
	return &fileService{
		repo:      repo,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

func (s *fileService) Validate(header *multipart.FileHeader, questionID uint) error {
	if header.Size > MaxUploadSize {
		return &FileTooLargeError{
			QuestionID: questionID,
			FileSize:   header.Size,
			MaxSize:    MaxUploadSize,
		}
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	for _, allowed := range AllowedUploadExtensions {
		if ext == allowed {
			return nil
		}
	}

	return &InvalidFileTypeError{
		QuestionID:        questionID,
		ReceivedExtension: ext,
		AllowedExtensions: AllowedUploadExtensions,
	}
}

func (s *fileService) Save(ctx context.Context, repo repositories.Repository, header *multipart.FileHeader, userID, assessmentID uint) (*models.StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	storedName := fmt.Sprintf("%s%s", uuid.NewString(), ext)
	dir := filepath.Join(s.uploadDir, fmt.Sprintf("%d", assessmentID), fmt.Sprintf("%d", userID))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	storagePath := filepath.Join(dir, storedName)
	if err := s.writeToDisk(header, storagePath); err != nil {
		return nil, err
	}

	file := &models.StoredFile{
		UserID:       userID,
		AssessmentID: assessmentID,
		OriginalName: header.Filename,
		StoredName:   storedName,
		StoragePath:  storagePath,
		Extension:    ext,
		Size:         header.Size,
	}

	if err := repo.File().Create(ctx, file); err != nil {
		// Best effort cleanup; a leftover file is tolerated, a dangling
		// row is not
		if rmErr := os.Remove(storagePath); rmErr != nil {
			s.logger.Warn("Failed to remove orphaned upload", "path", storagePath, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	return file, nil
}

func (s *fileService) writeToDisk(header *multipart.FileHeader, path string) error {
	src, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *fileService) Delete(ctx context.Context, repo repositories.Repository, fileID uint) error {
	file, err := repo.File().GetByID(ctx, fileID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to get file for deletion: %w", err)
	}

	if err := repo.File().Delete(ctx, fileID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	if err := os.Remove(file.StoragePath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to delete file from disk", "file_id", fileID, "error", err)
	}

	return nil
}

func (s *fileService) GetByID(ctx context.Context, fileID uint) (*models.StoredFile, error) {
	file, err := s.repo.File().GetByID(ctx, fileID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file, nil
}
