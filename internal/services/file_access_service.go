package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/submisoon/assessment-service/internal/models"
)

type fileAccessService struct {
	files  FileService
	signer URLSigner
	logger *slog.Logger
}

func NewFileAccessService(files FileService, signer URLSigner, logger *slog.Logger) FileAccessService {
	return &fileAccessService{
		files:  files,
		signer: signer,
		logger: logger,
	}
}

func (s *fileAccessService) ResolveSigned(ctx context.Context, fileID, userID uint, expires int64, token string) (*models.StoredFile, error) {
	if !s.signer.Verify(fileID, userID, expires, token) {
		s.logger.Warn("Rejected file link", "file_id", fileID, "user_id", userID)
		return nil, ErrSignatureInvalid
	}

	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to load file %d: %w", fileID, err)
	}

	// Signed links are personal; someone else's file id with a valid-looking
	// pair of parameters still reads as missing.
	if file.UserID != userID {
		return nil, ErrFileNotFound
	}

	return file, nil
}

func (s *fileAccessService) Open(file *models.StoredFile) (io.ReadSeekCloser, error) {
	f, err := os.Open(file.StoragePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open stored file %d: %w", file.ID, err)
	}
	return f, nil
}
