package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileService_Validate(t *testing.T) {
	service := NewFileService(newFakeRepository(newFakeData()), t.TempDir(), testLogger())

	tests := []struct {
		name     string
		filename string
		size     int
		wantErr  any
	}{
		{name: "pdf accepted", filename: "report.pdf", size: 128},
		{name: "docx accepted", filename: "essay.docx", size: 128},
		{name: "jpeg accepted", filename: "photo.JPEG", size: 128},
		{name: "executable rejected", filename: "virus.exe", size: 128, wantErr: &InvalidFileTypeError{}},
		{name: "no extension rejected", filename: "README", size: 128, wantErr: &InvalidFileTypeError{}},
		{name: "oversized rejected", filename: "big.pdf", size: MaxUploadSize + 1, wantErr: &FileTooLargeError{}},
		{name: "at the limit accepted", filename: "edge.pdf", size: MaxUploadSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := makeFileHeader(t, tt.filename, make([]byte, tt.size))
			err := service.Validate(header, 1)

			switch want := tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
			case *InvalidFileTypeError:
				var typeErr *InvalidFileTypeError
				if !errors.As(err, &typeErr) {
					t.Errorf("Validate() = %v, want InvalidFileTypeError", err)
				}
			case *FileTooLargeError:
				var sizeErr *FileTooLargeError
				if !errors.As(err, &sizeErr) {
					t.Errorf("Validate() = %v, want FileTooLargeError", err)
				}
			default:
				t.Fatalf("unhandled want: %v", want)
			}
		})
	}
}

func TestFileService_SaveAndDelete(t *testing.T) {
	data := newFakeData()
	repo := newFakeRepository(data)
	dir := t.TempDir()
	service := NewFileService(repo, dir, testLogger())
	ctx := context.Background()

	header := makeFileHeader(t, "notes.pdf", []byte("file body"))
	stored, err := service.Save(ctx, repo, header, 100, 1)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if stored.OriginalName != "notes.pdf" || stored.Extension != ".pdf" {
		t.Errorf("stored = %+v", stored)
	}
	if stored.UserID != 100 || stored.AssessmentID != 1 {
		t.Errorf("ownership = user %d assessment %d", stored.UserID, stored.AssessmentID)
	}

	// Bytes land under uploadDir/assessmentID/userID.
	wantDir := filepath.Join(dir, "1", "100")
	if filepath.Dir(stored.StoragePath) != wantDir {
		t.Errorf("storage path = %q, want under %q", stored.StoragePath, wantDir)
	}
	body, err := os.ReadFile(stored.StoragePath)
	if err != nil {
		t.Fatalf("stored bytes unreadable: %v", err)
	}
	if string(body) != "file body" {
		t.Errorf("stored body = %q", body)
	}

	if err := service.Delete(ctx, repo, stored.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := data.files[stored.ID]; ok {
		t.Error("metadata row survived delete")
	}
	if _, err := os.Stat(stored.StoragePath); !os.IsNotExist(err) {
		t.Error("bytes survived delete")
	}

	t.Run("deleting a missing file is a no-op", func(t *testing.T) {
		if err := service.Delete(ctx, repo, 9999); err != nil {
			t.Errorf("Delete of missing file = %v, want nil", err)
		}
	})
}

func TestFileService_GetByID(t *testing.T) {
	data := newFakeData()
	repo := newFakeRepository(data)
	service := NewFileService(repo, t.TempDir(), testLogger())

	if _, err := service.GetByID(context.Background(), 404); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}
