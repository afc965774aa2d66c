package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"floorplan-studio/internal/models"

	"github.com/google/uuid"
)

// DefaultMaxFileSize mirrors the planner backend's 16MB request ceiling.
const DefaultMaxFileSize int64 = 16 * 1024 * 1024

var allowedMediaTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/bmp":  true,
}

var extensionMediaTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
}

type ValidationReason string

const (
	ReasonMediaType    ValidationReason = "media_type"
	ReasonSize         ValidationReason = "size"
	ReasonRequirements ValidationReason = "requirements"
)

// ValidationError is a client-side rejection raised before any request is made.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type Intake struct {
	maxFileSize int64
}

func NewIntake(maxFileSize int64) *Intake {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Intake{maxFileSize: maxFileSize}
}

func (in *Intake) MaxFileSize() int64 {
	return in.maxFileSize
}

// Validate checks the declared media type first, then the size.
func (in *Intake) Validate(mediaType string, size int64) error {
	if !allowedMediaTypes[strings.ToLower(mediaType)] {
		return &ValidationError{
			Reason:  ReasonMediaType,
			Message: "Please select a valid image file (PNG, JPG, JPEG, GIF, BMP)",
		}
	}
	if size > in.maxFileSize {
		return &ValidationError{
			Reason:  ReasonSize,
			Message: fmt.Sprintf("File size must be less than %s", formatCeiling(in.maxFileSize)),
		}
	}
	return nil
}

// Accept validates raw and turns it into the selected file.
func (in *Intake) Accept(raw models.RawFile) (*models.SelectedFile, error) {
	mediaType := DeclaredMediaType(raw.Name, raw.MediaType)
	size := int64(len(raw.Data))

	if err := in.Validate(mediaType, size); err != nil {
		return nil, err
	}

	return &models.SelectedFile{
		ID:        uuid.NewString(),
		Name:      raw.Name,
		MediaType: strings.ToLower(mediaType),
		Size:      size,
		Data:      raw.Data,
	}, nil
}

// DeclaredMediaType prefers the type the sender declared and falls back to
// the file extension. Generic binary declarations count as undeclared.
func DeclaredMediaType(name, declared string) string {
	declared = strings.TrimSpace(declared)
	if i := strings.Index(declared, ";"); i != -1 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return extensionMediaTypes[strings.ToLower(filepath.Ext(name))]
}

func formatCeiling(size int64) string {
	if size%(1024*1024) == 0 {
		return fmt.Sprintf("%dMB", size/(1024*1024))
	}
	return fmt.Sprintf("%d bytes", size)
}
