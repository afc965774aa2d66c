package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"floorplan-studio/internal/logger"

	"github.com/sirupsen/logrus"
)

const (
	AnalysisTitle   = "Analysis Results"
	GenerationTitle = "Generated Floor Plan"
)

// ResultFilename names a saved result after the instant it was saved, to the second.
func ResultFilename(now time.Time) string {
	return fmt.Sprintf("floor_plan_analysis_%s.txt", now.UTC().Format("2006-01-02T15-04-05"))
}

// ResultWriter stores downloaded results as plain-text files.
type ResultWriter struct {
	dir string
}

func NewResultWriter(dir string) *ResultWriter {
	return &ResultWriter{dir: dir}
}

func (rw *ResultWriter) Save(_ context.Context, filename, content string) (string, error) {
	if err := os.MkdirAll(rw.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filePath := filepath.Join(rw.dir, filepath.Base(filename))
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write result file: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"filePath": filePath,
		"bytes":    len(content),
	}).Info("Saved result file")

	return filePath, nil
}
