package services

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/disintegration/imaging"
)

// PreviewRenderer turns an uploaded image into a thumbnail data URL.
// imaging registers the PNG, JPEG, GIF and BMP decoders intake accepts.
type PreviewRenderer struct {
	size int
}

func NewPreviewRenderer(size int) *PreviewRenderer {
	if size <= 0 {
		size = 320
	}
	return &PreviewRenderer{size: size}
}

func (pr *PreviewRenderer) Render(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > pr.size || bounds.Dy() > pr.size {
		img = imaging.Fit(img, pr.size, pr.size, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
