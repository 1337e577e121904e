// Package imaging prepares reference images for the image edit endpoint.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// EditSize is the square edge the edit endpoint expects.
const EditSize = 1024

// MaxSourcePixels bounds the decoded size of a reference image.
const MaxSourcePixels = 36_000_000

// NormalizeReference decodes data (png, jpeg, gif or webp), scales it to an
// EditSize square with an alpha channel and re-encodes it as PNG.
func NormalizeReference(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, fmt.Errorf("image is %dx%d, limit is %d pixels", cfg.Width, cfg.Height, MaxSourcePixels)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, EditSize, EditSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode %s as png: %w", format, err)
	}
	return buf.Bytes(), nil
}
