// Package logo prepares the header logo: it decodes PNG, JPEG, GIF or WebP,
// shrinks large images and re-encodes them as PNG for the PDF backend.
package logo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// DefaultMaxHeight is the pixel height logos are scaled down to.
const DefaultMaxHeight = 240

// Image is a prepared logo.
type Image struct {
	PNG    []byte
	Width  int
	Height int
}

// Load reads and prepares a logo file.
func Load(path string, maxHeight int) (Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to read logo: %w", err)
	}
	return Prepare(raw, maxHeight)
}

// Prepare decodes raw image bytes and returns them as PNG no taller than
// maxHeight pixels, keeping the aspect ratio. Smaller images are not enlarged.
func Prepare(raw []byte, maxHeight int) (Image, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		decoded, webpErr := webp.Decode(bytes.NewReader(raw))
		if webpErr != nil {
			return Image{}, errors.New("unable to decode logo: expected png, jpeg, gif or webp")
		}
		img = decoded
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return Image{}, errors.New("invalid logo dimensions")
	}

	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}
	if height > maxHeight {
		targetWidth := width * maxHeight / height
		if targetWidth < 1 {
			targetWidth = 1
		}
		resized := image.NewRGBA(image.Rect(0, 0, targetWidth, maxHeight))
		xdraw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, xdraw.Over, nil)
		img = resized
		width, height = targetWidth, maxHeight
	}

	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return Image{}, fmt.Errorf("unable to encode logo: %w", err)
	}
	return Image{PNG: out.Bytes(), Width: width, Height: height}, nil
}
