package illuminate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"github.com/nfnt/resize"
)

const thumbnailWidth uint = 256
const thumbnailHeight uint = 256

// Thumbnail takes raw generated image data, resizes it, encodes it as a
// Base64 JPEG, and returns it as a data URI string ready for storage.
func Thumbnail(imageData []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Scale the longer edge down, preserving aspect ratio.
	var resizedImg image.Image
	if img.Bounds().Dy() > img.Bounds().Dx() {
		resizedImg = resize.Resize(0, thumbnailHeight, img, resize.Lanczos3)
	} else {
		resizedImg = resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	// Quality 75 is a good balance for preview thumbnails.
	if err := jpeg.Encode(&buf, resizedImg, &jpeg.Options{Quality: 75}); err != nil {
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}
