// Package imagecmp compares decoded images pixel by pixel.
package imagecmp

import (
	"fmt"
	"image"
	"os"

	// decoders are registered by import
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Decode reads an image file. The format is detected from the file content, not from its
// name.
func Decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image %s: %w", path, err)
	}
	return img, format, nil
}

// Difference returns the smallest rectangle, in coordinates relative to the top-left corner
// of each image, that contains every pixel whose color differs between a and b. Colors are
// compared as 16-bit RGBA. If the images are not the same size, every pixel outside their
// common area counts as different.
//
// An empty rectangle means the images are identical.
func Difference(a, b image.Image) image.Rectangle {
	ab, bb := a.Bounds(), b.Bounds()
	width, height := ab.Dx(), ab.Dy()
	if bb.Dx() != width || bb.Dy() != height {
		return image.Rect(0, 0, max(width, bb.Dx()), max(height, bb.Dy()))
	}

	diff := image.Rectangle{}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !sameColor(a, ab.Min.X+x, ab.Min.Y+y, b, bb.Min.X+x, bb.Min.Y+y) {
				diff = diff.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return diff
}

func sameColor(a image.Image, ax, ay int, b image.Image, bx, by int) bool {
	r1, g1, b1, a1 := a.At(ax, ay).RGBA()
	r2, g2, b2, a2 := b.At(bx, by).RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

// Equal reports whether two images have the same size and identical pixels.
func Equal(a, b image.Image) bool {
	return Difference(a, b).Empty()
}

// FilesEqual decodes two image files and compares them. The error is non-nil only if a file
// could not be read or decoded.
func FilesEqual(path1, path2 string) (bool, image.Rectangle, error) {
	img1, _, err := Decode(path1)
	if err != nil {
		return false, image.Rectangle{}, err
	}
	img2, _, err := Decode(path2)
	if err != nil {
		return false, image.Rectangle{}, err
	}
	diff := Difference(img1, img2)
	return diff.Empty(), diff, nil
}
