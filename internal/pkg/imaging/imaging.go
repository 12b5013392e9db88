// Package imaging verifies uploaded media and produces the resized variants
// used by the site's cards and galleries.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Kind groups file extensions by how their content is verified.
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
)

// JPEGQuality matches the quality the site's processed images use.
const JPEGQuality = 85

// maxPixels bounds decoded image size to keep memory predictable.
const maxPixels = 40_000_000

// Preset target sizes.
var (
	CardSize    = image.Pt(800, 450)
	GallerySize = image.Pt(1200, 675)
)

var (
	ErrUnsupportedType = errors.New("file type not allowed")
	ErrContentMismatch = errors.New("file content does not match its type")
	ErrTooLarge        = errors.New("image dimensions too large")
)

var extensionKinds = map[string]Kind{
	"jpg":  KindImage,
	"jpeg": KindImage,
	"png":  KindImage,
	"gif":  KindImage,
	"webp": KindImage,
	"mp4":  KindVideo,
	"mov":  KindVideo,
	"webm": KindVideo,
	"pdf":  KindDocument,
	"doc":  KindDocument,
	"docx": KindDocument,
}

// Extension returns the lower-cased final extension of name without the dot.
// Only the last extension counts, so "photo.png.exe" yields "exe".
func Extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// KindOf reports the kind for an extension.
func KindOf(ext string) (Kind, bool) {
	k, ok := extensionKinds[ext]
	return k, ok
}

// Decode verifies that data is a real image by decoding it fully. It returns
// the decoded image and the detected format (jpeg, png, gif or webp).
func Decode(data []byte) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrContentMismatch, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", ErrContentMismatch
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, "", ErrTooLarge
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrContentMismatch, err)
	}
	return img, format, nil
}

// Reencode writes img back out in a format browsers accept. GIFs are
// re-encoded frame by frame from the original bytes; WebP is converted to
// JPEG because there is no WebP encoder. It returns the bytes, the content
// type and the file extension to store under.
func Reencode(data []byte, img image.Image, format string) ([]byte, string, string, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), "image/png", "png", nil
	case "gif":
		anim, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, "", "", fmt.Errorf("%w: %v", ErrContentMismatch, err)
		}
		if err := gif.EncodeAll(&buf, anim); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), "image/gif", "gif", nil
	default:
		out, err := EncodeJPEG(img)
		if err != nil {
			return nil, "", "", err
		}
		return out, "image/jpeg", "jpg", nil
	}
}

// EncodeJPEG flattens img onto white and encodes it as JPEG.
func EncodeJPEG(img image.Image) ([]byte, error) {
	b := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CropTo scales img to fill size and crops the overflow around the centre.
func CropTo(img image.Image, size image.Point) image.Image {
	src := img.Bounds()
	targetRatio := float64(size.X) / float64(size.Y)
	srcRatio := float64(src.Dx()) / float64(src.Dy())

	crop := src
	if srcRatio > targetRatio {
		w := int(float64(src.Dy()) * targetRatio)
		left := src.Min.X + (src.Dx()-w)/2
		crop = image.Rect(left, src.Min.Y, left+w, src.Max.Y)
	} else if srcRatio < targetRatio {
		h := int(float64(src.Dx()) / targetRatio)
		top := src.Min.Y + (src.Dy()-h)/2
		crop = image.Rect(src.Min.X, top, src.Max.X, top+h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)
	return dst
}

// PadTo scales img to fit inside size and centres it on a bg canvas.
func PadTo(img image.Image, size image.Point, bg color.Color) image.Image {
	src := img.Bounds()
	scale := min(float64(size.X)/float64(src.Dx()), float64(size.Y)/float64(src.Dy()))
	w := max(1, int(float64(src.Dx())*scale))
	h := max(1, int(float64(src.Dy())*scale))

	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	x := (size.X - w) / 2
	y := (size.Y - h) / 2
	draw.CatmullRom.Scale(dst, image.Rect(x, y, x+w, y+h), img, src, draw.Over, nil)
	return dst
}

// VerifyVideo checks the container signature for the extension.
func VerifyVideo(data []byte, ext string) error {
	switch ext {
	case "mp4", "mov":
		// ISO base media: box size then "ftyp"; older QuickTime files may
		// start with a moov, mdat, free or wide box.
		if len(data) >= 12 {
			switch string(data[4:8]) {
			case "ftyp", "moov", "mdat", "free", "wide":
				return nil
			}
		}
	case "webm":
		if bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}) {
			return nil
		}
	default:
		return ErrUnsupportedType
	}
	return ErrContentMismatch
}

// VerifyDocument checks the file signature for the extension.
func VerifyDocument(data []byte, ext string) error {
	var magic []byte
	switch ext {
	case "pdf":
		magic = []byte("%PDF-")
	case "docx":
		magic = []byte{'P', 'K', 0x03, 0x04}
	case "doc":
		magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	default:
		return ErrUnsupportedType
	}
	if !bytes.HasPrefix(data, magic) {
		return ErrContentMismatch
	}
	return nil
}
