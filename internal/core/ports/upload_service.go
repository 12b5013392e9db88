package ports

import (
	"context"
)

// Image processing directives accepted by the upload endpoint.
const (
	ProcessNone             = "none"
	ProcessResizeCrop       = "resize_crop"
	ProcessResizeGallery    = "resize_gallery"
	ProcessResizeGalleryPad = "resize_gallery_pad"
)

// UploadInput is a single file received from a client.
type UploadInput struct {
	Filename    string
	ContentType string
	Data        []byte
	ProcessType string
	// Prefix is prepended to the generated object key, e.g. "cv/".
	Prefix string
	// Documents allows pdf/doc/docx in addition to images and video.
	Documents bool
}

// UploadResult describes a stored file. For processed images URL points at
// the variant and OriginalURL at the re-encoded original.
type UploadResult struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Kind        string `json:"kind"`
	Processed   bool   `json:"processed"`
	OriginalURL string `json:"originalUrl,omitempty"`
}

type UploadService interface {
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
}
