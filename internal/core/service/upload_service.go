package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
	"github.com/bellavista/carehome-cms/internal/pkg/imaging"
)

const processedPrefix = "processed/"

var processSuffix = map[string]string{
	ports.ProcessResizeCrop:       "_card",
	ports.ProcessResizeGallery:    "_gallery",
	ports.ProcessResizeGalleryPad: "_gallery_pad",
}

// UploadService verifies uploaded media, produces resized variants and
// stores everything in the blob store.
type UploadService struct {
	blobs ports.BlobStore
	log   zerolog.Logger
}

func NewUploadService(blobs ports.BlobStore, log zerolog.Logger) *UploadService {
	return &UploadService{blobs: blobs, log: log}
}

func (s *UploadService) Upload(ctx context.Context, in ports.UploadInput) (*ports.UploadResult, error) {
	if len(in.Data) == 0 {
		return nil, domain.NewValidationError("file", "no file provided")
	}
	process := in.ProcessType
	if process == "" {
		process = ports.ProcessNone
	}
	if _, ok := processSuffix[process]; !ok && process != ports.ProcessNone {
		return nil, domain.NewValidationError("process_type", "unknown process type")
	}

	ext := imaging.Extension(in.Filename)
	kind, ok := imaging.KindOf(ext)
	if !ok || (kind == imaging.KindDocument && !in.Documents) {
		return nil, domain.NewValidationError("file", "file type not allowed")
	}
	if kind != imaging.KindImage && process != ports.ProcessNone {
		return nil, domain.NewValidationError("process_type", "only images can be processed")
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	switch kind {
	case imaging.KindVideo:
		if err := imaging.VerifyVideo(in.Data, ext); err != nil {
			return nil, contentError(err)
		}
		return s.store(ctx, in.Prefix+id+"."+ext, in.Data, videoContentType(ext), kind, false)
	case imaging.KindDocument:
		if err := imaging.VerifyDocument(in.Data, ext); err != nil {
			return nil, contentError(err)
		}
		return s.store(ctx, in.Prefix+id+"."+ext, in.Data, documentContentType(ext), kind, false)
	}

	img, format, err := imaging.Decode(in.Data)
	if err != nil {
		return nil, contentError(err)
	}
	// Re-encoding drops anything smuggled after the image data.
	clean, contentType, storedExt, err := imaging.Reencode(in.Data, img, format)
	if err != nil {
		return nil, fmt.Errorf("reencode image: %w", err)
	}
	original, err := s.store(ctx, in.Prefix+id+"."+storedExt, clean, contentType, kind, false)
	if err != nil || process == ports.ProcessNone {
		return original, err
	}

	var variant image.Image
	switch process {
	case ports.ProcessResizeCrop:
		variant = imaging.CropTo(img, imaging.CardSize)
	case ports.ProcessResizeGallery:
		variant = imaging.CropTo(img, imaging.GallerySize)
	case ports.ProcessResizeGalleryPad:
		variant = imaging.PadTo(img, imaging.GallerySize, color.White)
	}
	out, err := imaging.EncodeJPEG(variant)
	if err != nil {
		return nil, fmt.Errorf("encode variant: %w", err)
	}
	key := in.Prefix + processedPrefix + id + processSuffix[process] + ".jpg"
	res, err := s.store(ctx, key, out, "image/jpeg", kind, true)
	if err != nil {
		return nil, err
	}
	res.OriginalURL = original.URL
	return res, nil
}

func (s *UploadService) store(ctx context.Context, key string, data []byte, contentType string, kind imaging.Kind, processed bool) (*ports.UploadResult, error) {
	url, err := s.blobs.Put(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	s.log.Info().Str("key", key).Str("kind", string(kind)).Int("bytes", len(data)).Msg("file uploaded")
	return &ports.UploadResult{URL: url, Filename: key, Kind: string(kind), Processed: processed}, nil
}

func contentError(err error) error {
	if errors.Is(err, imaging.ErrTooLarge) {
		return domain.NewValidationError("file", "image dimensions too large")
	}
	return domain.NewValidationError("file", "file content does not match its type")
}

func videoContentType(ext string) string {
	switch ext {
	case "webm":
		return "video/webm"
	case "mov":
		return "video/quicktime"
	default:
		return "video/mp4"
	}
}

func documentContentType(ext string) string {
	switch ext {
	case "pdf":
		return "application/pdf"
	case "doc":
		return "application/msword"
	default:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
}
