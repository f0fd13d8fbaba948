package service

import (
	"context"
	"fmt"

	"github.com/audioshelfapp/audioshelf-server/internal/domain"
	"github.com/audioshelfapp/audioshelf-server/internal/errors"
	"github.com/audioshelfapp/audioshelf-server/internal/media/images"
	"github.com/audioshelfapp/audioshelf-server/internal/storage"
)

// SetCover attaches an uploaded cover image to a book. The original is
// downloaded from object storage, validated, rendered into thumbnail,
// medium, and large variants, and given a BlurHash placeholder. A
// previously attached cover's objects are deleted best-effort.
func (s *BookService) SetCover(ctx context.Context, bookID, objectKey string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	data, err := s.objects.Download(ctx, objectKey)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUpstream, "download cover")
	}

	result, err := images.Process(data)
	if err != nil {
		return nil, err
	}

	cover := &domain.Cover{
		ObjectKey: objectKey,
		BlurHash:  result.BlurHash,
	}
	for _, variant := range result.Variants {
		variantKey := storage.VariantKey(objectKey, variant.Name)
		if err := s.objects.Upload(ctx, variantKey, variant.Data, "image/jpeg"); err != nil {
			return nil, errors.Wrap(err, errors.CodeUpstream, fmt.Sprintf("upload %s variant", variant.Name))
		}
		switch variant.Name {
		case "thumbnail":
			cover.ThumbnailKey = variantKey
		case "medium":
			cover.MediumKey = variantKey
		case "large":
			cover.LargeKey = variantKey
		}
	}

	oldKeys := coverKeys(book.Cover)

	book.Cover = cover
	book.Touch()
	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.deleteObjects(ctx, oldKeys)

	if s.logger != nil {
		s.logger.Info("cover attached",
			"book_id", bookID,
			"object_key", objectKey,
			"blurhash", result.BlurHash,
		)
	}
	return book, nil
}

// CoverURL issues a presigned read URL for one of a book's cover
// renditions. Size is one of "thumbnail", "medium", "large", or
// "original"; an unpopulated rendition falls back to the original.
func (s *BookService) CoverURL(ctx context.Context, bookID, size string) (string, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return "", err
	}
	if book.Cover == nil {
		return "", errors.NotFound("book has no cover")
	}

	key := book.Cover.ObjectKey
	switch size {
	case "thumbnail":
		if book.Cover.ThumbnailKey != "" {
			key = book.Cover.ThumbnailKey
		}
	case "medium":
		if book.Cover.MediumKey != "" {
			key = book.Cover.MediumKey
		}
	case "large":
		if book.Cover.LargeKey != "" {
			key = book.Cover.LargeKey
		}
	case "", "original":
	default:
		return "", errors.Validationf("unknown cover size %q", size)
	}

	url, err := s.objects.PresignRead(ctx, key, storage.CoverReadTTL)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeUpstream, "presign cover")
	}
	return url, nil
}
