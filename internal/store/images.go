package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SaveImage stores image data and returns its opaque reference.
func SaveImage(ctx context.Context, q DBTX, data []byte, mime string, uploadedBy int64) (string, error) {
	ref := uuid.NewString()
	_, err := q.ExecContext(ctx,
		`INSERT INTO images (ref, data, mime, uploaded_by) VALUES (?, ?, ?, ?)`,
		ref, data, mime, uploadedBy,
	)
	if err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return ref, nil
}

// GetImage returns an image's data and MIME type. Data is nil when the
// reference is unknown.
func GetImage(ctx context.Context, q DBTX, ref string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := q.QueryRowContext(ctx,
		`SELECT data, mime FROM images WHERE ref = ?`, ref,
	).Scan(&data, &mime)
	if noRows(err) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting image: %w", err)
	}
	return data, mime, nil
}

// GetImageUploader returns who uploaded an image, or 0 when the reference is unknown.
func GetImageUploader(ctx context.Context, q DBTX, ref string) (int64, error) {
	var uploadedBy int64
	err := q.QueryRowContext(ctx,
		`SELECT uploaded_by FROM images WHERE ref = ?`, ref,
	).Scan(&uploadedBy)
	if noRows(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("getting image uploader: %w", err)
	}
	return uploadedBy, nil
}
