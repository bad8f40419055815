package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	GetPublicURL(key string) string
}

// TournamentResultsKey is the object key under which a finished tournament's
// results document is stored.
func TournamentResultsKey(tournamentID int64) string {
	return fmt.Sprintf("tournaments/%d/results.json", tournamentID)
}

// UploadJSON encodes v and stores it under key.
func UploadJSON(ctx context.Context, uploader FileUploader, key string, v interface{}) (*UploadResult, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
}
