package photos

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("validation error")

// Storage persists uploaded photo bytes under a server-generated
// filename and resolves the public URL they are served from.
type Storage interface {
	Save(ctx context.Context, filename, contentType string, data []byte) error
	Delete(ctx context.Context, filename string) error
	URL(filename string) string
}

// NewFilename generates a unique photo filename. Only the extension is
// derived from the client-supplied name; everything else is random.
func NewFilename(originalName string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(originalName)))
	if ext == "" {
		ext = ".jpg"
	}
	return uuid.NewString() + ext
}
