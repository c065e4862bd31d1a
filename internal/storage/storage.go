package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"
)

// ObjectStore is the bucket holding inspection photo evidence and profile
// avatars. Upload failures surface as UploadError at the transport layer.
type ObjectStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	PublicURL(objectName string) string
}

// InspectionPhotoName builds the object name for a piece of photo evidence:
// a millisecond timestamp plus the catalog item id, so concurrent uploads
// from different technicians cannot collide.
func InspectionPhotoName(eppID, ext string) string {
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), eppID, normalizeExt(ext))
}

// AvatarName builds the object name for a profile avatar under the avatars/
// prefix.
func AvatarName(userID, ext string) string {
	return path.Join("avatars", fmt.Sprintf("%s-%d%s", userID, time.Now().UnixMilli(), normalizeExt(ext)))
}

func normalizeExt(ext string) string {
	if ext == "" {
		return ""
	}
	if ext[0] != '.' {
		return "." + ext
	}
	return ext
}
