// Package media uploads user media (avatars, cover images) to object storage
// and deletes it again by its public URL.
package media

import "context"

// Store hosts local files and hands back their public URL.
//
// Upload always removes localPath, whether or not the upload succeeded.
// Delete is best-effort; callers log and swallow its error.
type Store interface {
	Upload(ctx context.Context, localPath string) (string, error)
	Delete(ctx context.Context, url string) error
}
