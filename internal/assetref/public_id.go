// Package assetref derives media store identifiers from the URLs the store hands out.
package assetref

import (
	"fmt"
	"net/url"
	"strings"

	"mediarelay/internal/domain"
)

// ExtractPublicID returns the store identifier addressed by a secure URL: the last two
// path segments joined with "/", minus the file extension of the final segment.
//
//	https://res.cloudinary.com/demo/image/upload/v1712345678/uploads/cat.jpg -> uploads/cat
//
// Only the final segment loses its extension. A dot in the folder segment is part of
// the folder name, so https://host/v1.2/name yields "v1.2/name", not "v1".
//
// The rule follows Cloudinary's <folder>/<name>.<ext> layout, which is why the store
// folder must be a single segment. Assets stored at the root of a flat namespace come
// back as "v<version>/<name>", which the store will not recognise; nested folders keep
// only their innermost segment.
func ExtractPublicID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidAssetURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not absolute", domain.ErrInvalidAssetURL, rawURL)
	}

	segments := strings.Split(u.Path, "/")
	if len(segments) > 2 {
		segments = segments[len(segments)-2:]
	}

	last := len(segments) - 1
	if dot := strings.LastIndex(segments[last], "."); dot >= 0 {
		segments[last] = segments[last][:dot]
	}

	id := strings.TrimPrefix(strings.Join(segments, "/"), "/")
	if id == "" {
		return "", fmt.Errorf("%w: %q has no path", domain.ErrInvalidAssetURL, rawURL)
	}
	return id, nil
}
