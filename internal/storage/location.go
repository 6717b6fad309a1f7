package storage

import (
	"strings"

	"github.com/codeinsight/insight-agent/internal/domain"
)

// remoteScheme prefixes every remote-object locator
const remoteScheme = "s3://"

// Location is the opaque locator of a persisted collection: either a
// remote-object locator (s3://bucket/key) or a local file path. A stored
// batch has no identity beyond its locator.
type Location string

// IsRemote reports whether the locator names a remote object
func (l Location) IsRemote() bool {
	return strings.HasPrefix(string(l), remoteScheme)
}

// BucketKey splits a remote locator into its bucket and object key.
// ok is false for local locators and malformed remote ones.
func (l Location) BucketKey() (bucket, key string, ok bool) {
	if !l.IsRemote() {
		return "", "", false
	}
	rest := strings.TrimPrefix(string(l), remoteScheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// InferSource derives the source type from the locator string. Filenames
// embed the source type, so a substring match is sufficient; github is
// checked first to keep the dispatch deterministic.
func (l Location) InferSource() domain.SourceType {
	lower := strings.ToLower(string(l))
	switch {
	case strings.Contains(lower, string(domain.SourceGitHub)):
		return domain.SourceGitHub
	case strings.Contains(lower, string(domain.SourceReddit)):
		return domain.SourceReddit
	default:
		return ""
	}
}

func (l Location) String() string {
	return string(l)
}
