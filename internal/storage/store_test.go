package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeinsight/insight-agent/internal/domain"
)

// failingRemote simulates an unreachable remote tier
type failingRemote struct {
	putCalls int
	getCalls int
}

func (f *failingRemote) Put(ctx context.Context, key string, body []byte) (Location, error) {
	f.putCalls++
	return "", errors.New("connection refused")
}

func (f *failingRemote) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	f.getCalls++
	return nil, errors.New("connection refused")
}

// memoryRemote is an in-memory remote tier for round-trip tests
type memoryRemote struct {
	bucket  string
	objects map[string][]byte
}

func newMemoryRemote(bucket string) *memoryRemote {
	return &memoryRemote{bucket: bucket, objects: map[string][]byte{}}
}

func (m *memoryRemote) Put(ctx context.Context, key string, body []byte) (Location, error) {
	m.objects[key] = body
	return Location("s3://" + m.bucket + "/" + key), nil
}

func (m *memoryRemote) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	body, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return body, nil
}

func desc(s string) *string { return &s }

func repoCollection() *domain.Collection {
	return domain.NewCollection(domain.SourceGitHub, []domain.Record{
		&domain.RepoRecord{
			ID:            1,
			Name:          "acme/widgets",
			Description:   desc("A widget factory — with café"),
			Stars:         42,
			Forks:         7,
			URL:           "https://github.com/acme/widgets",
			Topics:        []string{"go", "widgets"},
			ReadmeContent: "Widgets <b>and</b> more widgets",
		},
		&domain.RepoRecord{
			ID:     2,
			Name:   "acme/sprockets",
			Stars:  9,
			Topics: []string{},
		},
	})
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	}
}

func newLocalOnlyStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(nil, NewLocalStore(t.TempDir()))
	s.now = fixedClock()
	return s
}

func TestPersistLocalRoundTrip(t *testing.T) {
	store := newLocalOnlyStore(t)
	ctx := context.Background()
	original := repoCollection()

	loc, err := store.Persist(ctx, original, "widget factory")
	require.NoError(t, err)
	assert.False(t, loc.IsRemote())
	assert.Equal(t, "github_widget_factory_20250601123045.json", filepath.Base(loc.String()))

	loaded := store.Load(ctx, loc)
	require.Equal(t, original.Len(), loaded.Len())
	assert.Equal(t, domain.SourceGitHub, loaded.Source)
	for i := range original.Records {
		assert.Equal(t, original.Records[i], loaded.Records[i])
	}
}

func TestPersistPayloadFormat(t *testing.T) {
	store := newLocalOnlyStore(t)
	loc, err := store.Persist(context.Background(), repoCollection(), "widgets")
	require.NoError(t, err)

	body, err := os.ReadFile(loc.String())
	require.NoError(t, err)

	// Pretty-printed array of flat objects
	assert.True(t, strings.HasPrefix(string(body), "[\n"))
	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(body, &parsed))
	require.Len(t, parsed, 2)

	// Nullable fields are explicit nulls, never absent keys
	_, hasDesc := parsed[1]["description"]
	assert.True(t, hasDesc)
	assert.Nil(t, parsed[1]["description"])

	// Non-ASCII and HTML characters are preserved literally
	assert.Contains(t, string(body), "café")
	assert.Contains(t, string(body), "<b>and</b>")
}

func TestPersistRemoteSuccess(t *testing.T) {
	remote := newMemoryRemote("insight-bucket")
	store := NewStore(remote, NewLocalStore(t.TempDir()))
	store.now = fixedClock()
	ctx := context.Background()

	loc, err := store.Persist(ctx, repoCollection(), "widgets")
	require.NoError(t, err)
	assert.Equal(t, Location("s3://insight-bucket/github_data/github_widgets_20250601123045.json"), loc)

	loaded := store.Load(ctx, loc)
	assert.Equal(t, 2, loaded.Len())
}

func TestPersistFallsBackToLocal(t *testing.T) {
	remote := &failingRemote{}
	dir := t.TempDir()
	store := NewStore(remote, NewLocalStore(dir))
	store.now = fixedClock()

	loc, err := store.Persist(context.Background(), repoCollection(), "widgets")
	require.NoError(t, err)
	assert.Equal(t, 1, remote.putCalls)
	assert.False(t, loc.IsRemote())

	// The fallback file exists and is readable at the returned location
	body, err := os.ReadFile(loc.String())
	require.NoError(t, err)
	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(body, &parsed))
	assert.Len(t, parsed, 2)
}

func TestPersistBothTiersFail(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("not a directory"), 0o644))

	store := NewStore(&failingRemote{}, NewLocalStore(filepath.Join(blocked, "data")))
	_, err := store.Persist(context.Background(), repoCollection(), "widgets")
	assert.Error(t, err)

	// Nothing was persisted
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Len(t, entries, 1)
}

func TestLoadNonexistentLocalLocation(t *testing.T) {
	store := newLocalOnlyStore(t)
	loaded := store.Load(context.Background(), Location("data/github_gone_20250101120000.json"))
	require.NotNil(t, loaded)
	assert.True(t, loaded.IsEmpty())
}

func TestLoadRemoteLocatorWithoutRemoteTier(t *testing.T) {
	// A remote locator never falls back to local on load
	store := newLocalOnlyStore(t)
	loaded := store.Load(context.Background(), Location("s3://bucket/github_data/github_q_20250101120000.json"))
	assert.True(t, loaded.IsEmpty())
}

func TestLoadRemoteFailureDoesNotTryLocal(t *testing.T) {
	remote := &failingRemote{}
	store := NewStore(remote, NewLocalStore(t.TempDir()))

	loaded := store.Load(context.Background(), Location("s3://bucket/github_data/github_q_20250101120000.json"))
	assert.True(t, loaded.IsEmpty())
	assert.Equal(t, 1, remote.getCalls)
}

func TestLoadMalformedPayload(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(nil, NewLocalStore(dir))

	cases := []struct {
		name string
		body string
	}{
		{"not json", "definitely not json"},
		{"not an array", `{"id": 1}`},
		{"array of non-objects", `[1, 2, 3]`},
		{"missing required fields", `[{"id": 1, "name": "acme/widgets"}]`},
		{"wrong field type", `[{"id": 1, "name": "a", "stars": "many", "forks": 0, "url": "", "topics": [], "readme_content": ""}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, "github_bad_20250101120000.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.body), 0o644))
			loaded := store.Load(context.Background(), Location(path))
			require.NotNil(t, loaded)
			assert.True(t, loaded.IsEmpty())
		})
	}
}

func TestLoadUnknownSourceLocator(t *testing.T) {
	store := newLocalOnlyStore(t)
	loaded := store.Load(context.Background(), Location("data/mystery_batch.json"))
	assert.True(t, loaded.IsEmpty())
}

func TestLoadRedditRoundTrip(t *testing.T) {
	store := newLocalOnlyStore(t)
	ctx := context.Background()

	flair := "Discussion"
	original := domain.NewCollection(domain.SourceReddit, []domain.Record{
		&domain.PostRecord{
			ID:               "abc123",
			Title:            "Why I love Go",
			Score:            -3,
			URL:              "https://example.com",
			Permalink:        "https://www.reddit.com/r/golang/comments/abc123",
			Selftext:         "Generics changed everything",
			CreatedUTC:       1717243845.0,
			NumCommentsTotal: 12,
			Author:           "gopher",
			Flair:            &flair,
			CommentsSample:   "first\n---\nsecond",
		},
	})

	loc, err := store.Persist(ctx, original, "golang_generics")
	require.NoError(t, err)

	loaded := store.Load(ctx, loc)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, domain.SourceReddit, loaded.Source)
	assert.Equal(t, original.Records[0], loaded.Records[0])
}
