package collector

import (
	"testing"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRepositoryFullFields(t *testing.T) {
	created := github.Timestamp{Time: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
	updated := github.Timestamp{Time: time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC)}
	description := "A fast widget compiler"
	language := "Go"

	repo := &github.Repository{
		ID:              github.Int64(12345),
		FullName:        github.String("acme/widgets"),
		Description:     &description,
		StargazersCount: github.Int(987),
		ForksCount:      github.Int(44),
		Language:        &language,
		HTMLURL:         github.String("https://github.com/acme/widgets"),
		CreatedAt:       &created,
		UpdatedAt:       &updated,
		Topics:          []string{"go", "compiler"},
	}

	rec := normalizeRepository(repo, "# Widgets\nbuild fast", 200000)

	assert.Equal(t, int64(12345), rec.ID)
	assert.Equal(t, "acme/widgets", rec.Name)
	require.NotNil(t, rec.Description)
	assert.Equal(t, description, *rec.Description)
	assert.Equal(t, 987, rec.Stars)
	assert.Equal(t, 44, rec.Forks)
	require.NotNil(t, rec.Language)
	assert.Equal(t, "Go", *rec.Language)
	assert.Equal(t, "https://github.com/acme/widgets", rec.URL)
	require.NotNil(t, rec.CreatedAt)
	assert.Equal(t, "2024-03-15T10:00:00Z", *rec.CreatedAt)
	require.NotNil(t, rec.UpdatedAt)
	assert.Equal(t, "2025-01-02T08:30:00Z", *rec.UpdatedAt)
	assert.Equal(t, []string{"go", "compiler"}, rec.Topics)
	assert.Equal(t, "# Widgets\nbuild fast", rec.ReadmeContent)
}

func TestNormalizeRepositoryMissingOptionals(t *testing.T) {
	repo := &github.Repository{
		ID:       github.Int64(1),
		FullName: github.String("acme/bare"),
		HTMLURL:  github.String("https://github.com/acme/bare"),
	}

	rec := normalizeRepository(repo, "", 200000)

	assert.Nil(t, rec.Description)
	assert.Nil(t, rec.Language)
	assert.Nil(t, rec.CreatedAt)
	assert.Nil(t, rec.UpdatedAt)
	require.NotNil(t, rec.Topics)
	assert.Empty(t, rec.Topics)
	assert.Empty(t, rec.ReadmeContent)
}

func TestNormalizeRepositoryTruncatesReadme(t *testing.T) {
	repo := &github.Repository{
		ID:       github.Int64(1),
		FullName: github.String("acme/long"),
	}

	rec := normalizeRepository(repo, "abcdefghij", 4)
	assert.Equal(t, "abcd", rec.ReadmeContent)
}

func TestIsoTime(t *testing.T) {
	assert.Nil(t, isoTime(nil))

	est := time.FixedZone("EST", -5*3600)
	ts := &github.Timestamp{Time: time.Date(2024, 6, 1, 9, 0, 0, 0, est)}
	got := isoTime(ts)
	require.NotNil(t, got)
	assert.Equal(t, "2024-06-01T14:00:00Z", *got)
}
