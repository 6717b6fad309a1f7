package qa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeinsight/insight-agent/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestSelectContextRepoPriority(t *testing.T) {
	rec := &domain.RepoRecord{
		Name:          "acme/widgets",
		Description:   strPtr("a widget factory"),
		ReadmeContent: "the readme text",
	}

	ctx, ok := SelectContext(rec)
	require.True(t, ok)
	assert.Equal(t, "the readme text", ctx)
}

func TestSelectContextRepoFallsBack(t *testing.T) {
	rec := &domain.RepoRecord{
		Name:          "acme/widgets",
		Description:   strPtr("a widget factory"),
		ReadmeContent: "   \n ",
	}

	ctx, ok := SelectContext(rec)
	require.True(t, ok)
	assert.Equal(t, "a widget factory", ctx)

	rec.Description = nil
	ctx, ok = SelectContext(rec)
	require.True(t, ok)
	assert.Equal(t, "acme/widgets", ctx)
}

func TestSelectContextPostPriority(t *testing.T) {
	rec := &domain.PostRecord{Title: "the title", Selftext: "the body"}

	ctx, ok := SelectContext(rec)
	require.True(t, ok)
	assert.Equal(t, "the body", ctx)

	rec.Selftext = ""
	ctx, ok = SelectContext(rec)
	require.True(t, ok)
	assert.Equal(t, "the title", ctx)
}

func TestSelectContextAllBlank(t *testing.T) {
	rec := &domain.PostRecord{Title: "  ", Selftext: ""}

	ctx, ok := SelectContext(rec)
	assert.False(t, ok)
	assert.Empty(t, ctx)
}
