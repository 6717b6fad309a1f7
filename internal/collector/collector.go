package collector

import (
	"context"

	"github.com/codeinsight/insight-agent/internal/domain"
)

// GitHubSource fetches and normalizes repository records
type GitHubSource interface {
	// SearchRepositories runs a repository search sorted by stars descending
	// and returns at most limit normalized records
	SearchRepositories(ctx context.Context, query string, limit int) (*domain.Collection, error)
}

// RedditSource fetches and normalizes discussion-post records
type RedditSource interface {
	// SearchPosts searches a subreddit and returns at most limit normalized
	// records. sort and timeFilter follow the Reddit search API values
	// (relevance/hot/top/new/comments and hour/day/week/month/year/all).
	SearchPosts(ctx context.Context, subreddit, query string, limit int, sort, timeFilter string) (*domain.Collection, error)
}
