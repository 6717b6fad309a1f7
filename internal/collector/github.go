package collector

import (
	"context"
	"strings"
	"time"

	"github.com/google/go-github/v55/github"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/codeinsight/insight-agent/internal/domain"
)

// githubCollector implements GitHubSource using the GitHub search API
type githubCollector struct {
	client         *github.Client
	rateLimiter    RateLimiter
	maxReadmeChars int
	log            *zap.Logger
}

// NewGitHubCollector creates a GitHub collector authenticated with token
func NewGitHubCollector(token string, maxReadmeChars int) GitHubSource {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	return &githubCollector{
		client:         client,
		rateLimiter:    NewRateLimiter(),
		maxReadmeChars: maxReadmeChars,
		log:            zap.L(),
	}
}

// SearchRepositories searches repositories by stars descending and
// normalizes the top results. A failed README fetch for one repository is
// logged and leaves that record's readme empty; it never aborts the batch.
func (c *githubCollector) SearchRepositories(ctx context.Context, query string, limit int) (*domain.Collection, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	perPage := limit
	if perPage > 100 {
		perPage = 100
	}
	opts := &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var records []domain.Record
	for {
		result, resp, err := c.client.Search.Repositories(ctx, query, opts)
		if err != nil {
			return nil, eris.Wrapf(err, "github: search repositories %q", query)
		}
		c.updateRateLimitFromResponse(resp)

		for _, repo := range result.Repositories {
			if len(records) >= limit {
				break
			}
			readme, err := c.fetchReadme(ctx, repo.GetFullName())
			if err != nil {
				// Missing or undecodable README: keep the record, note the cause
				c.log.Debug("readme unavailable",
					zap.String("repo", repo.GetFullName()),
					zap.Error(err))
				readme = ""
			}
			records = append(records, normalizeRepository(repo, readme, c.maxReadmeChars))
			c.log.Info("added repository",
				zap.String("repo", repo.GetFullName()),
				zap.Int("stars", repo.GetStargazersCount()))
		}

		if len(records) >= limit || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return domain.NewCollection(domain.SourceGitHub, records), nil
}

// fetchReadme returns the decoded README text for owner/repo
func (c *githubCollector) fetchReadme(ctx context.Context, fullName string) (string, error) {
	owner, repo, found := strings.Cut(fullName, "/")
	if !found {
		return "", eris.Errorf("github: unexpected repository name %q", fullName)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	content, resp, err := c.client.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		return "", eris.Wrapf(err, "github: get readme for %s", fullName)
	}
	c.updateRateLimitFromResponse(resp)

	text, err := content.GetContent()
	if err != nil {
		return "", eris.Wrapf(err, "github: decode readme for %s", fullName)
	}
	return text, nil
}

// normalizeRepository maps a GitHub API repository into the flat record
// shape. Nullable API fields stay nullable; the topic list is never nil.
func normalizeRepository(repo *github.Repository, readme string, maxReadmeChars int) *domain.RepoRecord {
	topics := repo.Topics
	if topics == nil {
		topics = []string{}
	}

	return &domain.RepoRecord{
		ID:            repo.GetID(),
		Name:          repo.GetFullName(),
		Description:   repo.Description,
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		Language:      repo.Language,
		URL:           repo.GetHTMLURL(),
		CreatedAt:     isoTime(repo.CreatedAt),
		UpdatedAt:     isoTime(repo.UpdatedAt),
		Topics:        topics,
		ReadmeContent: domain.TruncateChars(readme, maxReadmeChars),
	}
}

// isoTime formats an optional GitHub timestamp as ISO-8601, preserving null
func isoTime(ts *github.Timestamp) *string {
	if ts == nil {
		return nil
	}
	s := ts.Time.UTC().Format(time.RFC3339)
	return &s
}

// updateRateLimitFromResponse updates the rate limiter from API response
func (c *githubCollector) updateRateLimitFromResponse(resp *github.Response) {
	if resp != nil && resp.Rate.Remaining >= 0 {
		c.rateLimiter.UpdateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}
