package collector

import (
	"context"
	"strings"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/codeinsight/insight-agent/internal/config"
	"github.com/codeinsight/insight-agent/internal/domain"
)

// redditCollector implements RedditSource using the authenticated Reddit API
type redditCollector struct {
	client  *reddit.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewRedditCollector creates a Reddit collector with script-app credentials
func NewRedditCollector(id, secret, username, password, userAgent string) (RedditSource, error) {
	creds := reddit.Credentials{ID: id, Secret: secret, Username: username, Password: password}

	client, err := reddit.NewClient(creds, reddit.WithUserAgent(userAgent))
	if err != nil {
		return nil, eris.Wrap(err, "reddit: create client")
	}

	// API rate limit: ~60 reqs/min (safe buffer)
	limiter := rate.NewLimiter(rate.Every(time.Second), 1)

	return &redditCollector{
		client:  client,
		limiter: limiter,
		log:     zap.L(),
	}, nil
}

// SearchPosts searches a subreddit and normalizes the results. Comment
// sampling failures for one post are logged and leave that record's sample
// empty without aborting the batch.
func (c *redditCollector) SearchPosts(ctx context.Context, subreddit, query string, limit int, sort, timeFilter string) (*domain.Collection, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	opts := &reddit.ListPostSearchOptions{
		ListPostOptions: reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: limit},
			Time:        timeFilter,
		},
		Sort: sort,
	}

	posts, _, err := c.client.Subreddit.SearchPosts(ctx, query, subreddit, opts)
	if err != nil {
		return nil, eris.Wrapf(err, "reddit: search r/%s for %q", subreddit, query)
	}

	var records []domain.Record
	for _, post := range posts {
		sample, err := c.sampleComments(ctx, post.ID)
		if err != nil {
			c.log.Debug("comment sample unavailable",
				zap.String("post", post.ID),
				zap.Error(err))
			sample = ""
		}
		records = append(records, normalizePost(post, sample))
		c.log.Info("added post",
			zap.String("title", post.Title),
			zap.Int("score", post.Score))
	}

	return domain.NewCollection(domain.SourceReddit, records), nil
}

// sampleComments joins up to CommentSampleSize top-level comment bodies,
// each truncated to MaxCommentChars, skipping deleted and removed ones.
func (c *redditCollector) sampleComments(ctx context.Context, postID string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	postAndComments, _, err := c.client.Post.Get(ctx, postID)
	if err != nil {
		return "", eris.Wrapf(err, "reddit: get comments for %s", postID)
	}
	return buildCommentSample(postAndComments.Comments), nil
}

// buildCommentSample selects the sample bodies out of a post's top-level
// comments
func buildCommentSample(comments []*reddit.Comment) string {
	var bodies []string
	for _, comment := range comments {
		if len(bodies) >= config.DefaultCommentSampleSize {
			break
		}
		if comment.Body == "[deleted]" || comment.Body == "[removed]" {
			continue
		}
		bodies = append(bodies, domain.TruncateChars(comment.Body, config.DefaultMaxCommentChars))
	}
	return strings.Join(bodies, "\n---\n")
}

// normalizePost maps a Reddit API submission into the flat record shape.
// The API client does not expose link flair, so flair is stored as an
// explicit null to keep the field set uniform.
func normalizePost(post *reddit.Post, commentsSample string) *domain.PostRecord {
	author := post.Author
	if author == "" {
		author = domain.DeletedAuthor
	}

	var createdUTC float64
	if post.Created != nil {
		createdUTC = float64(post.Created.Time.Unix())
	}

	return &domain.PostRecord{
		ID:               post.ID,
		Title:            post.Title,
		Score:            post.Score,
		URL:              post.URL,
		Permalink:        "https://www.reddit.com" + post.Permalink,
		Selftext:         post.Body,
		CreatedUTC:       createdUTC,
		NumCommentsTotal: post.NumberOfComments,
		Author:           author,
		Flair:            nil,
		CommentsSample:   commentsSample,
	}
}
