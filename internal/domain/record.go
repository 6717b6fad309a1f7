package domain

import "strings"

// SourceType identifies which connector produced a collection
type SourceType string

const (
	SourceGitHub SourceType = "github"
	SourceReddit SourceType = "reddit"
)

// Record is the shared capability of all normalized records: every source
// type exposes a display label, a numeric ranking field, a search-text
// concatenation for mention counting, and a priority-ordered list of QA
// context candidates.
type Record interface {
	// Label returns the human-readable identifier used in reports
	Label() string

	// RankValue returns the source-specific ranking field (stars or score)
	RankValue() int

	// SearchText returns the concatenated text fields searched by mention
	// counting
	SearchText() string

	// ContextCandidates returns QA context candidates in priority order
	ContextCandidates() []string
}

// RepoRecord is a normalized GitHub repository. Every record carries the
// full field set; missing values are explicit nulls or empty strings, never
// absent keys, so persisted batches load as uniform tables.
type RepoRecord struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Description   *string  `json:"description"`
	Stars         int      `json:"stars"`
	Forks         int      `json:"forks"`
	Language      *string  `json:"language"`
	URL           string   `json:"url"`
	CreatedAt     *string  `json:"created_at"`
	UpdatedAt     *string  `json:"updated_at"`
	Topics        []string `json:"topics"`
	ReadmeContent string   `json:"readme_content"`
}

func (r *RepoRecord) Label() string { return r.Name }

func (r *RepoRecord) RankValue() int { return r.Stars }

func (r *RepoRecord) SearchText() string {
	desc := ""
	if r.Description != nil {
		desc = *r.Description
	}
	return desc + " " + r.ReadmeContent
}

func (r *RepoRecord) ContextCandidates() []string {
	desc := ""
	if r.Description != nil {
		desc = *r.Description
	}
	return []string{r.ReadmeContent, desc, r.Name}
}

// PostRecord is a normalized Reddit discussion post.
type PostRecord struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Score            int     `json:"score"`
	URL              string  `json:"url"`
	Permalink        string  `json:"permalink"`
	Selftext         string  `json:"selftext"`
	CreatedUTC       float64 `json:"created_utc"`
	NumCommentsTotal int     `json:"num_comments_total"`
	Author           string  `json:"author"`
	Flair            *string `json:"flair"`
	CommentsSample   string  `json:"comments_sample"`
}

func (p *PostRecord) Label() string { return p.Title }

func (p *PostRecord) RankValue() int { return p.Score }

func (p *PostRecord) SearchText() string {
	return p.Title + " " + p.Selftext + " " + p.CommentsSample
}

func (p *PostRecord) ContextCandidates() []string {
	return []string{p.Selftext, p.Title}
}

// TruncateChars truncates s to at most max characters (code points, not
// bytes, so multi-byte text never gets split mid-rune).
func TruncateChars(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// DeletedAuthor is the sentinel stored when a post's author is gone
const DeletedAuthor = "[deleted]"

// IsBlank reports whether s is empty or whitespace-only
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
