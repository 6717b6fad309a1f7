package qa

import (
	"github.com/codeinsight/insight-agent/internal/domain"
)

// SelectContext picks the best available text field of a record for use as
// QA context: candidates are tried in the record's fixed priority order
// (repository: readme, description, name; post: selftext, title) and the
// first one with non-whitespace content wins. ok is false when every
// candidate is blank; callers must treat that as "no context available",
// not as an empty context.
func SelectContext(rec domain.Record) (string, bool) {
	for _, candidate := range rec.ContextCandidates() {
		if !domain.IsBlank(candidate) {
			return candidate, true
		}
	}
	return "", false
}
