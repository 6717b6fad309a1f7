package domain

import "encoding/json"

// Collection is an ordered batch of normalized records from one fetch
// operation. It is immutable once persisted; a stored batch is identified
// only by its storage locator.
type Collection struct {
	Source  SourceType
	Records []Record
}

// NewCollection creates a collection for a source type
func NewCollection(source SourceType, records []Record) *Collection {
	return &Collection{Source: source, Records: records}
}

// EmptyCollection returns a collection with no records. Load failures
// resolve to this rather than an error.
func EmptyCollection(source SourceType) *Collection {
	return &Collection{Source: source}
}

// Len returns the number of records
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// IsEmpty reports whether the collection holds no records
func (c *Collection) IsEmpty() bool {
	return c.Len() == 0
}

// At returns the record at index i
func (c *Collection) At(i int) Record {
	return c.Records[i]
}

// schema describes the persisted shape of one source type: the keys every
// stored object must carry and how to decode an object back into its
// concrete record type.
type schema struct {
	requiredKeys []string
	decode       func(raw json.RawMessage) (Record, error)
}

var schemas = map[SourceType]schema{
	SourceGitHub: {
		requiredKeys: []string{"id", "name", "stars", "forks", "url", "topics", "readme_content"},
		decode: func(raw json.RawMessage) (Record, error) {
			var rec RepoRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, err
			}
			if rec.Topics == nil {
				rec.Topics = []string{}
			}
			return &rec, nil
		},
	},
	SourceReddit: {
		requiredKeys: []string{"id", "title", "score", "url", "permalink", "selftext", "comments_sample"},
		decode: func(raw json.RawMessage) (Record, error) {
			var rec PostRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, err
			}
			return &rec, nil
		},
	},
}

// KnownSource reports whether records of this source type can be decoded
func KnownSource(source SourceType) bool {
	_, ok := schemas[source]
	return ok
}

// RequiredKeys returns the keys every persisted object of this source type
// must carry. Empty for unknown source types.
func RequiredKeys(source SourceType) []string {
	return schemas[source].requiredKeys
}

// DecodeRecord decodes one persisted object into its concrete record type
func DecodeRecord(source SourceType, raw json.RawMessage) (Record, error) {
	s, ok := schemas[source]
	if !ok {
		return nil, errUnknownSource(source)
	}
	return s.decode(raw)
}

type unknownSourceError struct {
	source SourceType
}

func (e *unknownSourceError) Error() string {
	return "unknown source type: " + string(e.source)
}

func errUnknownSource(source SourceType) error {
	return &unknownSourceError{source: source}
}
