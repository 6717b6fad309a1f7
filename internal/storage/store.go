package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/codeinsight/insight-agent/internal/domain"
	apperrors "github.com/codeinsight/insight-agent/internal/errors"
)

// filenameTimestamp keeps batch filenames sortable and unique at
// one-fetch-per-second call rates
const filenameTimestamp = "20060102150405"

// Store persists fetched collections under the tiered fallback scheme and
// loads them back by locator.
type Store struct {
	remote RemoteStore // nil disables the remote tier
	local  *LocalStore
	log    *zap.Logger
	now    func() time.Time
}

// NewStore creates a tiered store. remote may be nil when the S3 tier is
// unconfigured or failed its startup probe.
func NewStore(remote RemoteStore, local *LocalStore) *Store {
	return &Store{
		remote: remote,
		local:  local,
		log:    zap.L(),
		now:    time.Now,
	}
}

// Persist serializes the collection and writes it exactly once: remote tier
// first when configured, local tier on any remote failure. The two tiers are
// strictly ordered; at most one write path is attempted beyond the first
// success. Both tiers failing returns an error and persists nothing.
func (s *Store) Persist(ctx context.Context, c *domain.Collection, queryLabel string) (Location, error) {
	body, err := encodeRecords(c.Records)
	if err != nil {
		return "", eris.Wrap(err, "store: encode collection")
	}

	filename := fmt.Sprintf("%s_%s_%s.json",
		c.Source, SanitizeKey(queryLabel), s.now().Format(filenameTimestamp))

	if s.remote != nil {
		key := string(c.Source) + "_data/" + filename
		loc, err := s.remote.Put(ctx, key, body)
		if err == nil {
			s.log.Info("saved collection to remote store",
				zap.String("location", loc.String()),
				zap.Int("records", c.Len()))
			return loc, nil
		}
		s.log.Warn("remote save failed, falling back to local storage",
			zap.String("key", key),
			zap.Error(err))
	}

	loc, err := s.local.Put(filename, body)
	if err != nil {
		return "", eris.Wrap(err, "store: local save failed")
	}
	s.log.Info("saved collection to local store",
		zap.String("location", loc.String()),
		zap.Int("records", c.Len()))
	return loc, nil
}

// Load fetches the collection at loc. The locator is authoritative: a
// remote locator is only ever resolved against the remote tier, a local one
// against the filesystem. Every failure mode (unconfigured backend, missing
// object or file, malformed payload, unrecognized source type) logs its
// cause and returns an empty collection rather than an error.
func (s *Store) Load(ctx context.Context, loc Location) *domain.Collection {
	source := loc.InferSource()
	if !domain.KnownSource(source) {
		s.log.Warn("cannot infer source type from location",
			zap.String("location", loc.String()))
		return domain.EmptyCollection(source)
	}

	var body []byte
	var err error
	if loc.IsRemote() {
		body, err = s.loadRemote(ctx, loc)
	} else {
		body, err = s.local.Get(string(loc))
	}
	if err != nil {
		s.log.Warn("load failed",
			zap.String("location", loc.String()),
			zap.Error(err))
		return domain.EmptyCollection(source)
	}

	records, err := decodeRecords(source, body)
	if err != nil {
		s.log.Warn("stored payload is malformed",
			zap.String("location", loc.String()),
			zap.Error(err))
		return domain.EmptyCollection(source)
	}

	s.log.Info("loaded collection",
		zap.String("location", loc.String()),
		zap.Int("records", len(records)))
	return domain.NewCollection(source, records)
}

func (s *Store) loadRemote(ctx context.Context, loc Location) ([]byte, error) {
	if s.remote == nil {
		return nil, apperrors.NewConfigurationAbsentError("remote storage")
	}
	bucket, key, ok := loc.BucketKey()
	if !ok {
		return nil, apperrors.NewNotFoundError("malformed remote locator " + loc.String())
	}
	return s.remote.Get(ctx, bucket, key)
}

// encodeRecords renders the persisted format: a pretty-printed UTF-8 JSON
// array with non-ASCII characters and HTML metacharacters left literal.
func encodeRecords(records []domain.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if records == nil {
		records = []domain.Record{}
	}
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeRecords parses a persisted payload back into typed records,
// rejecting anything that is not an array of objects carrying the source
// schema's full field set.
func decodeRecords(source domain.SourceType, body []byte) ([]domain.Record, error) {
	var rawRecords []json.RawMessage
	if err := json.Unmarshal(body, &rawRecords); err != nil {
		return nil, apperrors.NewMalformedPayloadError("payload is not a JSON array", err)
	}

	required := domain.RequiredKeys(source)
	records := make([]domain.Record, 0, len(rawRecords))
	for i, raw := range rawRecords {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, apperrors.NewMalformedPayloadError(
				fmt.Sprintf("element %d is not an object", i), err)
		}
		for _, key := range required {
			if _, ok := fields[key]; !ok {
				return nil, apperrors.NewMalformedPayloadError(
					fmt.Sprintf("element %d is missing field %q", i, key), nil)
			}
		}
		rec, err := domain.DecodeRecord(source, raw)
		if err != nil {
			return nil, apperrors.NewMalformedPayloadError(
				fmt.Sprintf("element %d does not decode as a %s record", i, source), err)
		}
		records = append(records, rec)
	}
	return records, nil
}
