package publisher

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/riskibarqy/matchwatch/internal/domain/match"
	"github.com/riskibarqy/matchwatch/internal/platform/logging"
)

const (
	DefaultKeyPrefix = "matchwatch:record:"
	DefaultStream    = "matchwatch:updates"

	streamMaxLen = 10_000
)

type RecordStreamConfig struct {
	TTL       time.Duration
	KeyPrefix string
	Stream    string
	Logger    *logging.Logger
}

// RecordStream writes each player's record to a key and announces changed players on a stream.
// Unchanged records are skipped, so consumers only see real updates.
type RecordStream struct {
	client    redis.Cmdable
	ttl       time.Duration
	keyPrefix string
	stream    string
	logger    *logging.Logger

	mu        sync.Mutex
	published map[string]uint64
}

// Dial connects to url and pings it.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRecordStream(client redis.Cmdable, cfg RecordStreamConfig) *RecordStream {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &RecordStream{
		client:    client,
		ttl:       cfg.TTL,
		keyPrefix: cfg.KeyPrefix,
		stream:    cfg.Stream,
		logger:    cfg.Logger,
		published: make(map[string]uint64),
	}
}

// PublishRecords pushes the records that changed since the last successful publish.
func (p *RecordStream) PublishRecords(ctx context.Context, records []match.Record) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	changed, fingerprints, err := p.diff(records)
	if err != nil {
		return 0, err
	}
	if len(changed) == 0 {
		return 0, nil
	}

	pipe := p.client.Pipeline()
	for _, c := range changed {
		pipe.Set(ctx, p.keyPrefix+c.record.PlayerID, c.payload, p.ttl)
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: streamMaxLen,
			Approx: true,
			Values: map[string]any{
				"player_id":  c.record.PlayerID,
				"status":     string(c.record.Status),
				"updated_at": c.record.UpdatedAt.UTC().Format(time.RFC3339),
			},
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("publish %d records: %w", len(changed), err)
	}

	for id, fp := range fingerprints {
		p.published[id] = fp
	}
	p.logger.DebugContext(ctx, "records published", "changed", len(changed), "stream", p.stream)
	return len(changed), nil
}

// Forget drops the publish history so the next call republishes everything.
func (p *RecordStream) Forget() {
	p.mu.Lock()
	p.published = make(map[string]uint64)
	p.mu.Unlock()
}

type changedRecord struct {
	record  match.Record
	payload []byte
}

func (p *RecordStream) diff(records []match.Record) ([]changedRecord, map[string]uint64, error) {
	sorted := append([]match.Record(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PlayerID < sorted[j].PlayerID })

	var changed []changedRecord
	fingerprints := make(map[string]uint64)
	for _, rec := range sorted {
		fp, err := fingerprint(rec)
		if err != nil {
			return nil, nil, err
		}
		if prev, ok := p.published[rec.PlayerID]; ok && prev == fp {
			continue
		}
		payload, err := sonic.Marshal(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("encode record %s: %w", rec.PlayerID, err)
		}
		changed = append(changed, changedRecord{record: rec, payload: payload})
		fingerprints[rec.PlayerID] = fp
	}
	return changed, fingerprints, nil
}

// fingerprint hashes a record without its timestamp, so a recomputed but identical record
// is not announced again.
func fingerprint(rec match.Record) (uint64, error) {
	rec.UpdatedAt = time.Time{}
	data, err := sonic.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("fingerprint record %s: %w", rec.PlayerID, err)
	}
	return xxhash.Sum64(data), nil
}
