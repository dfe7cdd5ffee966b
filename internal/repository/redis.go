package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/atinyakov/linkshort/internal/storage"
)

// Each link is a hash under <prefix>link:<code>; a sorted set scored by
// creation time (unix micro) keeps listing order.
const (
	fieldTargetURL   = "target_url"
	fieldTotalClicks = "total_clicks"
	fieldLastClicked = "last_clicked_at"
	fieldCreatedAt   = "created_at"
)

var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], 'target_url', ARGV[1], 'total_clicks', 0, 'created_at', ARGV[2])
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])
return 1
`)

var incrementScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
local created = redis.call('HGET', KEYS[1], 'created_at')
local at = ARGV[1]
if tonumber(at) < tonumber(created) then
	at = created
end
redis.call('HINCRBY', KEYS[1], 'total_clicks', 1)
redis.call('HSET', KEYS[1], 'last_clicked_at', at)
return 1
`)

type RedisRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

func NewRedisRepository(client *redis.Client, prefix string, logger *zap.Logger) *RedisRepository {
	return &RedisRepository{
		client: client,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

func (r *RedisRepository) linkKey(code string) string {
	return r.prefix + "link:" + code
}

func (r *RedisRepository) indexKey() string {
	return r.prefix + "links:created"
}

func (r *RedisRepository) Insert(ctx context.Context, code, targetURL string) (*storage.LinkRecord, error) {
	created := r.now().UTC().Truncate(time.Microsecond)

	ok, err := insertScript.Run(ctx, r.client,
		[]string{r.linkKey(code), r.indexKey()},
		targetURL, created.UnixMicro(), code,
	).Int()
	if err != nil {
		r.logger.Error("insert link", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("insert link: %w", err)
	}

	if ok == 0 {
		return nil, storage.ErrConflict
	}

	return &storage.LinkRecord{
		Code:      code,
		TargetURL: targetURL,
		CreatedAt: created,
	}, nil
}

func (r *RedisRepository) FindByCode(ctx context.Context, code string) (*storage.LinkRecord, error) {
	fields, err := r.client.HGetAll(ctx, r.linkKey(code)).Result()
	if err != nil {
		return nil, fmt.Errorf("find link: %w", err)
	}

	if len(fields) == 0 {
		return nil, storage.ErrNotFound
	}

	return parseLinkHash(code, fields)
}

func (r *RedisRepository) FindAll(ctx context.Context) ([]storage.LinkRecord, error) {
	codes, err := r.client.ZRevRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, len(codes))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, code := range codes {
			cmds[i] = pipe.HGetAll(ctx, r.linkKey(code))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}

	records := make([]storage.LinkRecord, 0, len(codes))
	for i, cmd := range cmds {
		fields := cmd.Val()
		// deleted between ZREVRANGE and HGETALL
		if len(fields) == 0 {
			continue
		}

		rec, err := parseLinkHash(codes[i], fields)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	return records, nil
}

func (r *RedisRepository) DeleteByCode(ctx context.Context, code string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.linkKey(code))
		pipe.ZRem(ctx, r.indexKey(), code)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}

func (r *RedisRepository) IncrementClicks(ctx context.Context, code string) error {
	ok, err := incrementScript.Run(ctx, r.client,
		[]string{r.linkKey(code)},
		r.now().UTC().UnixMicro(),
	).Int()
	if err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}

	if ok == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *RedisRepository) PingContext(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func parseLinkHash(code string, fields map[string]string) (*storage.LinkRecord, error) {
	rec := &storage.LinkRecord{
		Code:      code,
		TargetURL: fields[fieldTargetURL],
	}

	clicks, err := strconv.ParseInt(fields[fieldTotalClicks], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("link %s: bad %s: %w", code, fieldTotalClicks, err)
	}
	rec.TotalClicks = clicks

	created, err := parseMicros(fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("link %s: bad %s: %w", code, fieldCreatedAt, err)
	}
	rec.CreatedAt = created

	if raw, ok := fields[fieldLastClicked]; ok {
		last, err := parseMicros(raw)
		if err != nil {
			return nil, fmt.Errorf("link %s: bad %s: %w", code, fieldLastClicked, err)
		}
		rec.LastClickedAt = &last
	}

	return rec, nil
}

func parseMicros(s string) (time.Time, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMicro(v).UTC(), nil
}
