package cloudsync

import (
	"context"
	"encoding/json"
	"fmt"

	"HabitSentinel/internal/model"

	"github.com/redis/go-redis/v9"
)

// RedisRemote keeps each week document as a Redis hash. HSET only touches
// the given fields, which gives merge-write semantics.
type RedisRemote struct {
	client *redis.Client
}

func NewRedisRemote(client *redis.Client) *RedisRemote {
	return &RedisRemote{client: client}
}

// DialRedis connects to url (redis://host:port/db) and pings it.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisRemote) SetFields(ctx context.Context, uid, week string, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}
	values := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		if s, ok := v.(string); ok {
			values = append(values, k, s)
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode field %s: %w", k, err)
		}
		values = append(values, k, string(data))
	}
	if err := r.client.HSet(ctx, DocumentPath(uid, week), values...).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", DocumentPath(uid, week), err)
	}
	return nil
}

func (r *RedisRemote) GetDocument(ctx context.Context, uid, week string) (*model.WeekDocument, error) {
	m, err := r.client.HGetAll(ctx, DocumentPath(uid, week)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", DocumentPath(uid, week), err)
	}
	if len(m) == 0 {
		return nil, nil
	}

	doc := &model.WeekDocument{WeekStart: m[FieldWeekStart]}
	if raw, ok := m[FieldWaterTotals]; ok {
		var totals []int
		if json.Unmarshal([]byte(raw), &totals) == nil {
			doc.WaterTotalsML = totals
		}
	}
	if raw, ok := m[FieldSleepHours]; ok {
		var hours []float64
		if json.Unmarshal([]byte(raw), &hours) == nil {
			doc.SleepHours = hours
		}
	}
	return doc, nil
}
