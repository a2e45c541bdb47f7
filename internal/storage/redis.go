package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisDriver satisfies the same key-value contract against a Redis
// instance; keys are namespaced so the database can be shared.
type RedisDriver struct {
	client    *redis.Client
	namespace string
	capacity  int64
}

func NewRedisDriver(client *redis.Client, namespace string, capacityBytes int64) *RedisDriver {
	if namespace == "" {
		namespace = "dadpack"
	}
	return &RedisDriver{client: client, namespace: namespace, capacity: capacityBytes}
}

func (d *RedisDriver) key(k string) string {
	return d.namespace + ":" + k
}

func (d *RedisDriver) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := d.client.Get(ctx, d.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (d *RedisDriver) Set(ctx context.Context, key string, value []byte) error {
	return d.client.Set(ctx, d.key(key), value, 0).Err()
}

func (d *RedisDriver) Remove(ctx context.Context, key string) error {
	return d.client.Del(ctx, d.key(key)).Err()
}

// Estimate walks the namespace and sums value sizes. The keyspace holds a
// handful of keys, so a SCAN per save is cheap.
func (d *RedisDriver) Estimate(ctx context.Context) (Quota, error) {
	var used int64
	iter := d.client.Scan(ctx, 0, d.namespace+":*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := d.client.StrLen(ctx, iter.Val()).Result()
		if err != nil {
			return Quota{}, err
		}
		used += n
	}
	if err := iter.Err(); err != nil {
		return Quota{}, err
	}
	return Quota{UsedBytes: used, TotalBytes: d.capacity}, nil
}
