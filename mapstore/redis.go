package mapstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each map as a hash <prefix>:map:<name> and the map names
// in the set <prefix>:maps.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = &RedisStore{}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) namesKey() string {
	return s.prefix + ":maps"
}

func (s *RedisStore) mapKey(name string) string {
	return s.prefix + ":map:" + name
}

func (s *RedisStore) Names(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.namesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("error listing maps: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisStore) Load(ctx context.Context, name string) (*Definition, error) {
	fields, err := s.client.HGetAll(ctx, s.mapKey(name)).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading map %s: %w", name, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return fromFields(name, fields)
}

func (s *RedisStore) Save(ctx context.Context, def *Definition) error {
	values := make(map[string]interface{})
	for k, v := range def.fields() {
		values[k] = v
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.mapKey(def.Name))
		pipe.HSet(ctx, s.mapKey(def.Name), values)
		pipe.SAdd(ctx, s.namesKey(), def.Name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error saving map %s: %w", def.Name, err)
	}
	return nil
}
