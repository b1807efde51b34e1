package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/furnilabs/furnireco/internal/db"
)

// HSetMulti stores multiple hashes in a single DoMulti round-trip.
// HSET fully replaces listed fields, so re-writing a key with the same
// field set is an overwrite by id.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		cmd := s.b().Hset().Key(item.Key).FieldValue()
		for k, v := range item.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		cmds[i] = cmd.Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
		}
	}
	return nil
}
