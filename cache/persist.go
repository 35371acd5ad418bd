package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

type snapshot struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Client) persist(ctx context.Context, key Key, hash string, data any, updatedAt time.Time) {
	if c.store == nil {
		return
	}

	raw, err := c.serializer.Serialize(data)
	if err != nil {
		c.logger.WarnCtx(ctx, "serialize snapshot failed", zap.Stringer("key", key), zap.Error(ErrSerialize.Wrap(err)))
		return
	}
	payload, err := c.serializer.Serialize(snapshot{Key: key.String(), Data: raw, UpdatedAt: updatedAt})
	if err != nil {
		c.logger.WarnCtx(ctx, "serialize snapshot failed", zap.Stringer("key", key), zap.Error(ErrSerialize.Wrap(err)))
		return
	}
	if err := c.store.Set(ctx, hash, payload, c.cfg.GCTime); err != nil {
		c.logger.WarnCtx(ctx, "persist snapshot failed", zap.String("store", c.store.Name()), zap.Stringer("key", key), zap.Error(err))
	}
}

// hydrate seeds an empty entry from its persisted snapshot. The data is kept
// as Raw and the entry stays stale, so the fetch that follows still runs.
func (c *Client) hydrate(ctx context.Context, key Key, hash string, gen uint64) {
	payload, err := c.store.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.WarnCtx(ctx, "read snapshot failed", zap.String("store", c.store.Name()), zap.Stringer("key", key), zap.Error(err))
		}
		return
	}

	var snap snapshot
	if err := c.serializer.Deserialize(payload, &snap); err != nil {
		c.logger.WarnCtx(ctx, "decode snapshot failed", zap.Stringer("key", key), zap.Error(ErrDeserialize.Wrap(err)))
		return
	}

	c.mu.Lock()
	e := c.current(hash, gen)
	if e == nil || e.state.HasData() {
		c.mu.Unlock()
		return
	}
	e.state.Data = Raw(snap.Data)
	e.state.UpdatedAt = snap.UpdatedAt
	e.state.Status = StatusSuccess
	e.state.Hydrated = true
	st := e.snapshot()
	c.mu.Unlock()

	c.logger.DebugCtx(ctx, "cache entry hydrated", zap.Stringer("key", key), zap.Time("updated_at", snap.UpdatedAt))
	c.notify(ctx, st)
}

// Decode unmarshals hydrated data into v.
func (c *Client) Decode(raw Raw, v any) error {
	if err := c.serializer.Deserialize(raw, v); err != nil {
		return ErrDeserialize.Wrap(err)
	}
	return nil
}
