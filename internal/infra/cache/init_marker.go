package cache

import (
	"context"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"

	"github.com/hhyyy9/logistics-platform"
)

const markerTTL = 24 * 60 * 60

// Store is the subset of the memcache client the marker needs.
type Store interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
}

// InitMarker remembers which accounts already ran the initialize transaction
// so a restarted process does not submit it again.
type InitMarker struct {
	mc     Store
	prefix string
}

func NewInitMarker(mc Store, moduleAddress string) *InitMarker {
	return &InitMarker{
		mc:     mc,
		prefix: "logistics:init:" + logistics.NormalizeAddress(moduleAddress) + ":",
	}
}

func (m *InitMarker) key(account string) string {
	return m.prefix + logistics.NormalizeAddress(account)
}

func (m *InitMarker) Initialized(ctx context.Context, account string) (bool, error) {
	_, err := m.mc.Get(m.key(account))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "memcache get")
	}
	return true, nil
}

func (m *InitMarker) MarkInitialized(ctx context.Context, account string) error {
	err := m.mc.Set(&memcache.Item{
		Key:        m.key(account),
		Value:      []byte("1"),
		Expiration: markerTTL,
	})
	return errors.Wrap(err, "memcache set")
}
