package restapi

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"daylog/internal/service"
)

const keyDashboard = "dashboard"

// cache keeps short-lived copies of aggregate responses.
type cache struct {
	c   *ristretto.Cache[string, service.Dashboard]
	ttl time.Duration
}

func newCache() (*cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, service.Dashboard]{
		NumCounters: 100,
		MaxCost:     10,
		BufferItems: 64,
		// Entries are counted, not sized.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &cache{c: c, ttl: DashboardTTL}, nil
}

func (c *cache) dashboard() (service.Dashboard, bool) {
	return c.c.Get(keyDashboard)
}

func (c *cache) setDashboard(d service.Dashboard) {
	c.c.SetWithTTL(keyDashboard, d, 1, c.ttl)
	c.c.Wait()
}

// invalidate drops aggregates derived from tasks or logs.
func (c *cache) invalidate() {
	c.c.Del(keyDashboard)
}

func (c *cache) close() {
	c.c.Close()
}
