package memory

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"knowledge-copilot-be/internal/repository/contract"
)

// VisibilityCache memoizes visible-document listings per access scope. The
// TTL is short: a grant change must become visible within seconds, and the
// listing endpoint is read-heavy enough to warrant the shortcut.
type VisibilityCache struct {
	cache *cache.Cache
}

func NewVisibilityCache() *VisibilityCache {
	// 30s expiration, purge sweep every minute.
	c := cache.New(30*time.Second, 1*time.Minute)
	return &VisibilityCache{
		cache: c,
	}
}

func (r *VisibilityCache) Get(key string) ([]*contract.VisibleDocument, bool) {
	if x, found := r.cache.Get(key); found {
		return x.([]*contract.VisibleDocument), true
	}
	return nil, false
}

func (r *VisibilityCache) Set(key string, docs []*contract.VisibleDocument) {
	r.cache.Set(key, docs, cache.DefaultExpiration)
}

// ScopeKey derives a stable cache key from the access scope and page. Role
// order must not matter.
func ScopeKey(roleNames []string, attributes map[string]interface{}, limit, offset int) string {
	roles := append([]string(nil), roleNames...)
	sort.Strings(roles)
	attrs, _ := json.Marshal(attributes)
	sum := sha256.Sum256(fmt.Appendf(nil, "%v|%s|%d|%d", roles, attrs, limit, offset))
	return fmt.Sprintf("scope:%x", sum[:16])
}
