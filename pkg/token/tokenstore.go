package tokenstore

import "sync"

// in-memory token revocation store keyed by JWT jti. For multi-instance
// deployments move this to redis.
var (
	mu      sync.RWMutex
	revoked = map[string]struct{}{}
)

func RevokeToken(jti string) {
	if jti == "" {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	revoked[jti] = struct{}{}
}

func IsRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	mu.RLock()
	defer mu.RUnlock()
	_, ok := revoked[jti]
	return ok
}
