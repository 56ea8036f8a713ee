package beneficiary

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"relief/internal/issuance/ports"
	id "relief/pkg/domain"
)

// Cached remembers positive verifications for ttl. Negative answers and
// errors always go to the backing registry, so a newly verified beneficiary
// is eligible at once; a revocation takes effect within ttl.
type Cached struct {
	next  ports.BeneficiaryRegistry
	cache *gocache.Cache
}

func NewCached(next ports.BeneficiaryRegistry, ttl time.Duration) *Cached {
	return &Cached{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (c *Cached) IsVerified(ctx context.Context, principal id.Principal) (bool, error) {
	if _, ok := c.cache.Get(principal.String()); ok {
		return true, nil
	}
	verified, err := c.next.IsVerified(ctx, principal)
	if err != nil {
		return false, err
	}
	if verified {
		c.cache.SetDefault(principal.String(), struct{}{})
	}
	return verified, nil
}
