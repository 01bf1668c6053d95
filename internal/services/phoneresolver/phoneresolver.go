// Package phoneresolver maps an inbound phone number to a dealership (§4.2).
package phoneresolver

import (
	"context"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/apperr"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/cache"
	"github.com/MaqroSolutions/Dealerships-sub000/internal/repository"
)

var phoneProviders = []string{"sms", "chat"}

// Resolver maps an inbound phone number to a dealership, first via the Lead
// table, then via dealership integration_config, then via a configured
// default dealership.
type Resolver struct {
	repo                repository.RepositoryManager
	cache               *cache.DealershipCache
	defaultDealershipID string
}

// New builds a Resolver. defaultDealershipID may be empty, in which case the
// fallback step (3) always misses.
func New(repo repository.RepositoryManager, dealershipCache *cache.DealershipCache, defaultDealershipID string) *Resolver {
	return &Resolver{repo: repo, cache: dealershipCache, defaultDealershipID: defaultDealershipID}
}

// Normalize strips non-digit characters and applies the prefix rules from
// §4.2: 10 digits get a +1 prefix, 11 digits starting with 1 get a + prefix,
// anything else keeps its digits with a + prefix. Idempotent.
func Normalize(phone string) string {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		c := phone[i]
		if c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	switch {
	case len(digits) == 10:
		return "+1" + string(digits)
	case len(digits) == 11 && digits[0] == '1':
		return "+" + string(digits)
	default:
		return "+" + string(digits)
	}
}

// PhonesMatch reports whether two phone numbers refer to the same line once
// normalized.
func PhonesMatch(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Resolve returns the dealership_id owning phone, per the resolution order
// in §4.2: Lead lookup, then integration_config scan, then default fallback.
func (r *Resolver) Resolve(ctx context.Context, phone string) (string, error) {
	normalized := Normalize(phone)

	if lead, err := r.repo.Leads().GetByPhoneAnyDealership(ctx, normalized); err == nil && lead != nil {
		return lead.DealershipID, nil
	}

	if dealershipID, ok := r.lookupIntegrationConfig(ctx, normalized); ok {
		return dealershipID, nil
	}

	if r.defaultDealershipID != "" {
		return r.defaultDealershipID, nil
	}

	return "", apperr.NotFound("no dealership matches phone number")
}

// lookupIntegrationConfig checks the in-process cache first and falls back
// to a database scan on a cache miss (e.g. cold start, or a number added
// after the cache's last snapshot).
func (r *Resolver) lookupIntegrationConfig(ctx context.Context, normalized string) (string, bool) {
	for _, provider := range phoneProviders {
		if r.cache != nil {
			if d, ok := r.cache.GetByPhone(provider, normalized); ok {
				return d.ID, true
			}
		}
		if d, err := r.repo.Dealerships().GetByIntegrationPhone(ctx, provider, normalized); err == nil && d != nil {
			return d.ID, true
		}
	}
	return "", false
}
