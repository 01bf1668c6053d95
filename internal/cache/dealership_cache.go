package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/domain"
	"github.com/MaqroSolutions/Dealerships-sub000/pkg/logger"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

var (
	instance *DealershipCache
	once     sync.Once
)

// DealershipCache is an in-memory, database-backed cache of dealership tenants
// keyed by ID and by every configured inbound phone number. The Dealership
// Phone Resolver (§4.2) consults this before falling back to a database scan.
type DealershipCache struct {
	dealerships map[string]*domain.Dealership // id -> dealership
	phoneIndex  map[string]string             // "provider:phone" -> dealership id
	mutex       sync.RWMutex
	updateChan  chan []*domain.Dealership
	ctx         context.Context
	cancel      context.CancelFunc
	isStarted   bool
	startMutex  sync.Mutex
}

// NewDealershipCache returns the process-wide dealership cache singleton.
func NewDealershipCache() *DealershipCache {
	once.Do(func() {
		instance = createDealershipCache()
	})
	return instance
}

func createDealershipCache() *DealershipCache {
	ctx, cancel := context.WithCancel(context.Background())

	c := &DealershipCache{
		dealerships: make(map[string]*domain.Dealership),
		phoneIndex:  make(map[string]string),
		updateChan:  make(chan []*domain.Dealership, 64),
		ctx:         ctx,
		cancel:      cancel,
	}

	c.startAsyncProcessor()

	logger.Base().Info("DealershipCache initialized (empty cache, waiting for database load)")
	return c
}

var phoneProviders = []string{"sms", "chat"}

func phoneIndexKey(provider, phone string) string {
	return provider + ":" + phone
}

// GetByID retrieves a dealership by ID (thread-safe read).
func (c *DealershipCache) GetByID(id string) (*domain.Dealership, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	d, ok := c.dealerships[id]
	if !ok {
		return nil, false
	}
	return c.copyDealership(d), true
}

// GetByPhone resolves a dealership from an inbound provider phone number.
func (c *DealershipCache) GetByPhone(provider, phone string) (*domain.Dealership, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	id, ok := c.phoneIndex[phoneIndexKey(provider, phone)]
	if !ok {
		return nil, false
	}
	d, ok := c.dealerships[id]
	if !ok {
		return nil, false
	}
	return c.copyDealership(d), true
}

// Upsert inserts or replaces a single dealership and rebuilds its phone index entries.
func (c *DealershipCache) Upsert(d *domain.Dealership) error {
	if d == nil {
		return fmt.Errorf("dealership cannot be nil")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if old, exists := c.dealerships[d.ID]; exists {
		c.unindexPhones(old)
	}
	c.dealerships[d.ID] = c.copyDealership(d)
	c.indexPhones(d)

	logger.Base().Info("Dealership cache entry upserted", zap.String("dealership_id", d.ID))
	return nil
}

func (c *DealershipCache) indexPhones(d *domain.Dealership) {
	for _, provider := range phoneProviders {
		for _, phone := range d.IntegrationPhoneNumbers(provider) {
			c.phoneIndex[phoneIndexKey(provider, phone)] = d.ID
		}
	}
}

func (c *DealershipCache) unindexPhones(d *domain.Dealership) {
	for _, provider := range phoneProviders {
		for _, phone := range d.IntegrationPhoneNumbers(provider) {
			delete(c.phoneIndex, phoneIndexKey(provider, phone))
		}
	}
}

// copyDealership deep-copies a dealership to prevent external mutation of cached state.
func (c *DealershipCache) copyDealership(original *domain.Dealership) *domain.Dealership {
	if original == nil {
		return nil
	}
	var copy domain.Dealership
	if err := copier.CopyWithOption(&copy, original, copier.Option{DeepCopy: true}); err != nil {
		logger.Base().Warn("Failed to copy dealership", zap.Error(err))
		return original
	}
	return &copy
}

// RefreshAsync performs a non-blocking bulk replacement of cached dealerships.
// cmd/server calls it once at startup to preload every dealership; it is not
// called again when a dealership's integration_config changes later.
func (c *DealershipCache) RefreshAsync(dealerships []*domain.Dealership) error {
	if dealerships == nil {
		dealerships = make([]*domain.Dealership, 0)
	}

	select {
	case <-c.ctx.Done():
		return fmt.Errorf("cache is shutdown")
	default:
	}

	select {
	case c.updateChan <- dealerships:
		return nil
	case <-c.ctx.Done():
		return fmt.Errorf("cache is shutdown")
	default:
		return fmt.Errorf("update queue is full, please try again later")
	}
}

func (c *DealershipCache) startAsyncProcessor() {
	c.startMutex.Lock()
	defer c.startMutex.Unlock()

	if c.isStarted {
		return
	}
	c.isStarted = true

	go func() {
		for {
			select {
			case <-c.ctx.Done():
				return
			case dealerships := <-c.updateChan:
				c.processUpdate(dealerships)
			}
		}
	}()
}

func (c *DealershipCache) processUpdate(dealerships []*domain.Dealership) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	oldCount := len(c.dealerships)

	newDealerships := make(map[string]*domain.Dealership)
	newPhoneIndex := make(map[string]string)

	for _, d := range dealerships {
		if d == nil || d.ID == "" {
			logger.Base().Warn("Skipping invalid dealership in refresh batch")
			continue
		}
		copied := c.copyDealership(d)
		newDealerships[d.ID] = copied
		for _, provider := range phoneProviders {
			for _, phone := range copied.IntegrationPhoneNumbers(provider) {
				newPhoneIndex[phoneIndexKey(provider, phone)] = copied.ID
			}
		}
	}

	c.dealerships = newDealerships
	c.phoneIndex = newPhoneIndex

	logger.Base().Info("Dealership cache refreshed",
		zap.Int("old_count", oldCount), zap.Int("new_count", len(c.dealerships)))
}

// Shutdown stops the background refresh processor.
func (c *DealershipCache) Shutdown() {
	c.cancel()
	close(c.updateChan)
	logger.Base().Info("DealershipCache shutdown completed")
}

// ShutdownGlobal shuts down and resets the singleton, for use in tests.
func ShutdownGlobal() {
	if instance != nil {
		instance.Shutdown()
		instance = nil
		once = sync.Once{}
	}
}
