package service

import (
	"container/list"
	"sync"
	"time"
)

// SecretCache keeps decrypted webhook signing secrets keyed by their
// ciphertext, so a rotated secret never hits the entry of the old one.
// Entries expire after ttl; when full, expired entries go first and then the
// oldest inserted. It is safe for concurrent use.
type SecretCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]*list.Element
	order      *list.List // front = oldest insert
	now        func() time.Time
}

type secretEntry struct {
	key       string
	secret    string
	expiresAt time.Time
}

// NewSecretCache creates a cache. maxEntries <= 0 means unbounded.
func NewSecretCache(ttl time.Duration, maxEntries int) *SecretCache {
	return &SecretCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
	}
}

// Get returns the plaintext secret for encrypted if cached and fresh.
func (c *SecretCache) Get(encrypted string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[encrypted]
	if !ok {
		return "", false
	}
	e := el.Value.(*secretEntry)
	if !c.now().Before(e.expiresAt) {
		c.remove(el)
		return "", false
	}
	return e.secret, true
}

// Set stores secret under encrypted, evicting if the cache is full.
func (c *SecretCache) Set(encrypted, secret string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[encrypted]; ok {
		c.remove(el)
	}
	if c.maxEntries > 0 && c.order.Len() >= c.maxEntries {
		c.evictExpired()
		for c.order.Len() >= c.maxEntries {
			c.remove(c.order.Front())
		}
	}

	el := c.order.PushBack(&secretEntry{
		key:       encrypted,
		secret:    secret,
		expiresAt: c.now().Add(c.ttl),
	})
	c.entries[encrypted] = el
}

// Invalidate drops the entry for encrypted, if any.
func (c *SecretCache) Invalidate(encrypted string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[encrypted]; ok {
		c.remove(el)
	}
}

// Clear drops every entry.
func (c *SecretCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of entries, expired ones included until touched.
func (c *SecretCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Close releases the cached plaintexts.
func (c *SecretCache) Close() {
	c.Clear()
}

func (c *SecretCache) evictExpired() {
	now := c.now()
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if !now.Before(el.Value.(*secretEntry).expiresAt) {
			c.remove(el)
		}
		el = next
	}
}

func (c *SecretCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*secretEntry).key)
}
