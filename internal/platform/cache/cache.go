package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a size-bounded LRU. A Cache built with size <= 0 stores nothing,
// so every Get misses.
type Cache[K comparable, V any] struct {
	lru *lru.Cache[K, V]
}

func New[K comparable, V any](size int) (*Cache[K, V], error) {
	if size <= 0 {
		return &Cache[K, V]{}, nil
	}
	inner, err := lru.New[K, V](size)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lru: inner}, nil
}

func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	if c == nil || c.lru == nil {
		return value, false
	}
	return c.lru.Get(key)
}

func (c *Cache[K, V]) Put(key K, value V) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Add(key, value)
}

// Purge drops every entry.
func (c *Cache[K, V]) Purge() {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Purge()
}

func (c *Cache[K, V]) Len() int {
	if c == nil || c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
