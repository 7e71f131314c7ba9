package config

import "time"

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled.  Methods lists the HTTP methods to cache; POST is cached by
// request body so repeated recommendation queries hit.  Every key also
// carries the catalog version, so a reload invalidates all entries without
// a flush.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string // route, route_query or route_query_body
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.  Defaults
// are used when variables are not set.  All methods are upper-cased.
func LoadCacheConfig() CacheConfig {
    methods := map[string]bool{}
    for _, m := range parseList(getenv("CACHE_METHODS", "GET,POST"), true) {
        methods[m] = true
    }
    cfg := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      methods,
        TTL:          envDur("CACHE_TTL", 5*time.Minute),
        KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "route_query_body"),
        Prefix:       getenv("CACHE_PREFIX", "esr:cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    if cfg.TTL <= 0 { cfg.TTL = 5 * time.Minute }
    return cfg
}
