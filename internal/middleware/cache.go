package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/event-space-recommender/internal/config"
)

// captureWriter copies the response body (up to limit) while forwarding it
// to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 {
        cw.buf.Write(b)
    } else if remain := cw.limit - cw.size; remain > 0 {
        if int64(len(b)) <= remain {
            cw.buf.Write(b)
        } else {
            cw.buf.Write(b[:remain])
        }
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// truncated reports whether the response outgrew the capture buffer.
func (cw *captureWriter) truncated() bool { return cw.limit > 0 && cw.size > cw.limit }

// cacheKeyFrom builds the key for a request.  The catalog version is always
// part of it so a reload makes every older entry unreachable.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context, version string, body []byte) string {
    r := c.Request()
    parts := []string{"v", version, "method", r.Method, "route", c.Path()}
    for _, name := range c.ParamNames() {
        parts = append(parts, name, c.Param(name))
    }
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
    case "route_query":
        parts = append(parts, "q", r.URL.RawQuery)
    default: // "route_query_body"
        parts = append(parts, "q", r.URL.RawQuery)
        if len(body) > 0 {
            sum := sha1.Sum(body)
            parts = append(parts, "b", fmt.Sprintf("%x", sum[:]))
        }
    }
    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}

// readBody drains the request body for hashing and puts it back for the
// handler.  Bodies larger than max are not cached.
func readBody(c echo.Context, max int64) ([]byte, bool) {
    r := c.Request()
    if r.Body == nil || r.Body == http.NoBody {
        return nil, true
    }
    limit := max
    if limit <= 0 {
        limit = 1 << 20
    }
    b, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
    r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(b), r.Body))
    if err != nil || int64(len(b)) > limit {
        return nil, false
    }
    return b, true
}

// per-request headers that are never stored
var uncachedHeaders = map[string]bool{"X-Cache": true, echo.HeaderXRequestID: true}

// NewRedisCache caches successful responses in Redis, headers included, so a
// hit carries the original body and headers.  version returns the catalog
// version currently served.  A nil client or a disabled config yields a
// pass-through.
//
// A hit never reaches the handler, so handlers that publish events (such as
// recommendation.issued) are not audited for cached responses.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, version func() string, log *zap.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    if log == nil {
        log = zap.NewNop()
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 5 * time.Minute
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            body, ok := readBody(c, maxBody)
            if !ok {
                return next(c)
            }

            ctx := c.Request().Context()
            key := cacheKeyFrom(cfg, c, version(), body)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, payload, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, "Content-Length") {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    if len(payload) > 0 {
                        _, _ = c.Response().Write(payload)
                    }
                    return nil
                }
            } else if err != redis.Nil {
                log.Debug("cache read failed", zap.String("key", key), zap.Error(err))
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.truncated() {
                return nil
            }

            hdr := make(http.Header, len(c.Response().Header()))
            for k, vals := range c.Response().Header() {
                if uncachedHeaders[http.CanonicalHeaderKey(k)] {
                    continue
                }
                hdr[k] = append([]string(nil), vals...)
            }
            payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
            if err != nil {
                return nil
            }
            if err := rdb.Set(context.Background(), key, payload, ttl).Err(); err != nil {
                log.Debug("cache write failed", zap.String("key", key), zap.Error(err))
            }
            return nil
        }
    }
}
