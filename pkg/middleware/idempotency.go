package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-marketplace/pkg/logger"
	"github.com/prohmpiriya/event-marketplace/pkg/response"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyKeyHeader = "X-Idempotency-Key"
	// ReplayedHeader is set on responses served from a stored record
	ReplayedHeader = "X-Idempotent-Replayed"

	ContextKeyIdempotencyKey = "idempotency_key"
	IdempotencyKeyPrefix     = "idempotency:"

	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultProcessingTTL  = 60 * time.Second

	ErrCodeIdempotencyKeyReused = "IDEMPOTENCY_KEY_REUSED"
	ErrCodeRequestInProgress    = "REQUEST_IN_PROGRESS"
)

type IdempotencyStatus string

const (
	StatusProcessing IdempotencyStatus = "processing"
	StatusCompleted  IdempotencyStatus = "completed"
)

// IdempotencyRecord is the stored state of one keyed request
type IdempotencyRecord struct {
	Status       IdempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code,omitempty"`
	ResponseBody string            `json:"response_body,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// RedisClient is the subset of go-redis the middleware needs
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type IdempotencyConfig struct {
	Redis RedisClient
	// TTL for completed records
	TTL time.Duration
	// TTL for in-flight records, bounds how long a crashed request blocks its key
	ProcessingTTL time.Duration
	Logger        *logger.Logger
}

func DefaultIdempotencyConfig(client RedisClient) *IdempotencyConfig {
	return &IdempotencyConfig{
		Redis:         client,
		TTL:           DefaultIdempotencyTTL,
		ProcessingTTL: DefaultProcessingTTL,
		Logger:        logger.Get(),
	}
}

// Idempotency makes keyed requests at-most-once. Requests without the header
// pass straight through. Redis failures fail open.
func Idempotency(cfg *IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultIdempotencyTTL
	}
	if cfg.ProcessingTTL == 0 {
		cfg.ProcessingTTL = DefaultProcessingTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Get()
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || cfg.Redis == nil {
			c.Next()
			return
		}
		c.Set(ContextKeyIdempotencyKey, key)

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		hash := requestHash(c, body)

		userID, _ := GetUserID(c)
		redisKey := IdempotencyKeyPrefix + userID + ":" + key
		ctx := c.Request.Context()

		record := &IdempotencyRecord{
			Status:      StatusProcessing,
			RequestHash: hash,
			CreatedAt:   time.Now(),
		}

		acquired, err := setRecordNX(ctx, cfg.Redis, redisKey, record, cfg.ProcessingTTL)
		if err != nil {
			cfg.Logger.Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		if !acquired {
			existing, err := getRecord(ctx, cfg.Redis, redisKey)
			if err != nil {
				if errors.Is(err, redis.Nil) {
					// expired between SETNX and GET
					response.Error(c, http.StatusConflict, ErrCodeRequestInProgress, "A request with this idempotency key is already being processed", "")
					c.Abort()
					return
				}
				cfg.Logger.Warn("idempotency store unavailable", zap.Error(err))
				c.Next()
				return
			}
			replay(c, existing, hash)
			return
		}

		rw := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rw

		c.Next()

		// Detach from the request so a cancelled client still settles the record
		storeCtx := context.WithoutCancel(ctx)
		status := rw.Status()
		if status >= http.StatusInternalServerError {
			if err := cfg.Redis.Del(storeCtx, redisKey).Err(); err != nil {
				cfg.Logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
			}
			return
		}

		now := time.Now()
		record.Status = StatusCompleted
		record.ResponseCode = status
		record.ResponseBody = rw.body.String()
		record.CompletedAt = &now
		if err := setRecord(storeCtx, cfg.Redis, redisKey, record, cfg.TTL); err != nil {
			cfg.Logger.Warn("failed to store idempotent response", zap.String("key", key), zap.Error(err))
		}
	}
}

func replay(c *gin.Context, existing *IdempotencyRecord, hash string) {
	if existing.RequestHash != hash {
		response.Error(c, http.StatusUnprocessableEntity, ErrCodeIdempotencyKeyReused, "Idempotency key already used with a different request", "")
		c.Abort()
		return
	}
	if existing.Status == StatusProcessing {
		response.Error(c, http.StatusConflict, ErrCodeRequestInProgress, "A request with this idempotency key is already being processed", "")
		c.Abort()
		return
	}

	c.Header(ReplayedHeader, "true")
	c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
	c.Abort()
}

// GetIdempotencyKey returns the key the current request was made with
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	key := c.GetString(ContextKeyIdempotencyKey)
	return key, key != ""
}

type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func requestHash(c *gin.Context, body []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func getRecord(ctx context.Context, client RedisClient, key string) (*IdempotencyRecord, error) {
	raw, err := client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var record IdempotencyRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func setRecordNX(ctx context.Context, client RedisClient, key string, record *IdempotencyRecord, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return false, err
	}
	return client.SetNX(ctx, key, data, ttl).Result()
}

func setRecord(ctx context.Context, client RedisClient, key string, record *IdempotencyRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, ttl).Err()
}
