package auth

import (
	"time"

	"nexussync/redis"
)

const sessionTTL = 3 * 24 * time.Hour

func sessionKey(token string) string {
	return "session:" + token
}

// StoreSession registers an issued token so the middleware accepts it.
// Without Redis sessions are stateless JWT-only.
func StoreSession(token string) error {
	if redis.RedisClient == nil {
		return nil
	}
	return redis.RedisClient.Set(redis.Ctx, sessionKey(token), "1", sessionTTL).Err()
}

// DropSession invalidates a token at logout.
func DropSession(token string) error {
	if redis.RedisClient == nil {
		return nil
	}
	return redis.RedisClient.Del(redis.Ctx, sessionKey(token)).Err()
}
