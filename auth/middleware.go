package auth

import (
	"net/http"
	"strings"

	"nexussync/redis"

	"github.com/gin-gonic/gin"
)

func AuthMiddleWare() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization is not found!"})
			return
		}

		// verify token
		token := strings.TrimPrefix(authHeader, "Bearer ")
		jwtToken, err := VerifyJWT(token)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		userID, err := UserIDFromToken(jwtToken)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		// check session on redis
		if redis.RedisClient != nil {
			exists, err := redis.RedisClient.Exists(redis.Ctx, sessionKey(token)).Result()
			if err != nil || exists == 0 {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired or not found"})
				return
			}
		}

		ctx.Set("jwt_token", token)
		ctx.Set("user_id", userID)
		ctx.Next()
	}
}
