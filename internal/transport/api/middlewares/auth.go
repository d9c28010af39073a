package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/service/tokens"
)

var ErrTokenNotExist = errors.New("token not exist")

const CurrentUserKey = "currentUser"

// UserFinder резолвит владельца токена в запись юзера.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// checkAuthorization извлекает токен из заголовка Authorization и проверяет его.
// Если токен не передан, вернется ошибка ErrTokenNotExist.
func checkAuthorization(c *gin.Context, jwtTokenSecret []byte) (*tokens.UserClaims, error) {
	tokenHeader := c.GetHeader("Authorization")
	bearer := "Bearer "

	if len(tokenHeader) < len(bearer) || tokenHeader[:len(bearer)] != bearer {
		return nil, ErrTokenNotExist
	}

	tokenStr := tokenHeader[len(bearer):]
	token, err := tokens.ValidateUserJWT(tokenStr, jwtTokenSecret)
	if err != nil {
		return nil, fmt.Errorf("check authorization: %w", err)
	}

	claims, ok := token.Claims.(*tokens.UserClaims)
	if !ok {
		return nil, errors.New("invalid jwt claims type")
	}
	return claims, nil
}

// AuthRequired проверяет токен, резолвит его владельца через finder и кладет
// запись юзера в контекст (ключ CurrentUserKey). Несуществующий юзер или
// невалидный токен - 401 до каких-либо мутаций.
func AuthRequired(jwtTokenSecret []byte, finder UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := checkAuthorization(c, jwtTokenSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			if !errors.Is(err, ErrTokenNotExist) {
				_ = c.Error(err).SetType(gin.ErrorTypePrivate)
			}
			return
		}

		user, findErr := finder.FindByID(c, claims.ID)
		if findErr != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			if !errors.Is(findErr, domain.ErrRecordNotFound) {
				_ = c.Error(findErr).SetType(gin.ErrorTypePrivate)
			}
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// NonAuthRequired пропускает только запросы без действующего токена.
func NonAuthRequired(jwtTokenSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := checkAuthorization(c, jwtTokenSecret)
		if err == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Already authorized"})
			return
		}

		c.Next()
	}
}
