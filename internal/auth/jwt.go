package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL bounds both the JWT expiry and the server-side session record.
const SessionTTL = time.Hour * 168

var jwtSecret string

func InitJWTSecret() error {
	jwtSecret = os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	return nil
}

// GenerateJWT signs a token carrying the user id and the server-side
// session id. The sid is what logout revokes; the JWT alone is not enough.
func GenerateJWT(userID uint, sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"sid":     sessionID,
		"exp":     time.Now().Add(SessionTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

func VerifyJWT(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("Invalid or expired token")
	}

	return token, nil
}

// SessionClaims extracts the user id and session id from a verified token.
func SessionClaims(token *jwt.Token) (uint, string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		return 0, "", fmt.Errorf("Invalid token claims")
	}

	userIDFloat, ok := claims["user_id"].(float64)

	if !ok {
		return 0, "", fmt.Errorf("Invalid user ID in token claims")
	}

	sessionID, ok := claims["sid"].(string)

	if !ok || sessionID == "" {
		return 0, "", fmt.Errorf("Invalid session ID in token claims")
	}

	return uint(userIDFloat), sessionID, nil
}
