package security

import (
	"debug_contest/internal/platform/config"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// GenerateToken issues the session token that stands in for client-local
// team identity: it carries everything the contest endpoints need to resume
// a team exactly where it left off.
func GenerateToken(teamID, teamName string) (string, error) {
	claims := jwt.MapClaims{
		"team_id":   teamID,
		"team_name": teamName,
		"exp":       time.Now().Add(config.AppConfig.JWTExp).Unix(),
		"iat":       time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func GetTeamIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["team_id"].(string)
	if !ok {
		return "", errors.New("team_id claim is missing or not a string")
	}
	return id, nil
}

func GetTeamNameFromClaims(claims jwt.MapClaims) (string, error) {
	name, ok := claims["team_name"].(string)
	if !ok {
		return "", errors.New("team_name claim is missing or not a string")
	}
	return name, nil
}
