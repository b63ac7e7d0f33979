package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/argon2"

	"github.com/ristomkd/LibraryNetwork/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidPassword    = errors.New("invalid password format")
	ErrInvalidRSAKey      = errors.New("invalid RSA key")
)

// AuthService owns password hashing and JWT issuance. Access and refresh
// tokens are signed with separate RSA keys; revoked tokens sit in a Redis
// blacklist until they would have expired anyway.
type AuthService struct {
	jwtPrivateKey     *rsa.PrivateKey
	jwtPublicKey      *rsa.PublicKey
	refreshPrivateKey *rsa.PrivateKey
	refreshPublicKey  *rsa.PublicKey
	tokenExpiry       time.Duration
	refreshExpiry     time.Duration
	argon2Config      *Argon2Config
	logger            *slog.Logger
	redisClient       *redis.Client
}

type Argon2Config struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func NewAuthService(jwtPrivateKeyPEM, refreshPrivateKeyPEM string, tokenExpiry, refreshExpiry time.Duration, logger *slog.Logger, redisClient *redis.Client) (*AuthService, error) {
	jwtPrivateKey, err := parseRSAPrivateKey(jwtPrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT private key: %w", err)
	}

	refreshPrivateKey, err := parseRSAPrivateKey(refreshPrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse refresh private key: %w", err)
	}

	return &AuthService{
		jwtPrivateKey:     jwtPrivateKey,
		jwtPublicKey:      &jwtPrivateKey.PublicKey,
		refreshPrivateKey: refreshPrivateKey,
		refreshPublicKey:  &refreshPrivateKey.PublicKey,
		tokenExpiry:       tokenExpiry,
		refreshExpiry:     refreshExpiry,
		argon2Config: &Argon2Config{
			Memory:      64 * 1024,
			Iterations:  3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		logger:      logger,
		redisClient: redisClient,
	}, nil
}

func parseRSAPrivateKey(privateKeyPEM string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, ErrInvalidRSAKey
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		// Try PKCS8 format
		parsedKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		if rsaKey, ok := parsedKey.(*rsa.PrivateKey); ok {
			return rsaKey, nil
		}
		return nil, ErrInvalidRSAKey
	}

	return privateKey, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", ErrInvalidPassword
	}

	salt := make([]byte, s.argon2Config.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		s.argon2Config.Iterations,
		s.argon2Config.Memory,
		s.argon2Config.Parallelism,
		s.argon2Config.KeyLength,
	)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		s.argon2Config.Memory,
		s.argon2Config.Iterations,
		s.argon2Config.Parallelism,
		b64Salt,
		b64Hash,
	), nil
}

func (s *AuthService) VerifyPassword(hashedPassword, password string) (bool, error) {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 6 {
		return false, errors.New("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return false, errors.New("invalid hash type")
	}

	var version int
	_, err := fmt.Sscanf(parts[2], "v=%d", &version)
	if err != nil {
		return false, fmt.Errorf("invalid version: %w", err)
	}

	if version != argon2.Version {
		return false, errors.New("incompatible argon2 version")
	}

	var memory, iterations uint32
	var parallelism uint8
	_, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		return false, fmt.Errorf("invalid parameters: %w", err)
	}

	decodedSalt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("error decoding salt: %w", err)
	}

	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("error decoding hash: %w", err)
	}

	computedHash := argon2.IDKey(
		[]byte(password),
		decodedSalt,
		iterations,
		memory,
		parallelism,
		uint32(len(decodedHash)),
	)

	// Constant time comparison
	if len(decodedHash) != len(computedHash) {
		return false, nil
	}

	for i := 0; i < len(decodedHash); i++ {
		if decodedHash[i] != computedHash[i] {
			return false, nil
		}
	}

	return true, nil
}

// GenerateTokens issues the access/refresh token pair for a user. The access
// token carries the role, library and member scoping the middleware turns
// into a caller.
func (s *AuthService) GenerateTokens(user *models.User) (string, string, error) {
	now := time.Now()

	accessClaims := &models.JWTClaims{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		LibraryID:   user.LibraryID,
		MemberID:    user.MemberID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("user_%d", user.ID),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodRS256, accessClaims)
	accessTokenString, err := accessToken.SignedString(s.jwtPrivateKey)
	if err != nil {
		return "", "", err
	}

	refreshClaims := &models.RefreshTokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   fmt.Sprintf("user_%d", user.ID),
		},
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodRS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString(s.refreshPrivateKey)
	if err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenString, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtPublicKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*models.JWTClaims); ok && token.Valid {
		if s.redisClient != nil {
			ctx := context.Background()
			blacklisted, err := s.redisClient.Exists(ctx, fmt.Sprintf("blacklist:%s", tokenString)).Result()
			if err != nil {
				s.logger.Error("Failed to check token blacklist", "error", err)
				// Continue validation if Redis is down
			}
			if blacklisted > 0 {
				return nil, ErrInvalidToken
			}
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}

func (s *AuthService) ValidateRefreshToken(tokenString string) (*models.RefreshTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.RefreshTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.refreshPublicKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*models.RefreshTokenClaims); ok && token.Valid {
		if s.redisClient != nil {
			ctx := context.Background()
			blacklisted, err := s.redisClient.Exists(ctx, fmt.Sprintf("blacklist:refresh:%s", tokenString)).Result()
			if err != nil {
				s.logger.Error("Failed to check refresh token blacklist", "error", err)
				// Continue validation if Redis is down
			}
			if blacklisted > 0 {
				return nil, ErrInvalidToken
			}
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// BlacklistToken revokes an access token until its natural expiry.
func (s *AuthService) BlacklistToken(tokenString string) error {
	if s.redisClient == nil {
		return errors.New("redis client not configured")
	}

	ctx := context.Background()

	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtPublicKey, nil
	})

	if err != nil {
		return err
	}

	if claims, ok := token.Claims.(*models.JWTClaims); ok {
		expiry := time.Until(claims.ExpiresAt.Time)
		if expiry <= 0 {
			// Token already expired, no need to blacklist
			return nil
		}

		err = s.redisClient.Set(ctx, fmt.Sprintf("blacklist:%s", tokenString), "1", expiry).Err()
		if err != nil {
			s.logger.Error("Failed to blacklist token", "error", err)
			return err
		}

		s.logger.Info("Token blacklisted successfully", "user_id", claims.UserID)
		return nil
	}

	return ErrInvalidToken
}

// BlacklistRefreshToken revokes a refresh token until its natural expiry.
func (s *AuthService) BlacklistRefreshToken(tokenString string) error {
	if s.redisClient == nil {
		return errors.New("redis client not configured")
	}

	ctx := context.Background()

	token, err := jwt.ParseWithClaims(tokenString, &models.RefreshTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.refreshPublicKey, nil
	})

	if err != nil {
		return err
	}

	if claims, ok := token.Claims.(*models.RefreshTokenClaims); ok {
		expiry := time.Until(claims.ExpiresAt.Time)
		if expiry <= 0 {
			return nil
		}

		err = s.redisClient.Set(ctx, fmt.Sprintf("blacklist:refresh:%s", tokenString), "1", expiry).Err()
		if err != nil {
			s.logger.Error("Failed to blacklist refresh token", "error", err)
			return err
		}

		s.logger.Info("Refresh token blacklisted successfully", "user_id", claims.UserID)
		return nil
	}

	return ErrInvalidToken
}
