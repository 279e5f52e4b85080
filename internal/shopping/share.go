package shopping

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidShareToken is returned when a share link fails verification.
var ErrInvalidShareToken = errors.New("invalid share token")

const shareAudience = "shopping-list-share"

// ShareSigner signs share links so the receiving page can tell whether the
// embedded list was altered.
type ShareSigner struct {
	key []byte
	ttl time.Duration
}

// NewShareSigner returns a signer for key. A zero ttl means links never expire.
func NewShareSigner(key string, ttl time.Duration) *ShareSigner {
	return &ShareSigner{key: []byte(key), ttl: ttl}
}

func payloadSum(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func (s *ShareSigner) sign(data string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sum": payloadSum(data),
		"iat": now.Unix(),
		"aud": shareAudience,
	}
	if s.ttl > 0 {
		claims["exp"] = now.Add(s.ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func (s *ShareSigner) verify(data, token string) error {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience(shareAudience))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidShareToken, err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ErrInvalidShareToken
	}
	if sum, _ := claims["sum"].(string); sum != payloadSum(data) {
		return fmt.Errorf("%w: payload does not match", ErrInvalidShareToken)
	}
	return nil
}

// ShareURL builds <baseURL>/share?data=<url-encoded JSON of list>. When
// signer is not nil a token parameter is appended.
func ShareURL(baseURL string, list ShoppingList, signer *ShareSigner) (string, error) {
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to marshal shared list: %w", err)
	}

	q := url.Values{}
	q.Set("data", string(data))
	if signer != nil {
		token, err := signer.sign(string(data))
		if err != nil {
			return "", fmt.Errorf("failed to sign share link: %w", err)
		}
		q.Set("token", token)
	}
	return strings.TrimRight(baseURL, "/") + "/share?" + q.Encode(), nil
}

// DecodeShared parses the data and token query values of a share link.
// The token is required whenever signer is not nil.
func DecodeShared(data, token string, signer *ShareSigner) (ShoppingList, error) {
	if signer != nil {
		if token == "" {
			return ShoppingList{}, fmt.Errorf("%w: missing token", ErrInvalidShareToken)
		}
		if err := signer.verify(data, token); err != nil {
			return ShoppingList{}, err
		}
	}

	var list ShoppingList
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return ShoppingList{}, fmt.Errorf("failed to unmarshal shared list: %w", err)
	}
	return list, nil
}
