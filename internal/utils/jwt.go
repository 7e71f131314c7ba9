package utils // package utils provides helpers for minting operator tokens

import (
    "crypto/rand"  // secure random token IDs
    "encoding/hex" // hex encoding of the token ID
    "errors"       // errors reports invalid arguments
    "time"         // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// RoleAdmin is the only role the service checks; it guards catalog reloads.
const RoleAdmin = "ADMIN"

// AccessToken represents a signed JWT along with its expiry and ID.  Tokens
// are presented in the Authorization header as "Bearer <token>".
type AccessToken struct {
    Token string    // the serialized JWT string
    ID    string    // jti claim, logged by the server when the token is used
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for an operator.  The token
// carries sub, role, jti, exp and iat claims.  There is no login flow:
// tokens are minted offline by `spacectl token` with the server's secret.
func NewAccessToken(secret, subject, role string, ttl time.Duration) (AccessToken, error) {
    if secret == "" {
        return AccessToken{}, errors.New("empty signing secret")
    }
    if ttl <= 0 {
        return AccessToken{}, errors.New("token ttl must be positive")
    }
    id, err := randomHex(16)
    if err != nil {
        return AccessToken{}, err
    }
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub":  subject,
        "role": role,
        "jti":  id,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, ID: id, Exp: exp}, nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
