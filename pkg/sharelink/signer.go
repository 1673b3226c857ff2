package sharelink

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken reports a malformed or tampered token.
	ErrInvalidToken = errors.New("invalid share token")
	// ErrExpiredToken reports a well-formed token past its expiry.
	ErrExpiredToken = errors.New("share token expired")
)

// Claims is what a verified token grants access to.
type Claims struct {
	Subject   string
	Format    string
	ExpiresAt time.Time
}

// Signer creates and validates HMAC-signed share tokens of the form
// "{subject}.{format}.{expiry}.{signature}" with the subject base64url encoded.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner constructs a signer with the provided secret and TTL.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	if now != nil {
		s.now = now
	}
	return s
}

// Sign returns a token for the subject rendered in format.
func (s *Signer) Sign(subject, format string) (string, time.Time, error) {
	if subject == "" || format == "" {
		return "", time.Time{}, fmt.Errorf("subject and format required")
	}
	if strings.Contains(format, ".") {
		return "", time.Time{}, fmt.Errorf("format %q must not contain dots", format)
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(subject))
	expiry := strconv.FormatInt(expiresAt.Unix(), 10)
	token := strings.Join([]string{encoded, format, expiry, s.sign(encoded, format, expiry)}, ".")
	return token, expiresAt, nil
}

// Verify checks the signature and expiry of a token.
func (s *Signer) Verify(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return Claims{}, ErrInvalidToken
	}
	encoded, format, expiry, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(encoded, format, expiry)), []byte(signature)) {
		return Claims{}, ErrInvalidToken
	}
	subject, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	unix, err := strconv.ParseInt(expiry, 10, 64)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	expiresAt := time.Unix(unix, 0)
	if s.now().After(expiresAt) {
		return Claims{}, ErrExpiredToken
	}
	return Claims{Subject: string(subject), Format: format, ExpiresAt: expiresAt}, nil
}

func (s *Signer) sign(encoded, format, expiry string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(encoded + "|" + format + "|" + expiry))
	return hex.EncodeToString(mac.Sum(nil))
}
