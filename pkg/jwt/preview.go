package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verdict preview 토큰 검증 결과
type Verdict string

const (
	VerdictValid   Verdict = "valid"
	VerdictExpired Verdict = "expired"
	VerdictInvalid Verdict = "invalid"
)

// PreviewPayload is the decoded grant carried by a preview token.
// IssuerUserID is recorded for auditing only; BoundUserID, when set,
// restricts the grant to that user.
type PreviewPayload struct {
	ItemID       string
	IssuerUserID string
	BoundUserID  string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

type previewClaims struct {
	ItemID       string `json:"item_id"`
	IssuerUserID string `json:"issuer_user_id,omitempty"`
	BoundUserID  string `json:"bound_user_id,omitempty"`
	jwt.RegisteredClaims
}

const previewSubject = "preview"

// PreviewIssuer signs and verifies stateless preview tokens (HS256).
type PreviewIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewPreviewIssuer 생성자. now가 nil이면 time.Now 사용
func NewPreviewIssuer(secret string, ttl time.Duration, now func() time.Time) *PreviewIssuer {
	if now == nil {
		now = time.Now
	}
	return &PreviewIssuer{secret: []byte(secret), ttl: ttl, now: now}
}

// TTL 토큰 유효기간
func (p *PreviewIssuer) TTL() time.Duration { return p.ttl }

// Issue signs a token granting preview of itemID until now+ttl. An empty
// boundUserID makes the grant usable by anyone holding the link.
func (p *PreviewIssuer) Issue(itemID, issuerUserID, boundUserID string) (string, PreviewPayload, error) {
	now := p.now()
	claims := &previewClaims{
		ItemID:       itemID,
		IssuerUserID: issuerUserID,
		BoundUserID:  boundUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   previewSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", PreviewPayload{}, err
	}
	return token, claims.payload(), nil
}

// Verify decodes token. It never panics; every input maps to a verdict.
// A token checked at exactly its expiry instant is expired.
func (p *PreviewIssuer) Verify(tokenString string) (PreviewPayload, Verdict) {
	claims := &previewClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(previewSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return claims.payload(), VerdictExpired
		}
		return PreviewPayload{}, VerdictInvalid
	}
	if !token.Valid || claims.ItemID == "" {
		return PreviewPayload{}, VerdictInvalid
	}
	return claims.payload(), VerdictValid
}

func (c *previewClaims) payload() PreviewPayload {
	out := PreviewPayload{ItemID: c.ItemID, IssuerUserID: c.IssuerUserID, BoundUserID: c.BoundUserID}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
