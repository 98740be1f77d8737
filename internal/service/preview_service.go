package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/damoang/tourlog-backend/internal/common"
	"github.com/damoang/tourlog-backend/internal/repository"
	"github.com/damoang/tourlog-backend/pkg/jwt"
)

// PreviewGrant issued preview credential
type PreviewGrant struct {
	Token      string    `json:"token"`
	PreviewURL string    `json:"previewUrl"`
	ExpiresIn  string    `json:"expiresIn"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// PreviewService issues and checks preview tokens for unpublished items.
type PreviewService struct {
	issuer  *jwt.PreviewIssuer
	items   repository.ItemRepository
	baseURL string
	logger  zerolog.Logger
}

// NewPreviewService 생성자
func NewPreviewService(issuer *jwt.PreviewIssuer, items repository.ItemRepository, baseURL string, logger zerolog.Logger) *PreviewService {
	return &PreviewService{issuer: issuer, items: items, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Issue signs a preview token for an existing item. The link works without
// a session unless bindToIssuer restricts it to the issuer.
func (s *PreviewService) Issue(ctx context.Context, itemID, issuerUserID string, bindToIssuer bool) (*PreviewGrant, error) {
	if itemID == "" {
		return nil, common.InvalidArgument("itemId is required", nil)
	}
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		if errors.Is(err, common.ErrItemNotFound) {
			return nil, common.NotFound("item not found", err)
		}
		return nil, common.Internal("failed to load item", err)
	}

	var bound string
	if bindToIssuer {
		bound = issuerUserID
	}
	token, payload, err := s.issuer.Issue(itemID, issuerUserID, bound)
	if err != nil {
		return nil, common.Internal("failed to sign preview token", err)
	}

	s.logger.Info().Str("item_id", itemID).Str("issuer", issuerUserID).Bool("bound", bound != "").Time("expires_at", payload.ExpiresAt).Msg("preview token issued")

	return &PreviewGrant{
		Token:      token,
		PreviewURL: s.previewURL(itemID, token),
		ExpiresIn:  formatTTL(s.issuer.TTL()),
		ExpiresAt:  payload.ExpiresAt,
	}, nil
}

// Verify decodes token; a non-valid verdict is logged with its reason.
func (s *PreviewService) Verify(token string) (jwt.PreviewPayload, jwt.Verdict) {
	payload, verdict := s.issuer.Verify(token)
	if verdict != jwt.VerdictValid {
		s.logger.Info().Str("verdict", string(verdict)).Str("item_id", payload.ItemID).Msg("preview token rejected")
	}
	return payload, verdict
}

// Authorize reports whether token grants preview of itemID to
// requestingUserID. Every failure looks the same to the caller.
func (s *PreviewService) Authorize(token, itemID, requestingUserID string) bool {
	payload, verdict := s.Verify(token)
	if verdict != jwt.VerdictValid {
		return false
	}
	if !CanAccess(payload, itemID, requestingUserID) {
		s.logger.Info().
			Str("token_item_id", payload.ItemID).
			Str("requested_item_id", itemID).
			Msg("preview token does not grant requested item")
		return false
	}
	return true
}

// CanAccess is true iff the payload names requestedItemID and is either not
// bound to a user or bound to requestingUserID.
func CanAccess(payload jwt.PreviewPayload, requestedItemID, requestingUserID string) bool {
	if payload.ItemID == "" || payload.ItemID != requestedItemID {
		return false
	}
	return payload.BoundUserID == "" || payload.BoundUserID == requestingUserID
}

func (s *PreviewService) previewURL(itemID, token string) string {
	return s.baseURL + "/" + url.PathEscape(itemID) + "?preview_token=" + url.QueryEscape(token)
}

// formatTTL 1h0m0s → 1h
func formatTTL(d time.Duration) string {
	out := d.String()
	if strings.HasSuffix(out, "m0s") {
		out = out[:len(out)-2]
	}
	if strings.HasSuffix(out, "h0m") {
		out = out[:len(out)-2]
	}
	return out
}
