package shaping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/loganlanou/colink-venture/internal/backend"
)

var errNotObject = errors.New("business record is not a JSON object")

// NormalizeBusiness maps a raw backend business onto backend.Business,
// accepting both snake_case and camelCase spellings of each field.
func NormalizeBusiness(raw json.RawMessage) (backend.Business, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return backend.Business{}, fmt.Errorf("%w: %w", errNotObject, err)
	}
	if fields == nil {
		return backend.Business{}, errNotObject
	}

	return backend.Business{
		ID:                text(fields, "id", "_id"),
		OwnerID:           text(fields, "owner_id", "ownerId"),
		Name:              text(fields, "name", "business_name", "businessName"),
		Description:       text(fields, "description"),
		Industry:          text(fields, "industry"),
		AccountType:       strings.Trim(text(fields, "account_type", "accountType"), `"`),
		Category:          text(fields, "category"),
		Location:          text(fields, "location"),
		Website:           text(fields, "website"),
		LogoURL:           text(fields, "logo_url", "logoUrl", "logo"),
		PartnershipOffers: list(fields, "partnership_offers", "partnershipOffers"),
		SponsorshipOffers: list(fields, "sponsorship_offers", "sponsorshipOffers"),
		Gallery:           list(fields, "gallery", "gallery_images", "galleryImages"),
	}, nil
}

// NormalizeBusinesses normalizes a listing, dropping records that are not
// objects.
func NormalizeBusinesses(raws []json.RawMessage) []backend.Business {
	out := make([]backend.Business, 0, len(raws))
	for i, raw := range raws {
		b, err := NormalizeBusiness(raw)
		if err != nil {
			slog.Warn("skipping malformed business record", "index", i, "error", err)
			continue
		}
		out = append(out, b)
	}
	return out
}

func lookup(fields map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			continue
		}
		return raw, true
	}
	return nil, false
}

// text reads a scalar field as a string; numeric ids come back in their
// JSON spelling.
func text(fields map[string]json.RawMessage, keys ...string) string {
	raw, ok := lookup(fields, keys...)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func list(fields map[string]json.RawMessage, keys ...string) []string {
	var l FlexList
	if raw, ok := lookup(fields, keys...); ok {
		// FlexList swallows bad input; raw came out of a parsed object.
		_ = json.Unmarshal(raw, &l)
	}
	if l == nil {
		return []string{}
	}
	return l
}
