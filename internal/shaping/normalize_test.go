package shaping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBusiness_OfferFields(t *testing.T) {
	tests := []struct {
		name   string
		record string
		want   []string
	}{
		{
			name:   "stringified array",
			record: `{"id":"b1","partnership_offers":"[\"A\",\"B\"]"}`,
			want:   []string{"A", "B"},
		},
		{
			name:   "decoded array",
			record: `{"id":"b1","partnership_offers":["A","B"]}`,
			want:   []string{"A", "B"},
		},
		{
			name:   "missing",
			record: `{"id":"b1"}`,
			want:   []string{},
		},
		{
			name:   "malformed",
			record: `{"id":"b1","partnership_offers":"[\"A\""}`,
			want:   []string{},
		},
		{
			name:   "camelCase",
			record: `{"id":"b1","partnershipOffers":["A","B"]}`,
			want:   []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NormalizeBusiness(json.RawMessage(tt.record))
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.PartnershipOffers)
			assert.Equal(t, []string{}, b.SponsorshipOffers)
			assert.Equal(t, []string{}, b.Gallery)
		})
	}
}

func TestNormalizeBusiness_Aliases(t *testing.T) {
	snake := `{
		"id": 7,
		"owner_id": "u1",
		"name": "Acme",
		"account_type": "\"sponsorship\"",
		"logo_url": "https://cdn/logo.png",
		"gallery_images": "[\"g1\"]",
		"sponsorship_offers": ["S"]
	}`
	camel := `{
		"id": "7",
		"ownerId": "u1",
		"name": "Acme",
		"accountType": "sponsorship",
		"logoUrl": "https://cdn/logo.png",
		"galleryImages": ["g1"],
		"sponsorshipOffers": "[\"S\"]"
	}`

	a, err := NormalizeBusiness(json.RawMessage(snake))
	require.NoError(t, err)
	b, err := NormalizeBusiness(json.RawMessage(camel))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "7", a.ID)
	assert.Equal(t, "u1", a.OwnerID)
	assert.Equal(t, "sponsorship", a.AccountType)
	assert.Equal(t, []string{"g1"}, a.Gallery)
}

func TestNormalizeBusiness_NotObject(t *testing.T) {
	_, err := NormalizeBusiness(json.RawMessage(`[1,2]`))
	assert.Error(t, err)

	_, err = NormalizeBusiness(json.RawMessage(`null`))
	assert.Error(t, err)
}

func TestNormalizeBusinesses_SkipsMalformed(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"id":"a"}`),
		json.RawMessage(`"nope"`),
		json.RawMessage(`{"id":"b"}`),
	}

	got := NormalizeBusinesses(raws)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}
