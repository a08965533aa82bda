package shaping

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"

	"github.com/loganlanou/colink-venture/internal/backend"
)

func fakeBusinesses(n int, owner string) []backend.Business {
	faker := gofakeit.New(42)
	out := make([]backend.Business, n)
	for i := range out {
		out[i] = backend.Business{
			ID:          faker.UUID(),
			OwnerID:     owner,
			Name:        faker.Company(),
			Description: faker.Sentence(8),
			Industry:    faker.JobDescriptor(),
		}
	}
	return out
}

func TestExcludeOwner(t *testing.T) {
	list := append(fakeBusinesses(3, "someone-else"), fakeBusinesses(2, "me")...)

	got := ExcludeOwner(list, "me")
	assert.Len(t, got, 3)
	for _, b := range got {
		assert.NotEqual(t, "me", b.OwnerID)
	}

	assert.Len(t, ExcludeOwner(list, ""), 5)
}

func TestFilter(t *testing.T) {
	list := []backend.Business{
		{ID: "1", Name: "Green Grocers", Industry: "Retail"},
		{ID: "2", Name: "Byte Works", Description: "Custom SOFTWARE shop"},
		{ID: "3", Name: "Harbor Freight", Industry: "Logistics"},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"1", "2", "3"}},
		{query: "   ", want: []string{"1", "2", "3"}},
		{query: "green", want: []string{"1"}},
		{query: "software", want: []string{"2"}},
		{query: "LOGISTICS", want: []string{"3"}},
		{query: "r", want: []string{"1", "2", "3"}},
		{query: "nothing matches", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ids := []string{}
			for _, b := range Filter(list, tt.query) {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterAccountType(t *testing.T) {
	list := []backend.Business{
		{ID: "1", AccountType: backend.AccountPartnership},
		{ID: "2", AccountType: backend.AccountSponsorship},
	}

	assert.Len(t, FilterAccountType(list, ""), 2)
	got := FilterAccountType(list, backend.AccountSponsorship)
	assert.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}
