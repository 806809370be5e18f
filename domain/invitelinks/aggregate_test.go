package invitelinks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCampaign(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Summer", "summer"},
		{"strips inner whitespace", "Summer Sale", "summersale"},
		{"strips tabs and newlines", " Sum\tmer\nSale ", "summersale"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCampaign(tt.in))
		})
	}
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, "SUMMERSALE", Identity("summersale", NoCategory))
	assert.Equal(t, "SUMMERSALE", Identity("summersale", ""))
	assert.Equal(t, "SUMMERSALE#NEWS", Identity("summersale", "news"))
}

func TestAccountNormalization(t *testing.T) {
	assert.Equal(t, "acc1", NormalizeAccountTable(" Acc1 "))
	assert.Equal(t, "ACC1", AccountSK(" Acc1 "))
}

func TestGroupCode(t *testing.T) {
	assert.Equal(t, "X1", Group{InviteCode: "X1", InviteLink: "L1"}.Code())
	assert.Equal(t, "L1", Group{InviteLink: "L1"}.Code())
	assert.Equal(t, "", Group{}.Code())
}

func TestHintFor(t *testing.T) {
	campaigns := []Campaign{
		{SK: "summer", DomainWhatsAppInviteLinks: "links.example.com"},
		{SK: "winter"},
	}

	t.Run("domain campaign routes to account storage", func(t *testing.T) {
		hint := HintFor(campaigns, []string{"Summer"})
		assert.Equal(t, RoutingHint{Account: true}, hint)
	})

	t.Run("plain campaign routes to shared storage", func(t *testing.T) {
		hint := HintFor(campaigns, []string{"Winter"})
		assert.Equal(t, RoutingHint{Shared: true}, hint)
	})

	t.Run("mixed targets scan both", func(t *testing.T) {
		hint := HintFor(campaigns, []string{"Summer", "Winter"})
		assert.Equal(t, RoutingHint{Shared: true, Account: true}, hint)
	})

	t.Run("no matching campaign scans both", func(t *testing.T) {
		hint := HintFor(campaigns, []string{"Autumn"})
		assert.Equal(t, RoutingHint{Shared: true, Account: true}, hint)
	})
}
