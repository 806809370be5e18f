package invitelinks

import (
	"fmt"
	"strings"
	"unicode"
)

// StorageLocation identifies which table an aggregate record lives in.
type StorageLocation int

const (
	// SharedStorage is the central table holding aggregates for campaigns
	// without a custom domain.
	SharedStorage StorageLocation = iota
	// AccountStorage is the account's own table, used when the owning
	// campaign has a non-empty DomainWhatsAppInviteLinks.
	AccountStorage
)

func (l StorageLocation) String() string {
	if l == AccountStorage {
		return "account"
	}
	return "shared"
}

// NormalizeCampaign strips all whitespace from a campaign name and lowers it,
// producing the key used for matching and for the aggregate sort key.
func NormalizeCampaign(name string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
	return strings.ToLower(stripped)
}

// NormalizeAccountTable lowers an account identifier for table addressing.
func NormalizeAccountTable(account string) string {
	return strings.ToLower(strings.TrimSpace(account))
}

// AccountSK uppercases an account identifier for the shared-table attribute.
func AccountSK(account string) string {
	return strings.ToUpper(strings.TrimSpace(account))
}

// Identity builds the aggregate sort key for a (campaign, category) bucket:
// CAMPAIGN for the no-category bucket, CAMPAIGN#CATEGORY otherwise.
func Identity(campaignKey, categoryKey string) string {
	if categoryKey == NoCategory || categoryKey == "" {
		return strings.ToUpper(campaignKey)
	}
	return strings.ToUpper(campaignKey) + "#" + strings.ToUpper(categoryKey)
}

// Code returns the group's invite code, falling back to its invite link.
func (g Group) Code() string {
	if g.InviteCode != "" {
		return g.InviteCode
	}
	return g.InviteLink
}

// InviteEntry renders the stored invite-code string for a group.
func (g Group) InviteEntry() string {
	return fmt.Sprintf("%s|%s|%s", g.SK, g.Name, g.Code())
}

// RoutingHint records which storage locations this account's aggregates can
// occupy, so fetches skip locations that cannot contain relevant entries.
type RoutingHint struct {
	Shared  bool
	Account bool
}

// HintFor derives the routing hint from the campaigns being processed: a
// campaign with a domain routes to account storage, one without to shared.
// When no campaign entity matches the targets, both locations are scanned so
// reconciliation can still clear everything previously published.
func HintFor(campaigns []Campaign, targets []string) RoutingHint {
	targetSet := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		targetSet[NormalizeCampaign(t)] = struct{}{}
	}

	var hint RoutingHint
	matched := false
	for _, c := range campaigns {
		if _, ok := targetSet[strings.ToLower(c.SK)]; !ok {
			continue
		}
		matched = true
		if c.DomainWhatsAppInviteLinks != "" {
			hint.Account = true
		} else {
			hint.Shared = true
		}
	}
	if !matched {
		return RoutingHint{Shared: true, Account: true}
	}
	return hint
}
