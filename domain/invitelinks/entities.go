// Package invitelinks holds the domain model for WhatsApp invite-link
// aggregation: the raw per-account entities, the computed aggregate record,
// and the pure engine that turns one into the other.
package invitelinks

// Partition keys for raw entities within a per-account table, and for
// aggregate records in every storage location that can hold them.
const (
	CampaignPK  = "CAMPAIGN"
	GroupPK     = "WHATSAPP#GROUP"
	CategoryPK  = "WHATSAPP#GROUPCATEGORY"
	AggregatePK = "WHATSAPP#INVITELINKS"
)

// NoCategory is the bucket key for groups that carry no category reference.
const NoCategory = "no_category"

// MaxInviteCodes caps the ranked invite-code list per aggregate.
const MaxInviteCodes = 10

// Campaign is a raw campaign record from an account table. A non-empty
// DomainWhatsAppInviteLinks routes the campaign's aggregates to the
// account's own table instead of the shared one.
type Campaign struct {
	PK                        string `dynamodbav:"PK"`
	SK                        string `dynamodbav:"SK"`
	Name                      string `dynamodbav:"Name"`
	DomainWhatsAppInviteLinks string `dynamodbav:"DomainWhatsAppInviteLinks"`
}

// Group is a raw WhatsApp group record from an account table.
type Group struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	Name        string `dynamodbav:"Name"`
	Campaign    string `dynamodbav:"Campaign"`
	Category    string `dynamodbav:"Category"`
	InviteCode  string `dynamodbav:"InviteCode"`
	InviteLink  string `dynamodbav:"InviteLink"`
	Members     int    `dynamodbav:"Members"`
	Publishable bool   `dynamodbav:"Publishable"`
}

// GroupCategory is a raw category record. Its SK is the identity that group
// Category references must match, case-insensitively.
type GroupCategory struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}

// Aggregate is the denormalized invite-links record as stored. AccountSK is
// only present on shared-table items; per-account tables imply the account.
type Aggregate struct {
	PK          string   `dynamodbav:"PK"`
	SK          string   `dynamodbav:"SK"`
	AccountSK   string   `dynamodbav:"AccountSK,omitempty"`
	Campaign    string   `dynamodbav:"Campaign"`
	Category    string   `dynamodbav:"Category"`
	Domain      string   `dynamodbav:"Domain"`
	InviteCodes []string `dynamodbav:"InviteCodes"`
	Updated     string   `dynamodbav:"Updated"`
}
