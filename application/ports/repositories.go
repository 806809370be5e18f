// Package ports defines the interfaces the application layer depends on,
// implemented by the infrastructure layer.
package ports

import (
	"context"

	"invitelinks-backend/domain/invitelinks"
)

// StaticCredentials is the optional per-request storage credential override,
// used to run the job against a real backend under test credentials.
type StaticCredentials struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
}

// AccountRepository fetches the raw entities from one account's table.
// Each call returns the full set for that account, paginating transparently.
type AccountRepository interface {
	Campaigns(ctx context.Context, account string) ([]invitelinks.Campaign, error)
	Groups(ctx context.Context, account string) ([]invitelinks.Group, error)
	Categories(ctx context.Context, account string) ([]invitelinks.GroupCategory, error)
}

// StoredAggregate pairs an aggregate record with the location it was read
// from, so the reconciler can clear it where it actually resides.
type StoredAggregate struct {
	Aggregate invitelinks.Aggregate
	Location  invitelinks.StorageLocation
}

// AggregateUpdate is the partial-update payload for one aggregate record.
// Pointer fields distinguish "absent" from "explicitly set to empty": an
// unset field is never written, so it cannot clobber a stored attribute.
// Campaign and Category are always written, defaulting to empty string.
type AggregateUpdate struct {
	SK          string
	Campaign    string
	Category    string
	AccountSK   *string
	Domain      *string
	InviteCodes *[]string
	Updated     *string
}

// AggregateRepository reads and writes aggregate records across the storage
// locations an account's aggregates may occupy.
type AggregateRepository interface {
	// Existing returns the union of this account's aggregates found in the
	// locations the hint allows. An unreachable location degrades to an
	// empty contribution with a warning; it never fails the call.
	Existing(ctx context.Context, account string, hint invitelinks.RoutingHint) ([]StoredAggregate, error)

	// Upsert applies a partial update by primary key to the given location,
	// mirroring to the secondary region when one is configured.
	Upsert(ctx context.Context, account string, loc invitelinks.StorageLocation, update AggregateUpdate) error
}

// AggregateCache is the process-wide read-through cache of the shared
// table's aggregate partition.
type AggregateCache interface {
	// Snapshot returns all cached aggregates; ok is false until the cache
	// has been populated, or forever once it has been disabled.
	Snapshot() (aggregates []invitelinks.Aggregate, ok bool)

	// Populate installs the result of the initial full partition scan.
	Populate(aggregates []invitelinks.Aggregate)

	// Disable turns the cache off for the remainder of the process after a
	// failed initial scan.
	Disable()

	// Disabled reports whether the cache has been turned off.
	Disabled() bool

	// MergeOnWrite folds a successful shared-table write into the cached
	// entry: written attributes overwrite, unset ones keep the prior value.
	MergeOnWrite(update AggregateUpdate)

	// InvalidateAll drops every cached entry so the next read repopulates.
	InvalidateAll()
}
