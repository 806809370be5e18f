package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"invitelinks-backend/application/ports"
	"invitelinks-backend/domain/invitelinks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

const fixedUpdated = "2026-02-01T12:00:00Z"

func strPtrT(s string) *string { return &s }

func codesPtrT(codes []string) *[]string { return &codes }

func newTestUpdater(accounts *mockAccountRepository, aggregates *mockAggregateRepository) *Updater {
	u := NewUpdater(accounts, aggregates, 0, zap.NewNop())
	u.now = func() time.Time { return fixedNow }
	return u
}

func storedShared(sk, accountSK string) ports.StoredAggregate {
	return ports.StoredAggregate{
		Aggregate: invitelinks.Aggregate{
			PK:        invitelinks.AggregatePK,
			SK:        sk,
			AccountSK: accountSK,
		},
		Location: invitelinks.SharedStorage,
	}
}

func TestUpdater_EndToEndSingleAccount(t *testing.T) {
	// Arrange
	accounts := new(mockAccountRepository)
	accounts.On("Campaigns", mock.Anything, "ACC1").Return([]invitelinks.Campaign{{SK: "summersale"}}, nil)
	accounts.On("Groups", mock.Anything, "ACC1").Return([]invitelinks.Group{{
		SK:          "G1",
		Name:        "g1",
		Campaign:    "Summer Sale",
		InviteCode:  "X1",
		Members:     3,
		Publishable: true,
	}}, nil)
	accounts.On("Categories", mock.Anything, "ACC1").Return([]invitelinks.GroupCategory{}, nil)

	aggregates := new(mockAggregateRepository)
	aggregates.On("Upsert", mock.Anything, "ACC1", invitelinks.SharedStorage, ports.AggregateUpdate{
		SK:          "SUMMERSALE",
		Campaign:    "Summer Sale",
		Category:    "",
		AccountSK:   strPtrT("ACC1"),
		Domain:      strPtrT(""),
		InviteCodes: codesPtrT([]string{"G1|g1|X1"}),
		Updated:     strPtrT(fixedUpdated),
	}).Return(nil).Once()
	aggregates.On("Existing", mock.Anything, "ACC1", invitelinks.RoutingHint{Shared: true}).
		Return([]ports.StoredAggregate{storedShared("SUMMERSALE", "ACC1")}, nil)

	updater := newTestUpdater(accounts, aggregates)

	// Act
	err := updater.Run(context.Background(), []map[string][]string{{"ACC1": {"SummerSale"}}})

	// Assert
	require.NoError(t, err)
	accounts.AssertExpectations(t)
	aggregates.AssertExpectations(t)
	// No reconciliation clears: the only upsert is the produced aggregate.
	aggregates.AssertNumberOfCalls(t, "Upsert", 1)
}

func TestUpdater_ReconciliationClearsStaleIdentity(t *testing.T) {
	// Previous run published {SUMMER, SUMMER#NEWS}; this run produces only
	// SUMMER, so exactly one clearing write goes out for SUMMER#NEWS.
	accounts := new(mockAccountRepository)
	accounts.On("Campaigns", mock.Anything, "ACC1").Return([]invitelinks.Campaign{{SK: "summer"}}, nil)
	accounts.On("Groups", mock.Anything, "ACC1").Return([]invitelinks.Group{{
		SK: "G1", Name: "g1", Campaign: "Summer", InviteCode: "C1", Members: 1, Publishable: true,
	}}, nil)
	accounts.On("Categories", mock.Anything, "ACC1").Return([]invitelinks.GroupCategory{{SK: "news"}}, nil)

	aggregates := new(mockAggregateRepository)
	aggregates.On("Upsert", mock.Anything, "ACC1", invitelinks.SharedStorage, mock.MatchedBy(func(u ports.AggregateUpdate) bool {
		return u.SK == "SUMMER" && u.InviteCodes != nil && len(*u.InviteCodes) == 1
	})).Return(nil).Once()
	aggregates.On("Existing", mock.Anything, "ACC1", invitelinks.RoutingHint{Shared: true}).
		Return([]ports.StoredAggregate{
			storedShared("SUMMER", "ACC1"),
			storedShared("SUMMER#NEWS", "ACC1"),
		}, nil)
	aggregates.On("Upsert", mock.Anything, "ACC1", invitelinks.SharedStorage, ports.AggregateUpdate{
		SK:          "SUMMER#NEWS",
		InviteCodes: codesPtrT([]string{}),
		Updated:     strPtrT(fixedUpdated),
	}).Return(nil).Once()

	updater := newTestUpdater(accounts, aggregates)

	err := updater.Run(context.Background(), []map[string][]string{{"ACC1": {"Summer"}}})

	require.NoError(t, err)
	aggregates.AssertExpectations(t)
	aggregates.AssertNumberOfCalls(t, "Upsert", 2)
}

func TestUpdater_ClearsAcrossLocationsOnRoutingChange(t *testing.T) {
	// The campaign gained a domain since the last run: the aggregate now
	// routes to account storage, and the stale shared copy is cleared.
	accounts := new(mockAccountRepository)
	accounts.On("Campaigns", mock.Anything, "ACC1").Return([]invitelinks.Campaign{
		{SK: "summer", DomainWhatsAppInviteLinks: "links.example.com"},
	}, nil)
	accounts.On("Groups", mock.Anything, "ACC1").Return([]invitelinks.Group{{
		SK: "G1", Name: "g1", Campaign: "Summer", InviteCode: "C1", Members: 1, Publishable: true,
	}}, nil)
	accounts.On("Categories", mock.Anything, "ACC1").Return([]invitelinks.GroupCategory{}, nil)

	aggregates := new(mockAggregateRepository)
	aggregates.On("Upsert", mock.Anything, "ACC1", invitelinks.AccountStorage, mock.MatchedBy(func(u ports.AggregateUpdate) bool {
		// Per-account items carry no AccountSK attribute.
		return u.SK == "SUMMER" && u.AccountSK == nil && u.Domain != nil && *u.Domain == "links.example.com"
	})).Return(nil).Once()
	aggregates.On("Existing", mock.Anything, "ACC1", invitelinks.RoutingHint{Account: true}).
		Return([]ports.StoredAggregate{storedShared("SUMMER", "ACC1")}, nil)
	aggregates.On("Upsert", mock.Anything, "ACC1", invitelinks.SharedStorage, mock.MatchedBy(func(u ports.AggregateUpdate) bool {
		return u.SK == "SUMMER" && u.InviteCodes != nil && len(*u.InviteCodes) == 0
	})).Return(nil).Once()

	updater := newTestUpdater(accounts, aggregates)

	err := updater.Run(context.Background(), []map[string][]string{{"ACC1": {"Summer"}}})

	require.NoError(t, err)
	aggregates.AssertExpectations(t)
}

func TestUpdater_ZeroMatchingCampaignsClearsEverything(t *testing.T) {
	accounts := new(mockAccountRepository)
	accounts.On("Campaigns", mock.Anything, "ACC1").Return([]invitelinks.Campaign{}, nil)
	accounts.On("Groups", mock.Anything, "ACC1").Return([]invitelinks.Group{}, nil)
	accounts.On("Categories", mock.Anything, "ACC1").Return([]invitelinks.GroupCategory{}, nil)

	aggregates := new(mockAggregateRepository)
	aggregates.On("Existing", mock.Anything, "ACC1", invitelinks.RoutingHint{Shared: true, Account: true}).
		Return([]ports.StoredAggregate{
			storedShared("SUMMER", "ACC1"),
			storedShared("WINTER", "ACC1"),
		}, nil)
	aggregates.On("Upsert", mock.Anything, "ACC1", invitelinks.SharedStorage, mock.MatchedBy(func(u ports.AggregateUpdate) bool {
		return u.InviteCodes != nil && len(*u.InviteCodes) == 0
	})).Return(nil).Twice()

	updater := newTestUpdater(accounts, aggregates)

	err := updater.Run(context.Background(), []map[string][]string{{"ACC1": {"Summer"}}})

	require.NoError(t, err)
	aggregates.AssertExpectations(t)
}

func TestUpdater_SkipsMalformedEntries(t *testing.T) {
	accounts := new(mockAccountRepository)
	aggregates := new(mockAggregateRepository)
	updater := newTestUpdater(accounts, aggregates)

	err := updater.Run(context.Background(), []map[string][]string{
		{},                // no account key
		{"ACC1": {}},      // empty campaign list
		{"": {"Summer"}},  // empty account identifier
	})

	require.NoError(t, err)
	accounts.AssertNotCalled(t, "Campaigns", mock.Anything, mock.Anything)
	aggregates.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdater_EntityFetchFailureSkipsAccount(t *testing.T) {
	accounts := new(mockAccountRepository)
	accounts.On("Campaigns", mock.Anything, "ACC1").Return([]invitelinks.Campaign{}, nil)
	accounts.On("Groups", mock.Anything, "ACC1").Return(nil, errors.New("table unreachable"))
	accounts.On("Categories", mock.Anything, "ACC1").Return([]invitelinks.GroupCategory{}, nil)

	aggregates := new(mockAggregateRepository)
	updater := newTestUpdater(accounts, aggregates)

	err := updater.Run(context.Background(), []map[string][]string{{"ACC1": {"Summer"}}})

	// Absorbed as a warning; no writes and no reconciliation for the account.
	require.NoError(t, err)
	aggregates.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	aggregates.AssertNotCalled(t, "Existing", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdater_UpsertFailureDoesNotAbortRun(t *testing.T) {
	accounts := new(mockAccountRepository)
	accounts.On("Campaigns", mock.Anything, mock.Anything).Return([]invitelinks.Campaign{{SK: "summer"}}, nil)
	accounts.On("Groups", mock.Anything, mock.Anything).Return([]invitelinks.Group{{
		SK: "G1", Name: "g1", Campaign: "Summer", InviteCode: "C1", Members: 1, Publishable: true,
	}}, nil)
	accounts.On("Categories", mock.Anything, mock.Anything).Return([]invitelinks.GroupCategory{}, nil)

	aggregates := new(mockAggregateRepository)
	aggregates.On("Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("write throttled"))
	aggregates.On("Existing", mock.Anything, mock.Anything, mock.Anything).
		Return([]ports.StoredAggregate{}, nil)

	updater := newTestUpdater(accounts, aggregates)

	err := updater.Run(context.Background(), []map[string][]string{
		{"ACC1": {"Summer"}},
		{"ACC2": {"Summer"}},
	})

	require.NoError(t, err)
	// Both accounts were still attempted.
	accounts.AssertNumberOfCalls(t, "Groups", 2)
}

func TestUpdater_FailedUpsertDoesNotClearProducedIdentity(t *testing.T) {
	// The engine still produces SUMMER this run; its write merely failed.
	// Reconciliation must leave the previously published SUMMER record
	// untouched instead of clearing it.
	accounts := new(mockAccountRepository)
	accounts.On("Campaigns", mock.Anything, "ACC1").Return([]invitelinks.Campaign{{SK: "summer"}}, nil)
	accounts.On("Groups", mock.Anything, "ACC1").Return([]invitelinks.Group{{
		SK: "G1", Name: "g1", Campaign: "Summer", InviteCode: "C1", Members: 1, Publishable: true,
	}}, nil)
	accounts.On("Categories", mock.Anything, "ACC1").Return([]invitelinks.GroupCategory{}, nil)

	aggregates := new(mockAggregateRepository)
	aggregates.On("Upsert", mock.Anything, "ACC1", invitelinks.SharedStorage, mock.MatchedBy(func(u ports.AggregateUpdate) bool {
		return u.SK == "SUMMER" && u.InviteCodes != nil && len(*u.InviteCodes) == 1
	})).Return(errors.New("write throttled")).Once()
	aggregates.On("Existing", mock.Anything, "ACC1", invitelinks.RoutingHint{Shared: true}).
		Return([]ports.StoredAggregate{storedShared("SUMMER", "ACC1")}, nil)

	updater := newTestUpdater(accounts, aggregates)

	err := updater.Run(context.Background(), []map[string][]string{{"ACC1": {"Summer"}}})

	require.NoError(t, err)
	aggregates.AssertExpectations(t)
	// Exactly the one failed produced write; no clearing write for SUMMER.
	aggregates.AssertNumberOfCalls(t, "Upsert", 1)
}

func TestUpdater_EmptyAccountsFailsRun(t *testing.T) {
	updater := newTestUpdater(new(mockAccountRepository), new(mockAggregateRepository))

	err := updater.Run(context.Background(), nil)

	assert.Error(t, err)
}

func TestUpdater_IdempotentSecondRunIssuesNoClears(t *testing.T) {
	accounts := new(mockAccountRepository)
	accounts.On("Campaigns", mock.Anything, "ACC1").Return([]invitelinks.Campaign{{SK: "summer"}}, nil)
	accounts.On("Groups", mock.Anything, "ACC1").Return([]invitelinks.Group{{
		SK: "G1", Name: "g1", Campaign: "Summer", InviteCode: "C1", Members: 1, Publishable: true,
	}}, nil)
	accounts.On("Categories", mock.Anything, "ACC1").Return([]invitelinks.GroupCategory{}, nil)

	var firstUpdate ports.AggregateUpdate
	aggregates := new(mockAggregateRepository)
	aggregates.On("Upsert", mock.Anything, "ACC1", invitelinks.SharedStorage, mock.MatchedBy(func(u ports.AggregateUpdate) bool {
		if firstUpdate.SK == "" {
			firstUpdate = u
		}
		return u.SK == "SUMMER"
	})).Return(nil)
	aggregates.On("Existing", mock.Anything, "ACC1", mock.Anything).
		Return([]ports.StoredAggregate{storedShared("SUMMER", "ACC1")}, nil)

	updater := newTestUpdater(accounts, aggregates)
	input := []map[string][]string{{"ACC1": {"Summer"}}}

	require.NoError(t, updater.Run(context.Background(), input))
	require.NoError(t, updater.Run(context.Background(), input))

	// Two runs, one produced upsert each, zero clears.
	aggregates.AssertNumberOfCalls(t, "Upsert", 2)
}
