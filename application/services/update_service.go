// Package services contains the application services orchestrating the
// invite-links update pipeline.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"invitelinks-backend/application/ports"
	"invitelinks-backend/domain/invitelinks"
	pkgerrors "invitelinks-backend/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpdateRequest is the invocation payload: an ordered list of single-key
// account entries mapping an account identifier to the campaign names to
// process for it.
type UpdateRequest struct {
	Accounts    []map[string][]string    `json:"accounts" validate:"required,min=1"`
	APIKey      string                   `json:"apiKey,omitempty"`
	Credentials *ports.StaticCredentials `json:"credentials,omitempty"`
}

// UpdaterFactory builds an Updater for one invocation. A credentials
// override yields a fresh client set instead of the process-wide one.
type UpdaterFactory interface {
	Updater(ctx context.Context, creds *ports.StaticCredentials) (*Updater, error)
}

// Updater runs the aggregation-and-reconciliation pipeline: per account it
// fetches raw entities, builds ranked aggregates, upserts them to their
// routed location, and clears previously published aggregates the current
// input no longer produces. Accounts are processed strictly in sequence with
// a pacing delay between them to bound load on per-account tables.
type Updater struct {
	accounts   ports.AccountRepository
	aggregates ports.AggregateRepository
	pacing     time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewUpdater creates a new Updater.
func NewUpdater(accounts ports.AccountRepository, aggregates ports.AggregateRepository, pacing time.Duration, logger *zap.Logger) *Updater {
	return &Updater{
		accounts:   accounts,
		aggregates: aggregates,
		pacing:     pacing,
		logger:     logger,
		now:        time.Now,
	}
}

// Run processes every account entry in order. Per-account storage failures
// are absorbed as warnings; only an unexpected failure makes the whole run
// report as failed.
func (u *Updater) Run(ctx context.Context, accounts []map[string][]string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = pkgerrors.NewInternalError(fmt.Sprintf("update run panicked: %v", r))
		}
	}()

	if len(accounts) == 0 {
		return pkgerrors.NewValidationError("no accounts to process")
	}

	runID := uuid.New().String()
	u.logger.Info("Invite-links update run started",
		zap.String("runID", runID),
		zap.Int("accounts", len(accounts)),
	)

	for _, entry := range accounts {
		account, campaigns := singleEntry(entry)
		if account == "" || len(campaigns) == 0 {
			u.logger.Warn("Skipping malformed account entry",
				zap.String("runID", runID),
				zap.String("account", account),
			)
			continue
		}

		u.processAccount(ctx, runID, account, campaigns)

		// Pace successive accounts to rate-limit downstream storage load.
		time.Sleep(u.pacing)
	}

	u.logger.Info("Invite-links update run finished", zap.String("runID", runID))
	return nil
}

// processAccount runs fetch, aggregation, write and reconciliation for one
// account. Failures are logged and absorbed so later accounts still run.
func (u *Updater) processAccount(ctx context.Context, runID, account string, targetCampaigns []string) {
	raw, err := u.fetchEntities(ctx, account)
	if err != nil {
		u.logger.Warn("Skipping account, entity fetch failed",
			zap.String("runID", runID),
			zap.String("account", account),
			zap.Error(err),
		)
		return
	}
	raw.TargetCampaigns = targetCampaigns

	drafts := invitelinks.Build(raw)
	updated := u.now().UTC().Format(time.RFC3339)

	type producedKey struct {
		sk  string
		loc invitelinks.StorageLocation
	}
	// Every identity the engine produced this run is protected from clearing,
	// whether or not its write goes through: a failed upsert leaves the
	// previous aggregate in place, which is better than wiping it.
	produced := make(map[producedKey]struct{}, len(drafts))
	for _, draft := range drafts {
		produced[producedKey{sk: draft.Identity, loc: draft.Location}] = struct{}{}
	}

	for _, draft := range drafts {
		update := ports.AggregateUpdate{
			SK:          draft.Identity,
			Campaign:    draft.Campaign,
			Category:    draft.Category,
			Domain:      strPtr(draft.Domain),
			InviteCodes: codesPtr(draft.InviteCodes),
			Updated:     strPtr(updated),
		}
		if draft.Location == invitelinks.SharedStorage {
			update.AccountSK = strPtr(invitelinks.AccountSK(account))
		}

		if err := u.aggregates.Upsert(ctx, account, draft.Location, update); err != nil {
			u.logger.Warn("Failed to upsert aggregate",
				zap.String("runID", runID),
				zap.String("account", account),
				zap.String("sk", draft.Identity),
				zap.Error(err),
			)
		}
	}

	// Reconciliation: everything previously published for this account that
	// the current input no longer produces, in whichever location it was
	// found, gets its invite codes cleared. The record itself is kept.
	hint := invitelinks.HintFor(raw.Campaigns, targetCampaigns)
	existing, err := u.aggregates.Existing(ctx, account, hint)
	if err != nil {
		u.logger.Warn("Skipping reconciliation, aggregate read failed",
			zap.String("runID", runID),
			zap.String("account", account),
			zap.Error(err),
		)
		return
	}

	cleared := 0
	for _, stored := range existing {
		key := producedKey{sk: stored.Aggregate.SK, loc: stored.Location}
		if _, ok := produced[key]; ok {
			continue
		}

		clear := ports.AggregateUpdate{
			SK:          stored.Aggregate.SK,
			InviteCodes: codesPtr([]string{}),
			Updated:     strPtr(updated),
		}
		if err := u.aggregates.Upsert(ctx, account, stored.Location, clear); err != nil {
			u.logger.Warn("Failed to clear stale aggregate",
				zap.String("runID", runID),
				zap.String("account", account),
				zap.String("sk", stored.Aggregate.SK),
				zap.Error(err),
			)
			continue
		}
		cleared++
	}

	u.logger.Info("Account processed",
		zap.String("runID", runID),
		zap.String("account", account),
		zap.Int("aggregates", len(drafts)),
		zap.Int("cleared", cleared),
	)
}

// fetchEntities loads campaigns, groups and categories concurrently; there
// is no ordering dependency between the three partitions.
func (u *Updater) fetchEntities(ctx context.Context, account string) (invitelinks.Input, error) {
	var (
		wg          sync.WaitGroup
		campaigns   []invitelinks.Campaign
		groups      []invitelinks.Group
		categories  []invitelinks.GroupCategory
		campaignErr error
		groupErr    error
		categoryErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		campaigns, campaignErr = u.accounts.Campaigns(ctx, account)
	}()
	go func() {
		defer wg.Done()
		groups, groupErr = u.accounts.Groups(ctx, account)
	}()
	go func() {
		defer wg.Done()
		categories, categoryErr = u.accounts.Categories(ctx, account)
	}()
	wg.Wait()

	for _, err := range []error{campaignErr, groupErr, categoryErr} {
		if err != nil {
			return invitelinks.Input{}, err
		}
	}

	return invitelinks.Input{
		Campaigns:  campaigns,
		Groups:     groups,
		Categories: categories,
	}, nil
}

// singleEntry extracts the account identifier and campaign list from a
// single-key request entry.
func singleEntry(entry map[string][]string) (string, []string) {
	for account, campaigns := range entry {
		return account, campaigns
	}
	return "", nil
}

func strPtr(s string) *string {
	return &s
}

func codesPtr(codes []string) *[]string {
	return &codes
}
