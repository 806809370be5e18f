package invitelinks

import (
	"sort"
	"strings"
)

// Input carries the raw entities fetched for one account together with the
// campaign names requested for it.
type Input struct {
	TargetCampaigns []string
	Campaigns       []Campaign
	Groups          []Group
	Categories      []GroupCategory
}

// Draft is one aggregate produced by the engine, ready to be written.
type Draft struct {
	Identity    string
	Campaign    string
	Category    string
	Domain      string
	InviteCodes []string
	Location    StorageLocation
}

// Build computes the aggregate drafts for one account. It is pure and
// deterministic: drafts come out ordered by identity.
func Build(in Input) []Draft {
	targets := make(map[string]struct{}, len(in.TargetCampaigns))
	for _, name := range in.TargetCampaigns {
		if key := NormalizeCampaign(name); key != "" {
			targets[key] = struct{}{}
		}
	}

	validCategories := make(map[string]struct{}, len(in.Categories))
	for _, cat := range in.Categories {
		validCategories[strings.ToLower(cat.SK)] = struct{}{}
	}

	// Groups must be publishable, carry a code or link, declare a campaign in
	// the target set, and reference either no category or a known one.
	type bucketKey struct {
		campaign string
		category string
	}
	buckets := make(map[bucketKey][]Group)
	for _, g := range in.Groups {
		if !g.Publishable || g.Code() == "" || g.Campaign == "" {
			continue
		}
		campaignKey := NormalizeCampaign(g.Campaign)
		if _, ok := targets[campaignKey]; !ok {
			continue
		}
		categoryKey := NoCategory
		if g.Category != "" {
			categoryKey = strings.ToLower(g.Category)
			if _, ok := validCategories[categoryKey]; !ok {
				continue
			}
		}
		key := bucketKey{campaign: campaignKey, category: categoryKey}
		buckets[key] = append(buckets[key], g)
	}

	keys := make([]bucketKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].campaign != keys[j].campaign {
			return keys[i].campaign < keys[j].campaign
		}
		return keys[i].category < keys[j].category
	})

	drafts := make([]Draft, 0, len(keys))
	for _, key := range keys {
		groups := buckets[key]

		// Ascending by member count, stable so ties keep input order.
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].Members < groups[j].Members
		})
		if len(groups) > MaxInviteCodes {
			groups = groups[:MaxInviteCodes]
		}

		codes := make([]string, 0, len(groups))
		for _, g := range groups {
			codes = append(codes, g.InviteEntry())
		}

		domain := ""
		for _, c := range in.Campaigns {
			if strings.ToLower(c.SK) == key.campaign {
				domain = c.DomainWhatsAppInviteLinks
				break
			}
		}

		category := ""
		if key.category != NoCategory {
			category = key.category
		}

		location := SharedStorage
		if domain != "" {
			location = AccountStorage
		}

		drafts = append(drafts, Draft{
			Identity:    Identity(key.campaign, key.category),
			Campaign:    groups[0].Campaign,
			Category:    category,
			Domain:      domain,
			InviteCodes: codes,
			Location:    location,
		})
	}

	return drafts
}
