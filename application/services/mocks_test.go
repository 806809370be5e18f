package services

import (
	"context"

	"invitelinks-backend/application/ports"
	"invitelinks-backend/domain/invitelinks"

	"github.com/stretchr/testify/mock"
)

type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) Campaigns(ctx context.Context, account string) ([]invitelinks.Campaign, error) {
	args := m.Called(ctx, account)
	if v := args.Get(0); v != nil {
		return v.([]invitelinks.Campaign), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepository) Groups(ctx context.Context, account string) ([]invitelinks.Group, error) {
	args := m.Called(ctx, account)
	if v := args.Get(0); v != nil {
		return v.([]invitelinks.Group), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepository) Categories(ctx context.Context, account string) ([]invitelinks.GroupCategory, error) {
	args := m.Called(ctx, account)
	if v := args.Get(0); v != nil {
		return v.([]invitelinks.GroupCategory), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAggregateRepository struct {
	mock.Mock
}

func (m *mockAggregateRepository) Existing(ctx context.Context, account string, hint invitelinks.RoutingHint) ([]ports.StoredAggregate, error) {
	args := m.Called(ctx, account, hint)
	if v := args.Get(0); v != nil {
		return v.([]ports.StoredAggregate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAggregateRepository) Upsert(ctx context.Context, account string, loc invitelinks.StorageLocation, update ports.AggregateUpdate) error {
	args := m.Called(ctx, account, loc, update)
	return args.Error(0)
}
