package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/radieske/betslip-tracker/internal/tracker/model"
	"github.com/radieske/betslip-tracker/pkg/contracts/events"
)

// MockPublisher é um mock de Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishSnapshot(ctx context.Context, s events.BetsSnapshot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockAuditor é um mock de Auditor
type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) Record(ctx context.Context, e events.BetsMutated) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// MockStore é um mock de Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context) ([]model.Bet, time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Get(1).(time.Time), args.Error(2)
	}
	return args.Get(0).([]model.Bet), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockStore) SaveSnapshot(ctx context.Context, bets []model.Bet, at time.Time) error {
	args := m.Called(ctx, bets, at)
	return args.Error(0)
}

func (m *MockStore) LoadRate(ctx context.Context) (model.ExchangeRate, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.ExchangeRate), args.Bool(1), args.Error(2)
}

func (m *MockStore) SaveRate(ctx context.Context, r model.ExchangeRate) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
