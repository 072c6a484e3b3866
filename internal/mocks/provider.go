package mocks

import (
	"github.com/brettbedarf/mvsfs"
	"github.com/stretchr/testify/mock"
)

// MockClientProvider implements adapters.Provider for testing
type MockClientProvider struct {
	mock.Mock
}

func (m *MockClientProvider) NewClient(raw []byte) (mvsfs.ListingClient, error) {
	args := m.Called(raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(mvsfs.ListingClient), args.Error(1)
}
