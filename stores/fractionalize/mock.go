package fractionalize

import (
	"context"

	"github.com/bsv-blockchain/fractionalize/model"
	"github.com/stretchr/testify/mock"
)

var _ Store = (*MockStore)(nil)

// MockStore is a testify mock of Store. Expectations are matched on the
// arguments after ctx.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Health(_ context.Context, checkLiveness bool) (int, string, error) {
	args := m.Called(checkLiveness)

	return args.Int(0), args.String(1), args.Error(2)
}

func (m *MockStore) Ping(_ context.Context) error {
	args := m.Called()

	return args.Error(0)
}

func (m *MockStore) Count(_ context.Context, filter *Filter) (uint64, error) {
	args := m.Called(filter)

	if args.Error(1) != nil {
		return 0, args.Error(1)
	}

	return args.Get(0).(uint64), nil
}

func (m *MockStore) Find(_ context.Context, filter *Filter, opts FindOptions) ([]*model.UTXORef, error) {
	args := m.Called(filter, opts)

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*model.UTXORef), nil
}

func (m *MockStore) Metadata(_ context.Context) (*Metadata, error) {
	args := m.Called()

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*Metadata), nil
}

func (m *MockStore) Close(_ context.Context) error {
	args := m.Called()

	return args.Error(0)
}
