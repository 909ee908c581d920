package repository

import (
	"context"
	"net/http"

	"github.com/bsv-blockchain/fractionalize/model"
	"github.com/bsv-blockchain/fractionalize/services/fractionalize/query"
	"github.com/stretchr/testify/mock"
)

var _ Interface = (*Mock)(nil)

type Mock struct {
	mock.Mock
}

func (m *Mock) Health(_ context.Context, _ bool) (int, string, error) {
	return http.StatusOK, "OK", nil
}

func (m *Mock) Ping(_ context.Context) error {
	args := m.Called()

	return args.Error(0)
}

func (m *Mock) QueryRecords(_ context.Context, spec *query.Spec) ([]*model.UTXORef, error) {
	args := m.Called(spec)

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	// return the mocked response
	return args.Get(0).([]*model.UTXORef), args.Error(1)
}

func (m *Mock) Overview(_ context.Context) (*Statistics, error) {
	args := m.Called()

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*Statistics), args.Error(1)
}

func (m *Mock) AdminStats(_ context.Context) (*Statistics, error) {
	args := m.Called()

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*Statistics), args.Error(1)
}
