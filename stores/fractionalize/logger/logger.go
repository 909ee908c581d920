// Package logger decorates a record store with one log line per call,
// enabled with ?logging=true on the store URL.
package logger

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bsv-blockchain/fractionalize/model"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize"
	"github.com/bsv-blockchain/fractionalize/ulogger"
)

const callerDepth = 3

type Store struct {
	logger ulogger.Logger
	store  fractionalize.Store
}

func New(logger ulogger.Logger, store fractionalize.Store) fractionalize.Store {
	return &Store{
		logger: logger,
		store:  store,
	}
}

// caller lists the frames above the decorated method, trimmed to the module-relative path.
func caller() string {
	callers := make([]string, 0, callerDepth)

	for i := 0; i < callerDepth; i++ {
		pc, file, line, ok := runtime.Caller(2 + i)
		if !ok {
			break
		}

		if idx := strings.Index(file, "fractionalize/"); idx >= 0 {
			file = file[idx+len("fractionalize/"):]
		} else {
			file = filepath.Base(file)
		}

		funcName := runtime.FuncForPC(pc).Name()
		funcPaths := strings.Split(funcName, "/")
		funcName = funcPaths[len(funcPaths)-1]

		callers = append(callers, fmt.Sprintf("called from %s: %s:%d", funcName, file, line))
	}

	return strings.Join(callers, ",")
}

func describe(filter *fractionalize.Filter) string {
	if filter == nil {
		return "{}"
	}

	parts := make([]string, 0, 3)

	if filter.TxID != "" {
		parts = append(parts, "txid="+filter.TxID)
	}

	if filter.Since != nil {
		parts = append(parts, "since="+filter.Since.UTC().Format(time.RFC3339))
	}

	if filter.Until != nil {
		parts = append(parts, "until="+filter.Until.UTC().Format(time.RFC3339))
	}

	return "{" + strings.Join(parts, " ") + "}"
}

func (s *Store) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	status, msg, err := s.store.Health(ctx, checkLiveness)
	s.logger.Infof("[RecordStore][logger][Health] liveness %t status %d err %v : %s", checkLiveness, status, err, caller())

	return status, msg, err
}

func (s *Store) Ping(ctx context.Context) error {
	err := s.store.Ping(ctx)
	s.logger.Infof("[RecordStore][logger][Ping] err %v : %s", err, caller())

	return err
}

func (s *Store) Count(ctx context.Context, filter *fractionalize.Filter) (uint64, error) {
	start := time.Now()
	count, err := s.store.Count(ctx, filter)
	s.logger.Infof("[RecordStore][logger][Count] filter %s count %d err %v in %s : %s", describe(filter), count, err, time.Since(start), caller())

	return count, err
}

func (s *Store) Find(ctx context.Context, filter *fractionalize.Filter, opts fractionalize.FindOptions) ([]*model.UTXORef, error) {
	start := time.Now()
	refs, err := s.store.Find(ctx, filter, opts)
	s.logger.Infof("[RecordStore][logger][Find] filter %s sort %s skip %d limit %d returned %d err %v in %s : %s",
		describe(filter), opts.Sort, opts.Skip, opts.Limit, len(refs), err, time.Since(start), caller())

	return refs, err
}

func (s *Store) Metadata(ctx context.Context) (*fractionalize.Metadata, error) {
	md, err := s.store.Metadata(ctx)
	if md != nil {
		s.logger.Infof("[RecordStore][logger][Metadata] collections %d indexes %d storageSize set %t err %v : %s",
			md.Collections, md.Indexes, md.StorageSize != nil, err, caller())
	} else {
		s.logger.Infof("[RecordStore][logger][Metadata] err %v : %s", err, caller())
	}

	return md, err
}

func (s *Store) Close(ctx context.Context) error {
	err := s.store.Close(ctx)
	s.logger.Infof("[RecordStore][logger][Close] err %v : %s", err, caller())

	return err
}
