// Package sql is a record store on PostgreSQL or SQLite through util/usql.
package sql

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bsv-blockchain/fractionalize/errors"
	"github.com/bsv-blockchain/fractionalize/model"
	"github.com/bsv-blockchain/fractionalize/settings"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize"
	"github.com/bsv-blockchain/fractionalize/ulogger"
	"github.com/bsv-blockchain/fractionalize/util"
	"github.com/bsv-blockchain/fractionalize/util/usql"
)

const (
	backend   = "sql"
	tableName = "fractionalize_records"
)

type Store struct {
	logger ulogger.Logger
	db     *usql.DB
	engine util.SQLEngine
}

func New(ctx context.Context, logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (*Store, error) {
	logger = logger.New("frsql")

	db, err := util.InitSQLDB(logger, storeURL, tSettings)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("failed to init sql db", err)
	}

	s := &Store{
		logger: logger,
		db:     db,
		engine: util.SQLEngine(storeURL.Scheme),
	}

	if err = s.createSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// createSchema makes sure the table and its createdAt index exist so that an
// empty database can be queried. Records are never written here.
func (s *Store) createSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+tableName+` (
			 txid          VARCHAR(64) NOT NULL
			,output_index  BIGINT NOT NULL
			,created_at    BIGINT NOT NULL
			,spending_txid VARCHAR(64) NULL
			,PRIMARY KEY (txid, output_index)
		);
	`); err != nil {
		return errors.NewStorageError("could not create %s table", tableName, err)
	}

	if _, err := s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_`+tableName+`_created_at ON `+tableName+` (created_at);`); err != nil {
		return errors.NewStorageError("could not create created_at index", err)
	}

	return nil
}

func (s *Store) Health(ctx context.Context, _ bool) (int, string, error) {
	if err := s.Ping(ctx); err != nil {
		return http.StatusServiceUnavailable, fmt.Sprintf("SQL Store (%s) unavailable", s.engine), err
	}

	return http.StatusOK, fmt.Sprintf("SQL Store (%s) available", s.engine), nil
}

func (s *Store) Ping(ctx context.Context) (err error) {
	defer fractionalize.Observe(backend, "Ping", time.Now(), &err)

	if err = s.db.PingContext(ctx); err != nil {
		return errors.NewStorageUnavailableError("[%s] ping failed", s.engine, err)
	}

	return nil
}

func (s *Store) Count(ctx context.Context, filter *fractionalize.Filter) (_ uint64, err error) {
	defer fractionalize.Observe(backend, "Count", time.Now(), &err)

	where, args := buildWhere(filter)

	var count uint64
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+tableName+where, args...).Scan(&count); err != nil {
		return 0, errors.NewStorageUnavailableError("[%s] count failed", s.engine, err)
	}

	return count, nil
}

func (s *Store) Find(ctx context.Context, filter *fractionalize.Filter, opts fractionalize.FindOptions) (_ []*model.UTXORef, err error) {
	defer fractionalize.Observe(backend, "Find", time.Now(), &err)

	where, args := buildWhere(filter)

	dir := "DESC"
	if opts.Sort == fractionalize.SortAscending {
		dir = "ASC"
	}

	q := fmt.Sprintf(`
		SELECT txid, output_index
		FROM %s%s
		ORDER BY created_at %s, txid %s, output_index %s
		LIMIT $%d OFFSET $%d
	`, tableName, where, dir, dir, dir, len(args)+1, len(args)+2)

	args = append(args, opts.Limit, opts.Skip)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("[%s] find failed", s.engine, err)
	}

	defer rows.Close()

	refs := make([]*model.UTXORef, 0, opts.Limit)

	for rows.Next() {
		ref := &model.UTXORef{}
		if err = rows.Scan(&ref.TxID, &ref.OutputIndex); err != nil {
			return nil, errors.NewStorageUnavailableError("[%s] find scan failed", s.engine, err)
		}

		refs = append(refs, ref)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.NewStorageUnavailableError("[%s] find iteration failed", s.engine, err)
	}

	return refs, nil
}

// ceilMilli rounds t up to whole milliseconds, so an inclusive lower bound
// never admits a record older than t.
func ceilMilli(t time.Time) int64 {
	ms := t.UnixMilli()
	if t.Nanosecond()%int(time.Millisecond) != 0 {
		ms++
	}

	return ms
}

// buildWhere translates the filter into a WHERE clause with $n placeholders,
// which both lib/pq and modernc sqlite accept.
func buildWhere(filter *fractionalize.Filter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}

	var (
		conds []string
		args  []interface{}
	)

	if filter.TxID != "" {
		args = append(args, filter.TxID)
		conds = append(conds, fmt.Sprintf("txid = $%d", len(args)))
	}

	if filter.Since != nil {
		args = append(args, ceilMilli(*filter.Since))
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}

	if filter.Until != nil {
		args = append(args, filter.Until.UnixMilli())
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) Metadata(ctx context.Context) (_ *fractionalize.Metadata, err error) {
	defer fractionalize.Observe(backend, "Metadata", time.Now(), &err)

	var tablesQ, indexesQ, sizeQ string

	switch s.engine {
	case util.Postgres:
		tablesQ = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema()`
		indexesQ = `SELECT COUNT(*) FROM pg_indexes WHERE schemaname = current_schema() AND tablename = '` + tableName + `'`
		sizeQ = `SELECT pg_database_size(current_database())`
	default:
		tablesQ = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`
		indexesQ = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND tbl_name = '` + tableName + `'`
		sizeQ = `SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()`
	}

	md := &fractionalize.Metadata{}

	if err = s.db.QueryRowContext(ctx, tablesQ).Scan(&md.Collections); err != nil {
		return nil, errors.NewStorageUnavailableError("[%s] could not count tables", s.engine, err)
	}

	if err = s.db.QueryRowContext(ctx, indexesQ).Scan(&md.Indexes); err != nil {
		return nil, errors.NewStorageUnavailableError("[%s] could not count indexes", s.engine, err)
	}

	var size sql.NullInt64
	if sizeErr := s.db.QueryRowContext(ctx, sizeQ).Scan(&size); sizeErr != nil {
		s.logger.Warnf("[RecordStore][%s] could not retrieve storage size: %v", s.engine, sizeErr)
	} else if size.Valid {
		md.StorageSize = &size.Int64
	}

	return md, nil
}

func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}
