package util

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/bsv-blockchain/fractionalize/errors"
	"github.com/bsv-blockchain/fractionalize/settings"
	"github.com/bsv-blockchain/fractionalize/ulogger"
	"github.com/bsv-blockchain/fractionalize/util/usql"
	"github.com/labstack/gommon/random"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type SQLEngine string

const (
	Postgres     SQLEngine = "postgres"
	Sqlite       SQLEngine = "sqlite"
	SqliteMemory SQLEngine = "sqlitememory"
)

func InitSQLDB(logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (*usql.DB, error) {
	switch SQLEngine(storeURL.Scheme) {
	case Postgres:
		return InitPostgresDB(logger, storeURL, tSettings)
	case Sqlite, SqliteMemory:
		return InitSQLiteDB(logger, storeURL, tSettings)
	}

	return nil, errors.NewConfigurationError("db: unknown scheme: %s", storeURL.Scheme)
}

func InitPostgresDB(logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (*usql.DB, error) {
	dbHost := storeURL.Hostname()
	dbPort, _ := strconv.Atoi(storeURL.Port())

	if dbPort == 0 {
		dbPort = 5432
	}

	dbName := dbNameFromPath(storeURL)
	dbUser := ""
	dbPassword := ""

	if storeURL.User != nil {
		dbUser = storeURL.User.Username()
		dbPassword, _ = storeURL.User.Password()
	}

	sslMode := "disable"
	if val := storeURL.Query().Get("sslmode"); val != "" {
		sslMode = val
	}

	dbInfo := fmt.Sprintf("user=%s password=%s dbname=%s sslmode=%s host=%s port=%d", dbUser, dbPassword, dbName, sslMode, dbHost, dbPort)

	db, err := usql.Open(string(Postgres), dbInfo)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("failed to open postgres DB", err)
	}

	logger.Infof("Using postgres DB: %s@%s:%d/%s", dbUser, dbHost, dbPort, dbName)

	db.SetMaxIdleConns(tSettings.Postgres.MaxIdleConns)
	db.SetMaxOpenConns(tSettings.Postgres.MaxOpenConns)

	return db, nil
}

func InitSQLiteDB(logger ulogger.Logger, storeURL *url.URL, tSettings *settings.Settings) (*usql.DB, error) {
	var (
		filename string
		err      error
	)

	if SQLEngine(storeURL.Scheme) == SqliteMemory {
		filename = fmt.Sprintf("file:%s?mode=memory&cache=shared", random.String(16))
	} else {
		folder := tSettings.DataFolder
		if err = os.MkdirAll(folder, 0755); err != nil {
			return nil, errors.NewStorageUnavailableError("failed to create data folder %s", folder, err)
		}

		filename, err = filepath.Abs(path.Join(folder, fmt.Sprintf("%s.db", dbNameFromPath(storeURL))))
		if err != nil {
			return nil, errors.NewStorageUnavailableError("failed to get absolute path for sqlite DB", err)
		}

		// the service only reads, so WAL lets an external ingester write alongside it
		filename = fmt.Sprintf("%s?cache=shared&_pragma=busy_timeout=5000&_pragma=journal_mode=WAL", filename)
	}

	logger.Infof("Using sqlite DB: %s", filename)

	db, err := usql.Open(string(Sqlite), filename)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("failed to open sqlite DB", err)
	}

	if _, err = db.Exec(`PRAGMA locking_mode = NORMAL;`); err != nil {
		_ = db.Close()
		return nil, errors.NewStorageUnavailableError("could not set sqlite locking mode", err)
	}

	return db, nil
}

func dbNameFromPath(storeURL *url.URL) string {
	if len(storeURL.Path) > 1 {
		return storeURL.Path[1:]
	}

	return "fractionalize"
}
