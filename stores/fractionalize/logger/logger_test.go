package logger

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bsv-blockchain/fractionalize/model"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize"
	"github.com/bsv-blockchain/fractionalize/stores/fractionalize/memory"
	"github.com/bsv-blockchain/fractionalize/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLogger struct {
	ulogger.TestLogger
	lines []string
}

func (c *captureLogger) Infof(format string, args ...interface{}) {
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func TestStore_LogsAndDelegates(t *testing.T) {
	now := time.Now()
	inner := memory.New(ulogger.TestLogger{},
		&model.Record{TxID: strings.Repeat("a", 64), CreatedAt: now},
		&model.Record{TxID: strings.Repeat("b", 64), CreatedAt: now.Add(-time.Hour)},
	)

	log := &captureLogger{}
	s := New(log, inner)
	ctx := context.Background()

	count, err := s.Count(ctx, &fractionalize.Filter{TxID: strings.Repeat("a", 64)})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	refs, err := s.Find(ctx, nil, fractionalize.FindOptions{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	_, err = s.Metadata(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Ping(ctx))

	require.Len(t, log.lines, 4)
	assert.Contains(t, log.lines[0], "[RecordStore][logger][Count] filter {txid="+strings.Repeat("a", 64)+"} count 1")
	assert.Contains(t, log.lines[1], "sort descending skip 0 limit 10 returned 2")
	assert.Contains(t, log.lines[1], "called from")
	assert.Contains(t, log.lines[2], "collections 1 indexes 1 storageSize set false")
}

func TestDescribe(t *testing.T) {
	since := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Equal(t, "{}", describe(nil))
	assert.Equal(t, "{since=2025-01-02T03:04:05Z}", describe(&fractionalize.Filter{Since: &since}))
}
