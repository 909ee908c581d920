package fractionalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/bsv-blockchain/fractionalize/settings"
	"github.com/bsv-blockchain/fractionalize/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func testSettings(t *testing.T) *settings.Settings {
	t.Helper()

	storeURL, err := url.Parse("memory:///")
	require.NoError(t, err)

	return &settings.Settings{
		Version: "test",
		Fractionalize: settings.FractionalizeSettings{
			HTTPListenAddress: "127.0.0.1:0",
			APIPrefix:         "/api",
			StoreURL:          storeURL,
			QueryTimeout:      time.Second,
		},
	}
}

func TestStatsCommand(t *testing.T) {
	var out bytes.Buffer

	err := NewApp(ulogger.TestLogger{}, testSettings(t), &out).Run([]string{"fractionalize", "stats"})
	require.NoError(t, err)

	var stats struct {
		Total    *uint64           `json:"total"`
		Windows  map[string]uint64 `json:"windows"`
		Metadata map[string]any    `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &stats), out.String())

	require.NotNil(t, stats.Total)
	assert.Equal(t, uint64(0), *stats.Total)
	assert.Len(t, stats.Windows, 4)
	assert.Contains(t, stats.Windows, "last1h")
	assert.NotContains(t, stats.Metadata, "storageSize")
}

func TestHealthCommand(t *testing.T) {
	t.Run("connected", func(t *testing.T) {
		var out bytes.Buffer

		err := NewApp(ulogger.TestLogger{}, testSettings(t), &out).Run([]string{"fractionalize", "health"})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "database connected")
	})

	t.Run("store flag overrides settings", func(t *testing.T) {
		var out bytes.Buffer

		err := NewApp(ulogger.TestLogger{}, testSettings(t), &out).Run([]string{"fractionalize", "--store", "nosuchscheme://x", "health"})
		require.Error(t, err)

		var exitErr cli.ExitCoder
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 1, exitErr.ExitCode())
		assert.Contains(t, err.Error(), "unknown record store scheme")
	})
}
