// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHolder_Reload(t *testing.T) {
	path := writeConfig(t, "csrf:\n  enforceToken: false\n")
	loader := NewLoader(path, "dev")
	initial, err := loader.Load()
	require.NoError(t, err)

	holder := NewConfigHolder(initial, loader)
	updates := make(chan AppConfig, 1)
	holder.RegisterListener(updates)

	require.NoError(t, os.WriteFile(path, []byte("csrf:\n  enforceToken: true\n"), 0o600))
	require.NoError(t, holder.Reload(context.Background()))

	assert.True(t, holder.Get().CSRF.EnforceToken)
	select {
	case got := <-updates:
		assert.True(t, got.CSRF.EnforceToken)
	default:
		t.Fatal("expected listener notification")
	}
}

func TestConfigHolder_ReloadKeepsOldOnError(t *testing.T) {
	path := writeConfig(t, "csrf:\n  enforceToken: true\n")
	loader := NewLoader(path, "dev")
	initial, err := loader.Load()
	require.NoError(t, err)
	holder := NewConfigHolder(initial, loader)

	require.NoError(t, os.WriteFile(path, []byte("rateLimit:\n  backend: etcd\n"), 0o600))
	require.Error(t, holder.Reload(context.Background()))
	assert.True(t, holder.Get().CSRF.EnforceToken)
	assert.Equal(t, BackendMemory, holder.Get().RateLimit.Backend)
}

func TestConfigHolder_StartWatcherWithoutFile(t *testing.T) {
	holder := NewConfigHolder(Defaults(), NewLoader("", "dev"))
	assert.ErrorIs(t, holder.StartWatcher(context.Background()), ErrNoConfigFile)
}

func TestConfigHolder_WatcherReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "csrf:\n  siteURL: https://old.example.com\n")
	loader := NewLoader(path, "dev")
	initial, err := loader.Load()
	require.NoError(t, err)

	holder := NewConfigHolder(initial, loader)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, holder.StartWatcher(ctx))
	t.Cleanup(holder.Stop)

	require.NoError(t, os.WriteFile(path, []byte("csrf:\n  siteURL: https://new.example.com\n"), 0o600))

	assert.Eventually(t, func() bool {
		return holder.Get().CSRF.SiteURL == "https://new.example.com"
	}, 5*time.Second, 50*time.Millisecond)
}
