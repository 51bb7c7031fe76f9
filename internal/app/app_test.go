package app_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/caselaw/casestrainer/internal/app"
	"github.com/caselaw/casestrainer/internal/common"
)

func TestNewWiresCollaboratorsAndClosesCleanly(t *testing.T) {
	dir := t.TempDir()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Badger.Path = filepath.Join(dir, "badger")
	cfg.Queue.DBPath = filepath.Join(dir, "queue.db")
	cfg.Verify.Enabled = false

	a, err := app.New(cfg, arbor.NewLogger())
	require.NoError(t, err)

	assert.NotNil(t, a.Store)
	assert.NotNil(t, a.Queue)
	assert.NotNil(t, a.Pipeline)
	assert.Nil(t, a.Pipeline.Structured, "structured client should stay unset when verification is disabled")

	assert.NoError(t, a.Close())
}

func TestNewWithVerificationEnabledBuildsStructuredClient(t *testing.T) {
	dir := t.TempDir()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Badger.Path = filepath.Join(dir, "badger")
	cfg.Queue.DBPath = filepath.Join(dir, "queue.db")
	cfg.Verify.Enabled = true

	a, err := app.New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Pipeline.Structured)
	assert.NotEmpty(t, a.Pipeline.Fallbacks)
}
