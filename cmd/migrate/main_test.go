package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chybatronik/goUserFilter/internal/database"
)

func TestPrintStatus(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, printStatus(&buf, []database.MigrationStatus{
		{Version: "001_create_companies_table", Applied: true, ExecutedAt: &at},
		{Version: "002_create_users_table"},
	}))

	out := buf.String()
	assert.Contains(t, out, "VERSION")
	assert.Regexp(t, `001_create_companies_table\s+applied\s+2025-03-01T12:00:00Z`, out)
	assert.Regexp(t, `002_create_users_table\s+pending\s+-`, out)
	assert.Contains(t, out, "1 pending migration(s)")
}

func TestPrintStatus_UpToDate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printStatus(&buf, nil))
	assert.Contains(t, buf.String(), "All migrations are up to date")
}

func TestDownRequiresTarget(t *testing.T) {
	rootCmd.SetArgs([]string{"down"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	assert.ErrorContains(t, err, `required flag(s) "target" not set`)
}
