package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "frutti-server dev\n", out.String())
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"version", "migrate", "create-admin", "sweep-photos"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestCreateAdminRequiresFlags(t *testing.T) {
	assert.NotNil(t, createAdminCmd.Flags().Lookup("username"))
	assert.NotNil(t, createAdminCmd.Flags().Lookup("password"))
	assert.NotNil(t, createAdminCmd.Flags().Lookup("categoria"))
}

func TestSweepMinAgeDefault(t *testing.T) {
	flag := sweepPhotosCmd.Flags().Lookup("min-age")
	if assert.NotNil(t, flag) {
		assert.Equal(t, "1h0m0s", flag.DefValue)
	}
}
