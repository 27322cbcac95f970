package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(&stdout, &stderr, []string{"nvmemctl"})

	require.Equal(t, 1, code)
	require.Contains(t, stdout.String(), "nvmemctl - power-fail-safe EEPROM emulator CLI")
	require.Contains(t, stdout.String(), "get")
	require.Contains(t, stdout.String(), "put")
}

func TestRun_UnknownCommandFails(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(&stdout, &stderr, []string{"nvmemctl", "bogus"})

	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "unknown command")
}

func TestRun_PutThenGetRoundTripsThroughImageFile(t *testing.T) {
	img := filepath.Join(t.TempDir(), "nvmem.img")

	var stdout, stderr bytes.Buffer
	code := run(&stdout, &stderr, []string{"nvmemctl", "-i", img, "-s", "64", "put", "0", "aabb"})
	require.Equal(t, 0, code, stderr.String())
	require.Contains(t, stdout.String(), "OK: wrote 2 byte(s)")

	stdout.Reset()
	code = run(&stdout, &stderr, []string{"nvmemctl", "-i", img, "-s", "64", "get", "0", "-n", "2"})
	require.Equal(t, 0, code, stderr.String())
	require.Equal(t, "aabb", strings.TrimSpace(stdout.String()))
}

func TestRun_StatReportsCapacityAndActiveSector(t *testing.T) {
	img := filepath.Join(t.TempDir(), "nvmem.img")

	var stdout, stderr bytes.Buffer
	code := run(&stdout, &stderr, []string{"nvmemctl", "-i", img, "-s", "64", "stat"})
	require.Equal(t, 0, code, stderr.String())
	require.Contains(t, stdout.String(), "active sector: sector1")
	require.Contains(t, stdout.String(), "capacity:")
}
