package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/announce"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/batch"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/hashing"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
)

func TestParseMosaics(t *testing.T) {
	mosaics, err := parseMosaics([]string{"2.5", "acme.token:10"})
	require.NoError(t, err)
	require.Len(t, mosaics, 2)
	assert.Equal(t, ledger.Mosaic{ID: ledger.NetworkCurrencyID, Amount: 2_500_000}, mosaics[0])
	assert.Equal(t, ledger.Mosaic{ID: "acme.token", Amount: 10_000_000}, mosaics[1])

	_, err = parseMosaics([]string{"acme.token:-1"})
	require.Error(t, err)
}

func TestHashCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	var out bytes.Buffer
	cmdMain.SetOut(&out)
	cmdMain.SetArgs([]string{"hash", "--algorithm", "sha3-256", path})
	t.Cleanup(func() { cmdMain.SetArgs(nil) })

	require.NoError(t, cmdMain.Execute())
	assert.Contains(t, out.String(), hashing.SHA3_256.NonSignedHashing([]byte("hello")))
	assert.Contains(t, out.String(), hashing.ContentID([]byte("hello")))
}

func TestPrintResultsCountsFailures(t *testing.T) {
	var out bytes.Buffer
	failed := printResults(&out, []announce.Result{
		{UnitIndex: 0, Kind: batch.UnitBatch, Hash: "AA", State: announce.StateSubmitted},
		{UnitIndex: 1, Kind: batch.UnitTransfer, State: announce.StateFailed, Err: errors.New("rejected")},
	})
	assert.Equal(t, 1, failed)
	assert.Contains(t, out.String(), "unit 1 transfer")
	assert.Contains(t, out.String(), "rejected")
}
