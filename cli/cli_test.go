package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"powchain/blocks"
	"powchain/digest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDigestCommand(t *testing.T) {
	out, err := execute(t, "digest", "Hello, world!")
	require.NoError(t, err)
	assert.Contains(t, out, "315f5bdb76d078c43b8ac0064e4a0164612b1fce77c869345bfc94c75894edd3")

	out, err = execute(t, "digest", "--algorithm", "sha3-256", "abc")
	require.NoError(t, err)
	assert.Contains(t, out, digest.SHA3_256.Sum([]byte("abc")))

	_, err = execute(t, "digest", "--algorithm", "md5", "abc")
	assert.ErrorIs(t, err, digest.ErrUnknownAlgorithm)
}

func TestMineCommandSummary(t *testing.T) {
	out, err := execute(t, "mine", "--difficulty", "1", "--workers", "2", "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "mined a block."))
	assert.Contains(t, out, "Blockchain is valid.")
}

type report struct {
	Valid    bool           `json:"valid"`
	Chain    []blocks.Block `json:"chain"`
	Receipts []struct {
		Worker int    `json:"worker"`
		Index  uint64 `json:"index"`
	} `json:"receipts"`
}

func TestMineCommandJSONWithWorkloadAndConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "powchain.ini")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[miner]\ndifficulty = 1\nhash_algorithm = blake2b-256\n[distributor]\nworkers = 3\n"), 0600))
	workloadPath := filepath.Join(dir, "workload.yml")
	require.NoError(t, os.WriteFile(workloadPath, []byte("genesis_timestamp: 42\npayloads: [x, y, z, w]\n"), 0600))

	out, err := execute(t, "mine", "--config", cfgPath, "--workload", workloadPath, "--json")
	require.NoError(t, err)

	var r report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.True(t, r.Valid)
	require.Len(t, r.Chain, 5)
	assert.Equal(t, int64(42), r.Chain[0].Timestamp)
	assert.Equal(t, digest.BLAKE2B256, r.Chain[1].Algorithm)
	assert.Len(t, r.Receipts, 4)
}

func TestMineCommandRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "mine", "--workers", "0", "a")
	assert.Error(t, err)
	_, err = execute(t, "mine", "--workload", "workload.yml", "a")
	assert.ErrorIs(t, err, errPayloadSources)
	_, err = execute(t, "mine", "--policy", "longest", "a")
	assert.Error(t, err)
}
