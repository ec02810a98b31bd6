package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fluxfuzzer/fluxfuzzer/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestLoadInstrumentMetaEdgePolicyRequiresEdgeCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instr.meta")
	require.NoError(t, os.WriteFile(path, []byte(`{"basic-block-count":100,"output-method":"http","instrument-policy":"edge"}`), 0o644))

	_, err := LoadInstrumentMeta(path)
	require.Error(t, err)
}

func TestLoadInstrumentMetaNodePolicyDoesNotNeedEdgeCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instr.meta")
	require.NoError(t, os.WriteFile(path, []byte(`{"basic-block-count":100,"output-method":"file","instrument-policy":"node"}`), 0o644))

	meta, err := LoadInstrumentMeta(path)
	require.NoError(t, err)
	require.Equal(t, 100, meta.BasicBlocks)
	require.Equal(t, types.PolicyNode, meta.Policy)
	require.Equal(t, types.OutputFile, meta.OutputMethod)
}

func TestLoadInstrumentMetaRejectsMissingRequiredKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instr.meta")
	require.NoError(t, os.WriteFile(path, []byte(`{"basic-block-count":100}`), 0o644))

	_, err := LoadInstrumentMeta(path)
	require.Error(t, err)
}

func TestEngineOverridesApplyLeavesUnsetFieldsAlone(t *testing.T) {
	args := Default()
	worker := 20
	overrides := EngineOverrides{Worker: &worker}

	overrides.Apply(&args)

	require.Equal(t, 20, args.Worker)
	require.Equal(t, "./instr.meta", args.MetaFile)
}

func TestParseBlockSpecsRejectsMalformedSpec(t *testing.T) {
	_, err := ParseBlockSpecs([]string{"onlyonepart"})
	require.Error(t, err)
}

func TestParseBlockSpecsCompilesValidSpecs(t *testing.T) {
	rules, err := ParseBlockSpecs([]string{"logout|csrf|.*"})
	require.NoError(t, err)
	require.Len(t, rules, 1)
}
