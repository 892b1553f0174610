package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalYAML = `
chain:
  rpc_endpoint: http://localhost:8545
  contract_address: "0xRegistry"
  oracle_account: "0xOracle"
ai:
  api_key: sk-test
`

func TestLoadMinimalWithDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, ":8090", cfg.Server.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "memory", cfg.Evidence.Backend)
	assert.Equal(t, "explicit", cfg.Submitter.Strategy)
	assert.Equal(t, 2*time.Second, cfg.Scanner.Pace)
	assert.Equal(t, 2, cfg.Workers.Count)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
}

func TestLoadMissingRequiredFails(t *testing.T) {
	_, err := Load(writeConfig(t, `
chain:
  rpc_endpoint: http://localhost:8545
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chain.contract_address")
	assert.Contains(t, err.Error(), "ai.api_key")
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("ORACLE_ADDR", ":9999")
	t.Setenv("SUBMITTER_STRATEGY", "auto")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("SCANNER_PACE", "50ms")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "auto", cfg.Submitter.Strategy)
	assert.Equal(t, 8, cfg.Workers.Count)
	assert.Equal(t, 50*time.Millisecond, cfg.Scanner.Pace)
}

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv("CHAIN_RPC_ENDPOINT", "http://localhost:8545")
	t.Setenv("CHAIN_CONTRACT_ADDRESS", "0xRegistry")
	t.Setenv("CHAIN_ORACLE_ACCOUNT", "0xOracle")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AUDIT_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Audit.KafkaBrokers)
}

func TestValidateBackendCombinations(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+`
evidence:
  backend: postgres
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evidence.postgres_dsn")

	_, err = Load(writeConfig(t, minimalYAML+`
evidence:
  backend: carrier-pigeon
`))
	require.Error(t, err)

	_, err = Load(writeConfig(t, minimalYAML+`
submitter:
  strategy: maybe
`))
	require.Error(t, err)
}
