// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// ExecutionMode is the master switch for the execution pipeline.
type ExecutionMode string

const (
	ExecutionModePaper ExecutionMode = "PAPER"
	ExecutionModeLive  ExecutionMode = "LIVE"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Chains    []ChainConfig   `mapstructure:"chains"`
	Execution ExecutionConfig `mapstructure:"execution"`
	Relay     RelayConfig     `mapstructure:"relay"`
	Advisory  AdvisoryConfig  `mapstructure:"advisory"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ChainConfig describes a single chain's RPC and execution parameters.
type ChainConfig struct {
	ChainID         uint64        `mapstructure:"chain_id"`
	Name            string        `mapstructure:"name"`
	RPCURL          string        `mapstructure:"rpc_url"`
	RPCBackupURL    string        `mapstructure:"rpc_backup_url"`
	WSURL           string        `mapstructure:"ws_url"`
	ExecutorAddress string        `mapstructure:"executor_address"`
	ExecutionReady  bool          `mapstructure:"execution_ready"`
	UseEIP1559      bool          `mapstructure:"use_eip1559"`
	BlockTimeHint   time.Duration `mapstructure:"block_time_hint"`
	NativeSymbol    string        `mapstructure:"native_symbol"`
	UniswapV3Quoter string        `mapstructure:"univ3_quoter_address"`
}

// ExecutorAddressHex returns the executor address as common.Address.
func (c *ChainConfig) ExecutorAddressHex() common.Address {
	return common.HexToAddress(c.ExecutorAddress)
}

// UniswapV3QuoterHex returns the per-chain QuoterV2 address.
func (c *ChainConfig) UniswapV3QuoterHex() common.Address {
	return common.HexToAddress(c.UniswapV3Quoter)
}

// ExecutionConfig holds execution-pipeline-wide safety parameters.
type ExecutionConfig struct {
	Mode                ExecutionMode `mapstructure:"mode"`
	Host                string        `mapstructure:"host"`
	Port                int           `mapstructure:"port"`
	PrivateKey          string        `mapstructure:"private_key"`
	MinProfitUSD        float64       `mapstructure:"min_profit_usd"`
	MaxSlippageBps      int           `mapstructure:"max_slippage_bps"`
	MaxBaseFeeGwei      float64       `mapstructure:"max_base_fee_gwei"`
	MaxConcurrentTxs    int           `mapstructure:"max_concurrent_txs"`
	GasLimitMultiplier  float64       `mapstructure:"gas_limit_multiplier"`
	MaxCalldataBytes    int           `mapstructure:"max_calldata_bytes"`
	BreakerFailureLimit int           `mapstructure:"breaker_failure_limit"`
	BreakerCooldown     time.Duration `mapstructure:"breaker_cooldown"`
}

// MinProfitUSDDecimal returns the profit floor as decimal.Decimal.
func (c *ExecutionConfig) MinProfitUSDDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitUSD)
}

// GasLimitMultiplierDecimal returns the gas headroom multiplier as decimal.Decimal.
func (c *ExecutionConfig) GasLimitMultiplierDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.GasLimitMultiplier)
}

// IsLive reports whether Stages 5-7 of the execution pipeline are enabled.
func (c *ExecutionConfig) IsLive() bool {
	return c.Mode == ExecutionModeLive
}

// RelayConfig holds MEV relay submission credentials.
type RelayConfig struct {
	Endpoint            string        `mapstructure:"endpoint"`
	BloxrouteAuth       string        `mapstructure:"bloxroute_auth"`
	BloxHashSecret      string        `mapstructure:"blox_hash_secret"`
	TLSCertPath         string        `mapstructure:"tls_cert_path"`
	TLSKeyPath          string        `mapstructure:"tls_key_path"`
	FallbackEnabled     bool          `mapstructure:"fallback_enabled"`
	BreakerFailureLimit int           `mapstructure:"breaker_failure_limit"`
	BreakerCooldown     time.Duration `mapstructure:"breaker_cooldown"`
}

// AdvisoryConfig points at optional ML model artifacts. No model is
// loaded from these paths: the advisory module always uses the trend-
// filter gas advisor and the no-op param advisor, and an empty or
// absent path is never an error.
type AdvisoryConfig struct {
	CatBoostModelPath      string `mapstructure:"catboost_model_path"`
	HFModelPath            string `mapstructure:"hf_model_path"`
	MLModelPath            string `mapstructure:"ml_model_path"`
	SelfLearningDataPath   string `mapstructure:"self_learning_data_path"`
	ModelCacheDir          string `mapstructure:"model_cache_dir"`
	EnableRealtimeTraining bool   `mapstructure:"enable_realtime_training"`
}

// ScannerConfig holds the discovery process's scan-loop tunables and
// its address for the executor process's control plane (spec §4.7,
// §4.10). Kept to the fields cmd/brain needs to wire the orchestrator;
// the loop's own defaults live in scanner/app.DefaultConfig.
type ScannerConfig struct {
	ExecutorURL        string        `mapstructure:"executor_url"`
	ExecutorWSURL       string        `mapstructure:"executor_ws_url"`
	ScanInterval        time.Duration `mapstructure:"scan_interval"`
	WorkerPoolWidth     int           `mapstructure:"worker_pool_width"`
	SignalQueueSize     int           `mapstructure:"signal_queue_size"`
	BridgeFeeBps        int           `mapstructure:"bridge_fee_bps"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// bindPerChainEnvVars binds per-chain env vars on top of
// chains[].rpc_url, chains[].rpc_backup_url and chains[].executor_address
// by name (e.g. RPC_ETHEREUM, RPC_ETHEREUM_BACKUP, EXECUTOR_ADDRESS_POLYGON).
// Viper can't express a map pattern like RPC_<CHAIN> directly, so Load
// walks the configured chain list and binds these three per chain after
// defaults are set.
func bindPerChainEnvVars(v *viper.Viper, names []string) {
	for i, name := range names {
		upper := strings.ToUpper(name)
		v.BindEnv(fmt.Sprintf("chains.%d.rpc_url", i), "RPC_"+upper)
		v.BindEnv(fmt.Sprintf("chains.%d.rpc_backup_url", i), "RPC_"+upper+"_BACKUP")
		v.BindEnv(fmt.Sprintf("chains.%d.executor_address", i), "EXECUTOR_ADDRESS_"+upper, "EXECUTOR_ADDRESS")
	}
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Chain names must be known before per-chain env vars can be bound,
	// so read them once up front from whatever file/defaults are loaded.
	chainNames := v.GetStringSlice("chain_names")
	bindPerChainEnvVars(v, chainNames)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Execution
	v.BindEnv("execution.mode", "EXECUTION_MODE")
	v.BindEnv("execution.host", "EXECUTION_HOST")
	v.BindEnv("execution.port", "EXECUTION_PORT")
	v.BindEnv("execution.private_key", "PRIVATE_KEY")
	v.BindEnv("execution.min_profit_usd", "MIN_PROFIT_USD")
	v.BindEnv("execution.max_slippage_bps", "MAX_SLIPPAGE_BPS")
	v.BindEnv("execution.max_base_fee_gwei", "MAX_BASE_FEE_GWEI")
	v.BindEnv("execution.max_concurrent_txs", "MAX_CONCURRENT_TXS")
	v.BindEnv("execution.gas_limit_multiplier", "GAS_LIMIT_MULTIPLIER")

	// Relay
	v.BindEnv("relay.endpoint", "RELAY_ENDPOINT")
	v.BindEnv("relay.bloxroute_auth", "BLOXROUTE_AUTH")
	v.BindEnv("relay.blox_hash_secret", "BLOX_HASH_SECRET")
	v.BindEnv("relay.tls_cert_path", "RELAY_TLS_CERT")
	v.BindEnv("relay.tls_key_path", "RELAY_TLS_KEY")
	v.BindEnv("relay.fallback_enabled", "RELAY_FALLBACK_ENABLED")
	v.BindEnv("relay.breaker_failure_limit", "RELAY_BREAKER_FAILURE_LIMIT")
	v.BindEnv("relay.breaker_cooldown", "RELAY_BREAKER_COOLDOWN")

	// Advisory
	v.BindEnv("advisory.catboost_model_path", "CATBOOST_MODEL_PATH")
	v.BindEnv("advisory.hf_model_path", "HF_MODEL_PATH")
	v.BindEnv("advisory.ml_model_path", "ML_MODEL_PATH")
	v.BindEnv("advisory.self_learning_data_path", "SELF_LEARNING_DATA_PATH")
	v.BindEnv("advisory.model_cache_dir", "MODEL_CACHE_DIR")
	v.BindEnv("advisory.enable_realtime_training", "ENABLE_REALTIME_TRAINING")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")

	// Scanner
	v.BindEnv("scanner.executor_url", "EXECUTOR_URL")
	v.BindEnv("scanner.executor_ws_url", "EXECUTOR_WS_URL")
	v.BindEnv("scanner.scan_interval", "SCAN_INTERVAL")
	v.BindEnv("scanner.worker_pool_width", "SCAN_WORKER_POOL_WIDTH")
	v.BindEnv("scanner.signal_queue_size", "SCAN_SIGNAL_QUEUE_SIZE")
	v.BindEnv("scanner.bridge_fee_bps", "SCAN_BRIDGE_FEE_BPS")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "flashrelay")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("chain_names", []string{"ethereum", "polygon", "arbitrum"})
	v.SetDefault("chains", []map[string]any{
		{"chain_id": 1, "name": "ethereum", "native_symbol": "ETH", "use_eip1559": true, "block_time_hint": "12s"},
		{"chain_id": 137, "name": "polygon", "native_symbol": "MATIC", "use_eip1559": true, "block_time_hint": "2s"},
		{"chain_id": 42161, "name": "arbitrum", "native_symbol": "ETH", "use_eip1559": true, "block_time_hint": "250ms"},
	})

	v.SetDefault("execution.mode", "PAPER")
	v.SetDefault("execution.host", "0.0.0.0")
	v.SetDefault("execution.port", 8090)
	v.SetDefault("execution.min_profit_usd", 5.0)
	v.SetDefault("execution.max_slippage_bps", 50)
	v.SetDefault("execution.max_base_fee_gwei", 500.0)
	v.SetDefault("execution.max_concurrent_txs", 3)
	v.SetDefault("execution.gas_limit_multiplier", 1.2)
	v.SetDefault("execution.max_calldata_bytes", 32000)
	v.SetDefault("execution.breaker_failure_limit", 5)
	v.SetDefault("execution.breaker_cooldown", "2m")

	v.SetDefault("relay.fallback_enabled", false)
	v.SetDefault("relay.breaker_failure_limit", 5)
	v.SetDefault("relay.breaker_cooldown", "2m")

	v.SetDefault("advisory.enable_realtime_training", false)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "flashrelay")
	v.SetDefault("telemetry.prometheus_port", 9090)

	v.SetDefault("scanner.executor_url", "http://localhost:8090")
	v.SetDefault("scanner.executor_ws_url", "")
	v.SetDefault("scanner.scan_interval", "2s")
	v.SetDefault("scanner.worker_pool_width", 20)
	v.SetDefault("scanner.signal_queue_size", 256)
	v.SetDefault("scanner.bridge_fee_bps", 10)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Chains) == 0 {
		return fmt.Errorf("at least one chain must be configured")
	}
	for _, ch := range c.Chains {
		if ch.RPCURL == "" {
			return fmt.Errorf("chain %q: rpc_url is required", ch.Name)
		}
		if ch.ExecutionReady && !common.IsHexAddress(ch.ExecutorAddress) {
			return fmt.Errorf("chain %q: execution_ready requires a valid executor_address", ch.Name)
		}
	}
	if c.Execution.Mode != ExecutionModePaper && c.Execution.Mode != ExecutionModeLive {
		return fmt.Errorf("execution.mode must be PAPER or LIVE, got %q", c.Execution.Mode)
	}
	if c.Execution.IsLive() && c.Execution.PrivateKey == "" {
		return fmt.Errorf("execution.private_key is required in LIVE mode")
	}
	return nil
}
