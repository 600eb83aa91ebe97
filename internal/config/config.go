// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/spl-transfer/internal/blockchain/programs/computebudget"
	"github.com/rovshanmuradov/spl-transfer/internal/types"
	"github.com/rovshanmuradov/spl-transfer/internal/wallet"
)

// Config holds the settings of one transfer run, loaded from config.json.
type Config struct {
	RPCHTTP           string `mapstructure:"rpc_http"`
	SenderPK          string `mapstructure:"sender_pk"`
	TokenAddr         string `mapstructure:"token_addr"`
	ReceiverAddr      string `mapstructure:"receiver_addr"`
	TransferAmountRaw string `mapstructure:"transfer_amount"`
	ComputeUnitsRaw   int64  `mapstructure:"compute_units"`
	TxFeeRaw          string `mapstructure:"tx_fee"`

	Memo         string `mapstructure:"memo"`
	Commitment   string `mapstructure:"commitment"`
	ExplorerURL  string `mapstructure:"explorer_url"`
	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`
	ReceiptFile  string `mapstructure:"receipt_file"`

	// Parsed from the raw fields above.
	Sender         *wallet.Wallet   `mapstructure:"-"`
	Mint           solana.PublicKey `mapstructure:"-"`
	Receiver       solana.PublicKey `mapstructure:"-"`
	TransferAmount decimal.Decimal  `mapstructure:"-"`
	ComputeUnits   uint32           `mapstructure:"-"`
	TxFee          decimal.Decimal  `mapstructure:"-"`
}

const (
	DefaultMemo        = "spl-transfer"
	DefaultCommitment  = string(rpc.CommitmentConfirmed)
	DefaultExplorerURL = "https://solscan.io/tx/"

	EnvPrefix = "SPL_TRANSFER"
)

// RequiredKeys lists the keys that must be present in the file or the environment.
var RequiredKeys = []string{
	"rpc_http",
	"sender_pk",
	"token_addr",
	"receiver_addr",
	"transfer_amount",
	"compute_units",
	"tx_fee",
}

var optionalKeys = []string{"memo", "commitment", "explorer_url", "debug_logging", "log_file", "receipt_file"}

// LoadConfig reads configuration from path, applies SPL_TRANSFER_* overrides and validates it.
// Every failure is a types.KindConfig error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetDefault("memo", DefaultMemo)
	v.SetDefault("commitment", DefaultCommitment)
	v.SetDefault("explorer_url", DefaultExplorerURL)
	v.SetDefault("debug_logging", false)

	if err := bindEnvironment(v); err != nil {
		return nil, types.ConfigError("bind env", err)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, types.ConfigError("read config", err)
	}

	for _, key := range RequiredKeys {
		if !v.IsSet(key) {
			return nil, types.Configf("read config", "missing required key %q", key)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.ConfigError("unmarshal", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindEnvironment binds every known key to SPL_TRANSFER_<KEY>, so a key may come from the environment only.
func bindEnvironment(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range append(append([]string{}, RequiredKeys...), optionalKeys...) {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}
	return nil
}

// validate parses the raw fields into typed ones.
func (c *Config) validate() error {
	if err := validateURL(c.RPCHTTP); err != nil {
		return types.ConfigError("rpc_http", err)
	}

	sender, err := wallet.NewWallet(strings.TrimSpace(c.SenderPK))
	if err != nil {
		return types.ConfigError("sender_pk", err)
	}
	c.Sender = sender

	if c.Mint, err = solana.PublicKeyFromBase58(strings.TrimSpace(c.TokenAddr)); err != nil {
		return types.Configf("token_addr", "invalid public key: %w", err)
	}
	if c.Receiver, err = solana.PublicKeyFromBase58(strings.TrimSpace(c.ReceiverAddr)); err != nil {
		return types.Configf("receiver_addr", "invalid public key: %w", err)
	}

	if c.TransferAmount, err = decimal.NewFromString(strings.TrimSpace(c.TransferAmountRaw)); err != nil {
		return types.Configf("transfer_amount", "invalid number %q: %w", c.TransferAmountRaw, err)
	}

	if c.TxFee, err = decimal.NewFromString(strings.TrimSpace(c.TxFeeRaw)); err != nil {
		return types.Configf("tx_fee", "invalid number %q: %w", c.TxFeeRaw, err)
	}
	if c.TxFee.IsNegative() {
		return types.Configf("tx_fee", "must not be negative, got %s", c.TxFee)
	}

	switch {
	case c.ComputeUnitsRaw == 0:
		return types.ConfigError("compute_units", types.ErrZeroComputeUnits)
	case c.ComputeUnitsRaw < 0:
		return types.Configf("compute_units", "must be positive, got %d", c.ComputeUnitsRaw)
	case c.ComputeUnitsRaw > int64(computebudget.MaxUnits):
		return types.Configf("compute_units", "%d exceeds maximum %d", c.ComputeUnitsRaw, computebudget.MaxUnits)
	}
	c.ComputeUnits = uint32(c.ComputeUnitsRaw)

	if c.Memo == "" {
		c.Memo = DefaultMemo
	}

	switch rpc.CommitmentType(c.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return types.Configf("commitment", "unsupported commitment %q", c.Commitment)
	}

	if c.ExplorerURL != "" {
		if err := validateURL(c.ExplorerURL); err != nil {
			return types.ConfigError("explorer_url", err)
		}
	}

	return nil
}

// CommitmentType returns the configured commitment as an rpc value.
func (c *Config) CommitmentType() rpc.CommitmentType {
	return rpc.CommitmentType(c.Commitment)
}

// MaskRPCForLogging hides query parameters (API keys) of the RPC URL.
func (c *Config) MaskRPCForLogging() string {
	parsed, err := url.Parse(c.RPCHTTP)
	if err != nil {
		return "***"
	}
	if parsed.RawQuery != "" {
		parsed.RawQuery = "***"
	}
	if parsed.User != nil {
		parsed.User = url.User("***")
	}
	return parsed.String()
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if !strings.HasPrefix(parsed.Scheme, "http") {
		return fmt.Errorf("invalid URL protocol %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("missing host in %q", rawURL)
	}
	return nil
}
