package main

import (
	"fmt"

	"github.com/helixml/vodcast/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// effectiveConfig is the printable form of AppConfig. Secrets are masked.
type effectiveConfig struct {
	Host        string          `yaml:"host"`
	Port        int             `yaml:"port"`
	VODDir      string          `yaml:"vod_dir"`
	LogLevel    string          `yaml:"log_level"`
	LogFormat   string          `yaml:"log_format"`
	APIKeys     int             `yaml:"api_keys_count"`
	CORSOrigins []string        `yaml:"cors_allowed_origins"`
	Stream      effectiveStream `yaml:"stream"`
	Owncast     effectiveLive   `yaml:"owncast"`
}

type effectiveStream struct {
	BufferSize  int    `yaml:"buffer_size"`
	RateLimit   int    `yaml:"rate_limit"`
	ContentType string `yaml:"content_type"`
}

type effectiveLive struct {
	URL        string `yaml:"url"`
	HLSURL     string `yaml:"hls_url"`
	AdminToken string `yaml:"admin_token"`
	Timeout    string `yaml:"timeout"`
}

func newEffectiveConfig(cfg config.AppConfig) effectiveConfig {
	return effectiveConfig{
		Host:        cfg.Host(),
		Port:        cfg.Port(),
		VODDir:      cfg.VODDir(),
		LogLevel:    cfg.LogLevel(),
		LogFormat:   string(cfg.LogFormat()),
		APIKeys:     len(cfg.APIKeys()),
		CORSOrigins: cfg.CORSOrigins(),
		Stream: effectiveStream{
			BufferSize:  cfg.Stream().BufferSize(),
			RateLimit:   cfg.Stream().RateLimit(),
			ContentType: cfg.Stream().ContentType(),
		},
		Owncast: effectiveLive{
			URL:        cfg.Owncast().URL(),
			HLSURL:     cfg.Owncast().HLSURL(),
			AdminToken: cfg.MaskedOwncastToken(),
			Timeout:    cfg.Owncast().Timeout().String(),
		},
	}
}

func configCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(newEffectiveConfig(cfg)); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}
