package config

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DocumentConfig controls the fixed text blocks and formatting of generated
// invoice documents. Operators can override it via document.yml without a
// redeploy.
type DocumentConfig struct {
	CurrencySymbol string   `mapstructure:"currencySymbol"`
	TermsHeading   string   `mapstructure:"termsHeading"`
	TermsLines     []string `mapstructure:"termsLines"`
	ClosingNote    string   `mapstructure:"closingNote"`
	SignatureLabel string   `mapstructure:"signatureLabel"`
}

func DefaultDocumentConfig() DocumentConfig {
	return DocumentConfig{
		CurrencySymbol: "Rs.",
		TermsHeading:   "Terms & Conditions",
		TermsLines: []string{
			"Payment due within 30 days of invoice date.",
			"Please quote the invoice number on all remittances.",
			"Any discrepancy must be reported within 7 days.",
		},
		ClosingNote:    "This is a system generated invoice.",
		SignatureLabel: "Authorised Signatory",
	}
}

// DocumentConfigHolder serves the current document config and hot-reloads it
// when the backing file changes.
type DocumentConfigHolder struct {
	current atomic.Value // holds DocumentConfig
}

func NewDocumentConfigHolder() (*DocumentConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("document")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/hrm")
	v.AddConfigPath(".")

	v.SetEnvPrefix("HRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDocumentDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	holder := &DocumentConfigHolder{}
	cfg, err := unmarshalDocument(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(cfg)

	v.OnConfigChange(func(_ fsnotify.Event) {
		next, err := unmarshalDocument(v)
		if err != nil {
			log.Printf("document config reload failed: %v", err)
			return
		}
		holder.current.Store(next)
	})
	v.WatchConfig()

	return holder, nil
}

func (h *DocumentConfigHolder) Get() DocumentConfig {
	if cfg, ok := h.current.Load().(DocumentConfig); ok {
		return cfg
	}
	return DefaultDocumentConfig()
}

func setDocumentDefaults(v *viper.Viper) {
	defaults := DefaultDocumentConfig()
	v.SetDefault("document.currencySymbol", defaults.CurrencySymbol)
	v.SetDefault("document.termsHeading", defaults.TermsHeading)
	v.SetDefault("document.termsLines", defaults.TermsLines)
	v.SetDefault("document.closingNote", defaults.ClosingNote)
	v.SetDefault("document.signatureLabel", defaults.SignatureLabel)
}

func unmarshalDocument(v *viper.Viper) (DocumentConfig, error) {
	var cfg DocumentConfig
	if err := v.UnmarshalKey("document", &cfg); err != nil {
		return DocumentConfig{}, err
	}
	if strings.TrimSpace(cfg.CurrencySymbol) == "" {
		cfg.CurrencySymbol = DefaultDocumentConfig().CurrencySymbol
	}
	return cfg, nil
}
