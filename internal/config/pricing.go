package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Plan modes understood by the checkout flow.
const (
	PlanModePayment      = "payment"
	PlanModeSubscription = "subscription"
)

// Plan describes one purchasable tier.
type Plan struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	PriceCents  int64  `mapstructure:"priceCents"`
	Mode        string `mapstructure:"mode"`
	Interval    string `mapstructure:"interval"`
}

// PricingConfig is the full plan catalog.
type PricingConfig struct {
	Plans []Plan `mapstructure:"plans"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		Plans: []Plan{
			{
				ID:          "one_letter",
				Name:        "Single Letter Generation",
				Description: "Generate one professional legal letter",
				PriceCents:  29900,
				Mode:        PlanModePayment,
			},
			{
				ID:          "four_letters",
				Name:        "Four Letters Monthly",
				Description: "Generate up to 4 letters per month, billed yearly",
				PriceCents:  29900,
				Mode:        PlanModeSubscription,
				Interval:    "year",
			},
			{
				ID:          "eight_letters",
				Name:        "Eight Letters Monthly",
				Description: "Generate up to 8 letters per month, billed yearly",
				PriceCents:  59900,
				Mode:        PlanModeSubscription,
				Interval:    "year",
			},
		},
	}
}

// PricingHolder serves the current plan catalog and hot-reloads it from
// pricing.yml when present.
type PricingHolder struct {
	current atomic.Value // holds PricingConfig
}

func NewPricingHolder() (*PricingHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/lexdraft")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LEXDRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &PricingHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultPricingConfig())
		return holder, nil
	}

	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingConfig
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-config] reload failed: %v", err)
			return
		}
		if err := validatePricingConfig(updated); err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PricingHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

// Plan returns the plan with the given id, or false when unknown.
func (h *PricingHolder) Plan(id string) (Plan, bool) {
	for _, plan := range h.Get().Plans {
		if plan.ID == id {
			return plan, true
		}
	}
	return Plan{}, false
}

func validatePricingConfig(cfg PricingConfig) error {
	if len(cfg.Plans) == 0 {
		return errors.New("pricing.plans cannot be empty")
	}
	for _, plan := range cfg.Plans {
		if strings.TrimSpace(plan.ID) == "" {
			return errors.New("pricing.plans entries require an id")
		}
		if plan.PriceCents <= 0 {
			return errors.New("pricing.plans entries require a positive priceCents")
		}
		switch plan.Mode {
		case PlanModePayment:
		case PlanModeSubscription:
			if plan.Interval == "" {
				return errors.New("subscription plans require an interval")
			}
		default:
			return errors.New("pricing.plans entries require mode payment or subscription")
		}
	}
	return nil
}
