package feerules

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BaseURL      string        `envconfig:"FEE_RULES_BASE_URL" default:"http://localhost:3001"`
	RulesPath    string        `envconfig:"FEE_RULES_PATH" default:"/fees/discount_rules"`
	Timeout      time.Duration `envconfig:"FEE_RULES_TIMEOUT" default:"10s"`
	CacheTTL     time.Duration `envconfig:"FEE_RULES_CACHE_TTL" default:"5m"`
	RetryCount   int           `envconfig:"FEE_RULES_RETRY_COUNT" default:"3"`
	RetryWait    time.Duration `envconfig:"FEE_RULES_RETRY_WAIT" default:"500ms"`
	RetryMaxWait time.Duration `envconfig:"FEE_RULES_RETRY_MAX_WAIT" default:"8s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
