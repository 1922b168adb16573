package quotefeed

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BaseURL        string        `envconfig:"QUOTE_FEED_BASE_URL" default:"http://localhost:9191"`
	RequestTimeout time.Duration `envconfig:"QUOTE_FEED_TIMEOUT" default:"10s"`
	RetryCount     int           `envconfig:"QUOTE_FEED_RETRY_COUNT" default:"3"`
	CacheTTL       time.Duration `envconfig:"QUOTE_FEED_CACHE_TTL" default:"60s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
