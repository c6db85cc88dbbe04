package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME" default:"openrun"`
		Timezone string `envconfig:"TIMEZONE" default:"Asia/Seoul"`
		APIKey   string `envconfig:"API_KEY"`
		CORS     struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
	} `envconfig:"APP"`

	// Engine holds the knobs for the reservation contention engine. Per-schedule
	// values (wave interval, burst count, pre-fire, warm-up) live on the schedule
	// record itself; these are process-wide defaults and bounds.
	Engine struct {
		PollIntervalMS          int `envconfig:"POLL_INTERVAL_MS" default:"500"`
		ClockSampleCount        int `envconfig:"CLOCK_SAMPLE_COUNT" default:"5"`
		ClockSampleGapMS        int `envconfig:"CLOCK_SAMPLE_GAP_MS" default:"100"`
		ClockResyncSeconds      int `envconfig:"CLOCK_RESYNC_SECONDS" default:"30"`
		ClockRTTThresholdMS     int `envconfig:"CLOCK_RTT_THRESHOLD_MS" default:"500"`
		WarmParallelism         int `envconfig:"WARM_PARALLELISM" default:"3"`
		HTTPTimeoutSeconds      int `envconfig:"HTTP_TIMEOUT_SECONDS" default:"5"`
		BurstBaseDelayMS        int `envconfig:"BURST_BASE_DELAY_MS" default:"50"`
		RateLimitCooldownFactor int `envconfig:"RATE_LIMIT_COOLDOWN_FACTOR" default:"2"`
		SessionTTLMinutes       int `envconfig:"SESSION_TTL_MINUTES" default:"30"`
		WorkerDeadlineSeconds   int `envconfig:"WORKER_DEADLINE_SECONDS" default:"120"`
	} `envconfig:"ENGINE"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL" default:"300"`
	} `envconfig:"CACHE"`

	JWT struct {
		AccessSecret     string `envconfig:"ACCESS_SECRET"`
		RefreshSecret    string `envconfig:"REFRESH_SECRET"`
		AccessExpireMin  int    `envconfig:"ACCESS_EXPIRE_MIN" default:"60"`
		RefreshExpireMin int    `envconfig:"REFRESH_EXPIRE_MIN" default:"10080"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			MaxRetry       int    `envconfig:"MAX_RETRY" default:"5"`
			RetryWaitTime  int    `envconfig:"RETRY_WAIT_TIME" default:"2"`
			MigrationTable string `envconfig:"MIGRATION_TABLE" default:"schema_migrations"`
			Prefix         string `envconfig:"PREFIX"`
			Read           struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Username string `envconfig:"USER"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME"`
				SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
			} `envconfig:"READ"`
			Write struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Username string `envconfig:"USER"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME"`
				SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
			} `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Enable        bool     `envconfig:"ENABLE"`
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP"`
		SASL          struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
		Topics struct {
			Attempts  string `envconfig:"ATTEMPTS" default:"openrun.attempts"`
			Schedules string `envconfig:"SCHEDULES" default:"openrun.schedules"`
		} `envconfig:"TOPICS"`
	} `envconfig:"KAFKA"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`

		Telegram struct {
			Enable   bool   `envconfig:"ENABLE"`
			BotToken string `envconfig:"BOT_TOKEN"`
			ChatID   string `envconfig:"CHAT_ID"`
			BaseURL  string `envconfig:"BASE_URL" default:"https://api.telegram.org"`
		} `envconfig:"TELEGRAM"`

		S3 struct {
			Enable        bool   `envconfig:"ENABLE"`
			BucketName    string `envconfig:"BUCKET_NAME"`
			Region        string `envconfig:"REGION"`
			AccessKey     string `envconfig:"ACCESS_KEY"`
			SecretKey     string `envconfig:"SECRET_KEY"`
			APIEndpoint   string `envconfig:"API_ENDPOINT"`
			ArchivePrefix string `envconfig:"ARCHIVE_PREFIX" default:"schedules"`
		} `envconfig:"S3"`
	}
}

var (
	conf        Config
	once        sync.Once
	initialized bool
)

func Init() error {
	var err error

	once.Do(func() {
		err = godotenv.Load(".env")
		if err != nil {
			log.Warn().Err(err).Msg("Could not load .env file, continuing with existing environment variables")
		} else {
			log.Info().Msg("Successfully loaded variables from .env file into environment")
		}

		err = envconfig.Process("", &conf)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to process environment variables")
		}

		initialized = true

		log.Info().Msg("Service configuration initialized successfully")
	})

	if err != nil {
		return fmt.Errorf("loading .env file: %w", err)
	}

	return nil
}

func Get() *Config {
	if !initialized {
		if err := Init(); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize configuration")
		}
	}

	return &conf
}
