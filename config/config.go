package config

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Debug               bool     `envconfig:"debug"`
	Port                int      `envconfig:"port" default:"8080"`
	Env                 string   `envconfig:"env" default:"dev"`
	PostgresHost        string   `envconfig:"postgres_host"`
	PostgresUser        string   `envconfig:"postgres_user"`
	PostgresDB          string   `envconfig:"postgres_db"`
	PostgresPort        int      `envconfig:"postgres_port" default:"5432"`
	PostgresPassword    string   `envconfig:"postgres_password"`
	JWTSecret           string   `envconfig:"jwt_secret"`
	BaseUrl             string   `envconfig:"base_url"`
	MailgunApiKey       string   `envconfig:"mg_public_api_key"`
	MgDomain            string   `envconfig:"mg_domain"`
	MgEmailFrom         string   `envconfig:"email_from"`
	AWSRegion           string   `envconfig:"aws_region"`
	AWSBucket           string   `envconfig:"aws_bucket"`
	AWSAccessKeyID      string   `envconfig:"aws_access_key_id"`
	AWSSecretAccessKey  string   `envconfig:"aws_secret_access_key"`
	GoogleClientID      string   `envconfig:"google_client_id"`
	GoogleClientSecret  string   `envconfig:"google_client_secret"`
	GoogleRedirectURL   string   `envconfig:"google_redirect_url"`
	FirebaseCredentials string   `envconfig:"firebase_credentials" default:"./google-services.json"`
	CoinsPerRupee       int64    `envconfig:"coins_per_rupee" default:"100"`
	SignupBonusCoins    int64    `envconfig:"signup_bonus_coins" default:"100"`
	ReferralBonusCoins  int64    `envconfig:"referral_bonus_coins" default:"500"`
	MinimumWithdrawal   int64    `envconfig:"minimum_withdrawal" default:"50"`
	WithdrawalAmounts   []int64  `envconfig:"withdrawal_amounts" default:"50,100,200,500"`
	MaxUploadSize       int64    `envconfig:"max_upload_size" default:"5242880"`
	AllowedOrigins      []string `envconfig:"allowed_origins"`
	AdminEmails         []string `envconfig:"admin_emails"`
}

func Load() (*Config, error) {
	env := os.Getenv("GIN_MODE")
	if env != "release" {
		if err := godotenv.Load("./.env"); err != nil {
			log.Printf("couldn't load env vars: %v", err)
		}
	}

	c := &Config{}
	err := envconfig.Process("earnly", c)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the settings the ledger cannot run without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt secret is required")
	}
	if c.CoinsPerRupee <= 0 {
		return errors.New("coins per rupee must be positive")
	}
	if c.SignupBonusCoins < 0 || c.ReferralBonusCoins < 0 {
		return errors.New("bonus coins cannot be negative")
	}
	if c.MinimumWithdrawal <= 0 {
		return errors.New("minimum withdrawal must be positive")
	}
	return nil
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}
