package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables and flags.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	// Bootstrap creates the DynamoDB tables on startup (local development).
	Bootstrap bool

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	Media MediaConfig
	AI    AIConfig

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiryDays     int
	GoogleClientID    string

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	AppBaseURL     string // used in verification links
	WebhookBaseURL string // social webhook receivers live at <base>/v1/webhooks/<platform>
	SNSTopicARN    string // optional extra social channel
	NotifyTimeout  time.Duration

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users              string
	Ads                string
	VerificationTokens string
}

// MediaConfig selects and configures the media store backend.
type MediaConfig struct {
	Backend       string // "local" or "s3"
	UploadsDir    string
	PublicBaseURL string // prefix of returned public paths
	S3Bucket      string
	// MaxUploadBytes caps the whole multipart body of an ad submission.
	MaxUploadBytes int64
}

// AIConfig configures the Gemini text and Imagen image models.
type AIConfig struct {
	APIKey         string
	ContentModel   string
	ImageModel     string
	PlaceholderURL string
	Timeout        time.Duration
}

const DefaultPlaceholderURL = "https://images.pexels.com/photos/1092644/pexels-photo-1092644.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1"

var defaults = map[string]any{
	"APP_PORT":                         "3000",
	"APP_ENV":                          "development",
	"LOG_LEVEL":                        "info",
	"AWS_REGION":                       "us-east-1",
	"AWS_ENDPOINT_URL":                 "",
	"DYNAMO_TABLE_USERS":               "users",
	"DYNAMO_TABLE_ADS":                 "ads",
	"DYNAMO_TABLE_VERIFICATION_TOKENS": "verification_tokens",
	"MEDIA_BACKEND":                    "local",
	"UPLOADS_DIR":                      "./public/uploads",
	"MEDIA_PUBLIC_BASE_URL":            "/uploads",
	"S3_BUCKET_NAME":                   "classifieds-media",
	"MAX_UPLOAD_BYTES":                 50 << 20,
	"GEMINI_CONTENT_MODEL":             "gemini-2.5-flash",
	"GEMINI_IMAGE_MODEL":               "imagen-3.0-generate-002",
	"AI_PLACEHOLDER_URL":               DefaultPlaceholderURL,
	"AI_TIMEOUT":                       "60s",
	"JWT_PRIVATE_KEY_PATH":             "./private_key.pem",
	"JWT_PUBLIC_KEY_PATH":              "./public_key.pem",
	"JWT_EXPIRY_DAYS":                  7,
	"SMTP_HOST":                        "localhost",
	"SMTP_PORT":                        1025,
	"SMTP_FROM":                        "noreply@example.com",
	"APP_BASE_URL":                     "http://localhost:3000",
	"WEBHOOK_BASE_URL":                 "http://localhost:3000",
	"NOTIFY_TIMEOUT":                   "10s",
	"ALLOWED_ORIGINS":                  "*",
}

// Load reads .env (if present), environment variables and command-line flags.
// Flags win over the environment.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	fs := pflag.NewFlagSet("api", pflag.ContinueOnError)
	fs.Bool("bootstrap", false, "Create DynamoDB tables and indexes before serving")
	fs.String("port", "", "HTTP listen port (overrides APP_PORT)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if p, _ := fs.GetString("port"); p != "" {
		v.Set("APP_PORT", p)
	}
	bootstrap, _ := fs.GetBool("bootstrap")

	cfg := &Config{
		AppPort:   v.GetString("APP_PORT"),
		AppEnv:    v.GetString("APP_ENV"),
		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		Bootstrap: bootstrap || v.GetBool("DYNAMO_BOOTSTRAP"),

		AWSRegion:      v.GetString("AWS_REGION"),
		AWSEndpointURL: v.GetString("AWS_ENDPOINT_URL"),
		AWSAccessKeyID: v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:   v.GetString("AWS_SECRET_ACCESS_KEY"),
		DynamoTables: DynamoTables{
			Users:              v.GetString("DYNAMO_TABLE_USERS"),
			Ads:                v.GetString("DYNAMO_TABLE_ADS"),
			VerificationTokens: v.GetString("DYNAMO_TABLE_VERIFICATION_TOKENS"),
		},
		Media: MediaConfig{
			Backend:       strings.ToLower(v.GetString("MEDIA_BACKEND")),
			UploadsDir:    v.GetString("UPLOADS_DIR"),
			PublicBaseURL: strings.TrimRight(v.GetString("MEDIA_PUBLIC_BASE_URL"), "/"),
			S3Bucket:      v.GetString("S3_BUCKET_NAME"),

			MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		},
		AI: AIConfig{
			APIKey:         v.GetString("GEMINI_API_KEY"),
			ContentModel:   v.GetString("GEMINI_CONTENT_MODEL"),
			ImageModel:     v.GetString("GEMINI_IMAGE_MODEL"),
			PlaceholderURL: v.GetString("AI_PLACEHOLDER_URL"),
			Timeout:        v.GetDuration("AI_TIMEOUT"),
		},
		JWTPrivateKeyPath: v.GetString("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:  v.GetString("JWT_PUBLIC_KEY_PATH"),
		JWTExpiryDays:     v.GetInt("JWT_EXPIRY_DAYS"),
		GoogleClientID:    v.GetString("GOOGLE_CLIENT_ID"),

		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPFrom:     v.GetString("SMTP_FROM"),
		SMTPUsername: v.GetString("SMTP_USERNAME"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),

		AppBaseURL:     strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
		WebhookBaseURL: strings.TrimRight(v.GetString("WEBHOOK_BASE_URL"), "/"),
		SNSTopicARN:    v.GetString("SNS_TOPIC_ARN"),
		NotifyTimeout:  v.GetDuration("NOTIFY_TIMEOUT"),

		AllowedOrigins: strings.Split(v.GetString("ALLOWED_ORIGINS"), ","),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	switch c.Media.Backend {
	case "local":
		if c.Media.UploadsDir == "" {
			return fmt.Errorf("UPLOADS_DIR is required for the local media backend")
		}
	case "s3":
		if c.Media.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET_NAME is required for the s3 media backend")
		}
	default:
		return fmt.Errorf("invalid MEDIA_BACKEND %q (want local or s3)", c.Media.Backend)
	}
	if c.Media.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive")
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be positive")
	}
	if c.JWTExpiryDays <= 0 {
		return fmt.Errorf("JWT_EXPIRY_DAYS must be positive")
	}
	return nil
}

// IsDevelopment reports whether the server runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
