package mainconfig

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/pitaya-nails-booking/internal/catalog"
	appconfig "github.com/wolfman30/pitaya-nails-booking/internal/config"
	"github.com/wolfman30/pitaya-nails-booking/internal/notify"
	"github.com/wolfman30/pitaya-nails-booking/internal/reminders"
	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

// LoadAWSConfig centralizes AWS SDK initialization so both binaries share the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
				switch service {
				case sesv2.ServiceID, dynamodb.ServiceID:
					return aws.Endpoint{
						URL:           endpoint,
						PartitionID:   "aws",
						SigningRegion: cfg.AWSRegion,
					}, nil
				default:
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				}
			},
		)
	}

	return awsCfg, nil
}

// NewRedisClient builds the client shared by the session KV and the reminder queue.
func NewRedisClient(cfg *appconfig.Config) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

// NewEmailSender picks the email provider named by EMAIL_PROVIDER. It returns
// a nil sender when the provider has no credentials, which leaves submission
// disabled.
func NewEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	switch cfg.EmailProvider {
	case "", "http":
		if s := notify.NewHTTPSender(notify.HTTPConfig{
			URL:       cfg.EmailAPIURL,
			APIKey:    cfg.EmailAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, nil, logger); s != nil {
			return s, nil
		}
	case "sendgrid":
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger); s != nil {
			return s, nil
		}
	case "ses":
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("mainconfig: load aws config: %w", err)
		}
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail:        cfg.EmailFrom,
			FromName:         cfg.EmailFromName,
			ConfigurationSet: cfg.SESConfigurationSet,
		}, logger), nil
	case "stub":
		return notify.NewStubEmailSender(logger), nil
	default:
		return nil, fmt.Errorf("mainconfig: unknown EMAIL_PROVIDER %q", cfg.EmailProvider)
	}
	logger.Warn("email provider has no credentials; booking submission is disabled", "provider", cfg.EmailProvider)
	return nil, nil
}

// NewComposer builds the email templates for the configured salon.
func NewComposer(cfg *appconfig.Config, salon catalog.Salon) notify.Composer {
	return notify.Composer{
		Salon:      salon,
		SalonEmail: cfg.SalonNotifyEmail,
		Location:   cfg.Location(),
	}
}

// NewSMSSender returns the Twilio sender, or a logging stub outside
// production when Twilio is not configured.
func NewSMSSender(cfg *appconfig.Config, logger *logging.Logger) reminders.SMSSender {
	if s := reminders.NewTwilioSender(reminders.TwilioConfig{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioFromNumber,
	}, logger); s != nil {
		return s
	}
	if cfg.Env == "production" {
		logger.Warn("twilio not configured; sms reminders will fail")
		return nil
	}
	return reminders.NewStubSMSSender(logger)
}

// NewReminderStore keeps reminders in redis when sessions are in redis, so a
// separate worker process can pick them up. Otherwise they live in memory
// and the API must process them itself.
func NewReminderStore(cfg *appconfig.Config, client *redis.Client) (reminders.Store, bool) {
	if cfg.SessionStore == "redis" && client != nil {
		return reminders.NewRedisStore(client), true
	}
	return reminders.NewMemoryStore(), false
}
