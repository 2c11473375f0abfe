package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

var errNoSecretDataFound = errors.New("no secret data found in AWS Secrets Manager")

// SecretClient is the part of the Secrets Manager API the overlay needs
type SecretClient interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsOverlay is the JSON document stored in the secret. Empty fields
// leave the loaded value alone.
type SecretsOverlay struct {
	DatabasePassword       string `json:"database_password"`
	StorageAccessKeyID     string `json:"storage_access_key_id"`
	StorageSecretAccessKey string `json:"storage_secret_access_key"`
}

// targets pairs each secret with the config field it replaces
func (o *SecretsOverlay) targets(cfg *Config) []struct {
	value string
	dst   *string
} {
	return []struct {
		value string
		dst   *string
	}{
		{o.DatabasePassword, &cfg.Database.Password},
		{o.StorageAccessKeyID, &cfg.Storage.AccessKeyID},
		{o.StorageSecretAccessKey, &cfg.Storage.SecretAccessKey},
	}
}

// Apply copies non-empty secrets onto cfg and returns how many were applied
func (o *SecretsOverlay) Apply(cfg *Config) int {
	applied := 0
	for _, t := range o.targets(cfg) {
		if t.value != "" {
			*t.dst = t.value
			applied++
		}
	}
	return applied
}

func decodeSecret(out *secretsmanager.GetSecretValueOutput) (*SecretsOverlay, error) {
	var raw []byte
	switch {
	case out.SecretString != nil:
		raw = []byte(*out.SecretString)
	case out.SecretBinary != nil:
		raw = out.SecretBinary
	default:
		return nil, errNoSecretDataFound
	}

	var overlay SecretsOverlay
	if err := json.Unmarshal(raw, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse secret %s: %w", aws.ToString(out.Name), err)
	}
	return &overlay, nil
}

// ApplySecrets fetches the configured secret through client and overlays it
// onto cfg
func ApplySecrets(ctx context.Context, client SecretClient, cfg *Config) (int, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(cfg.Secrets.SecretName),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get secret %s: %w", cfg.Secrets.SecretName, err)
	}

	overlay, err := decodeSecret(out)
	if err != nil {
		return 0, err
	}
	return overlay.Apply(cfg), nil
}

// LoadSecretsFromAWS overlays the configured secret onto cfg using the
// default AWS credential chain. It is a no-op when secrets are disabled.
func LoadSecretsFromAWS(ctx context.Context, cfg *Config) error {
	if !cfg.Secrets.Enabled {
		return nil
	}

	region := cfg.Secrets.Region
	if region == "" {
		region = cfg.Storage.Region
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	_, err = ApplySecrets(ctx, secretsmanager.NewFromConfig(awsCfg), cfg)
	return err
}
