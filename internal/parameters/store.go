// Package parameters reads application parameters from SSM Parameter Store and
// secrets from Secrets Manager.
package parameters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
)

var (
	// ErrParameterNotFound indicates the SSM parameter does not exist.
	ErrParameterNotFound = apperrors.Wrap(apperrors.ErrNotFound, "parameter not found")

	// ErrSecretNotFound indicates the secret does not exist.
	ErrSecretNotFound = apperrors.Wrap(apperrors.ErrNotFound, "secret not found")
)

// SSMAPI is the subset of the SSM client used by Store.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SecretsManagerAPI is the subset of the Secrets Manager client used by Store.
type SecretsManagerAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

type getOptions struct {
	defaultValue *string
	usePrefix    bool
}

// GetOption customizes a single lookup.
type GetOption func(*getOptions)

// WithDefault returns value instead of a not found error.
func WithDefault(value string) GetOption {
	return func(o *getOptions) {
		o.defaultValue = &value
	}
}

// WithoutPrefix looks the name up as given.
func WithoutPrefix() GetOption {
	return func(o *getOptions) {
		o.usePrefix = false
	}
}

func newGetOptions(opts []GetOption) getOptions {
	o := getOptions{usePrefix: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Store resolves names under the application prefixes: "/{env}/{app}/" for
// parameters and "{env}-{app}-" for secrets.
type Store struct {
	ssm          SSMAPI
	secrets      SecretsManagerAPI
	ssmPrefix    string
	secretPrefix string
	logger       *slog.Logger
}

// NewStore creates a Store for environment and appName.
func NewStore(ssmClient SSMAPI, secretsClient SecretsManagerAPI, environment, appName string, logger *slog.Logger) *Store {
	return &Store{
		ssm:          ssmClient,
		secrets:      secretsClient,
		ssmPrefix:    fmt.Sprintf("/%s/%s/", environment, appName),
		secretPrefix: fmt.Sprintf("%s-%s-", environment, appName),
		logger:       logger,
	}
}

// GetParameter returns the decrypted value of a parameter.
func (s *Store) GetParameter(ctx context.Context, name string, opts ...GetOption) (string, error) {
	o := newGetOptions(opts)
	if o.usePrefix {
		name = s.ssmPrefix + name
	}

	out, err := s.ssm.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *ssmtypes.ParameterNotFound
		if errors.As(err, &notFound) {
			if o.defaultValue != nil {
				return *o.defaultValue, nil
			}
			return "", apperrors.Wrap(ErrParameterNotFound, name)
		}
		s.logger.Warn("failed to get parameter", slog.String("name", name), slog.Any("error", err))
		return "", fmt.Errorf("failed to get parameter %s: %w", name, err)
	}

	if out.Parameter == nil {
		return "", apperrors.Wrap(ErrParameterNotFound, name)
	}

	s.logger.Debug("parameter loaded", slog.String("name", name))
	return aws.ToString(out.Parameter.Value), nil
}

// GetParameterJSON decodes a JSON parameter into target.
func (s *Store) GetParameterJSON(ctx context.Context, name string, target any, opts ...GetOption) error {
	value, err := s.GetParameter(ctx, name, opts...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), target); err != nil {
		return fmt.Errorf("failed to decode parameter %s: %w", name, err)
	}
	return nil
}

// GetSecret returns the string value of a secret.
func (s *Store) GetSecret(ctx context.Context, name string, opts ...GetOption) (string, error) {
	o := newGetOptions(opts)
	if o.usePrefix {
		name = s.secretPrefix + name
	}

	out, err := s.secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var notFound *smtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			if o.defaultValue != nil {
				return *o.defaultValue, nil
			}
			return "", apperrors.Wrap(ErrSecretNotFound, name)
		}
		s.logger.Warn("failed to get secret", slog.String("name", name), slog.Any("error", err))
		return "", fmt.Errorf("failed to get secret %s: %w", name, err)
	}

	if out.SecretString != nil {
		return *out.SecretString, nil
	}
	return string(out.SecretBinary), nil
}

// GetSecretJSON decodes a JSON secret into target.
func (s *Store) GetSecretJSON(ctx context.Context, name string, target any, opts ...GetOption) error {
	value, err := s.GetSecret(ctx, name, opts...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), target); err != nil {
		return fmt.Errorf("failed to decode secret: %w", err)
	}
	return nil
}
