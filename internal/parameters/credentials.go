package parameters

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/database"
	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
)

// dbConfig is the shape of the infrastructure database parameter.
type dbConfig struct {
	Name           string      `json:"db-name"`
	Host           string      `json:"db-host"`
	Port           json.Number `json:"db-port"`
	PasswordSecret string      `json:"db-password"`
}

// dbSecret is the shape of the database access secret.
type dbSecret struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ResolveDBCredentials completes base from the infrastructure parameter.
// Name, host and port are taken from the parameter only when base sets none of
// them. User and password come from the secret the parameter points at unless
// base already carries both.
func (s *Store) ResolveDBCredentials(
	ctx context.Context,
	parameterName string,
	base database.Credentials,
) (database.Credentials, error) {
	var cfg dbConfig
	if err := s.GetParameterJSON(ctx, parameterName, &cfg, WithoutPrefix()); err != nil {
		return base, err
	}

	creds := base
	if creds.Port == 0 && creds.Host == "" && creds.Name == "" {
		creds.Name = cfg.Name
		creds.Host = cfg.Host
		if cfg.Port != "" {
			port, err := strconv.Atoi(cfg.Port.String())
			if err != nil {
				return base, fmt.Errorf("invalid db-port %q: %w", cfg.Port, err)
			}
			creds.Port = port
		}
	}

	if creds.User != "" && creds.Password != "" {
		return creds, nil
	}

	var secret dbSecret
	if err := s.GetSecretJSON(ctx, cfg.PasswordSecret, &secret, WithoutPrefix()); err != nil {
		return base, err
	}
	if secret.Username == "" || secret.Password == "" {
		return base, apperrors.Wrap(apperrors.ErrInvalidInput, "database secret is missing username or password")
	}

	creds.User = secret.Username
	creds.Password = secret.Password
	return creds, nil
}
