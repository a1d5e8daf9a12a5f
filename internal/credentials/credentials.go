// Package credentials resolves API secrets for the ticketing systems. A
// secret written in the config file always wins; otherwise it is looked up
// in the OS keyring under "ttr:<service>".
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// ErrNotFound is returned when no store holds a secret for the key.
var ErrNotFound = errors.New("secret not found")

// Store looks up a secret by service and account.
type Store interface {
	Get(service, account string) (string, error)
}

// Keyring is the OS keyring backend (Keychain, Secret Service, Windows
// Credential Manager).
type Keyring struct{}

func keyringService(service string) string { return "ttr:" + service }

func (Keyring) Get(service, account string) (string, error) {
	secret, err := keyring.Get(keyringService(service), account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %s/%s from keyring: %w", service, account, err)
	}
	return secret, nil
}

// Set stores secret for service and account, replacing any previous value.
func (Keyring) Set(service, account, secret string) error {
	if err := keyring.Set(keyringService(service), account, secret); err != nil {
		return fmt.Errorf("writing %s/%s to keyring: %w", service, account, err)
	}
	return nil
}

// Env reads secrets from TTR_SECRET_<SERVICE>_<ACCOUNT>, upper-cased with
// non-alphanumerics replaced by underscores.
type Env struct{}

// EnvName returns the variable Env consults for service and account.
func EnvName(service, account string) string {
	clean := func(s string) string {
		return strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' {
				return r - 'a' + 'A'
			}
			if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
				return r
			}
			return '_'
		}, s)
	}
	return "TTR_SECRET_" + clean(service) + "_" + clean(account)
}

func (Env) Get(service, account string) (string, error) {
	if s, ok := os.LookupEnv(EnvName(service, account)); ok && s != "" {
		return s, nil
	}
	return "", ErrNotFound
}

// Map is an in-memory store keyed by "service/account".
type Map map[string]string

func (m Map) Get(service, account string) (string, error) {
	if s, ok := m[service+"/"+account]; ok {
		return s, nil
	}
	return "", ErrNotFound
}

// Chain queries each store in order and returns the first hit. Stores that
// fail with anything other than ErrNotFound abort the lookup.
type Chain []Store

func (c Chain) Get(service, account string) (string, error) {
	for _, s := range c {
		secret, err := s.Get(service, account)
		if err == nil {
			return secret, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", ErrNotFound
}

// Resolve returns configured when it is non-empty, else the secret held by
// store. A missing secret yields "" and an error wrapping ErrNotFound.
func Resolve(store Store, configured, service, account string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if store == nil {
		return "", fmt.Errorf("%s secret for %q: %w", service, account, ErrNotFound)
	}
	secret, err := store.Get(service, account)
	if err != nil {
		return "", fmt.Errorf("%s secret for %q: %w", service, account, err)
	}
	return secret, nil
}
