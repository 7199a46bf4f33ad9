package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	filestore "github.com/bnema/portainer-notifier/internal/adapters/secrets/file"
	passstore "github.com/bnema/portainer-notifier/internal/adapters/secrets/pass"
	"github.com/bnema/portainer-notifier/internal/ports"
)

const (
	SchemeEnv  = "env"
	SchemeFile = "file"
	SchemePass = "pass"
)

var ErrUnsupportedScheme = errors.New("unsupported secret reference scheme")

type lookup interface {
	Get(ctx context.Context, key string) (string, error)
}

type lookupFunc func(ctx context.Context, key string) (string, error)

func (f lookupFunc) Get(ctx context.Context, key string) (string, error) {
	return f(ctx, key)
}

// Resolver turns "scheme:key" references into secret values.
type Resolver struct {
	lookups map[string]lookup
}

var _ ports.SecretResolver = (*Resolver)(nil)

// NewResolver wires the env, file and pass backends. Relative file paths resolve against fileRoot.
func NewResolver(fileRoot string) *Resolver {
	return &Resolver{
		lookups: map[string]lookup{
			SchemeEnv:  lookupFunc(lookupEnv),
			SchemeFile: filestore.NewStore(fileRoot),
			SchemePass: passstore.NewStore(),
		},
	}
}

func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	scheme, key, ok := strings.Cut(strings.TrimSpace(ref), ":")
	if !ok || strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("invalid secret reference %q: want scheme:key", ref)
	}

	backend, ok := r.lookups[strings.ToLower(scheme)]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnsupportedScheme, scheme)
	}

	value, err := backend.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("resolve %s secret: %w", scheme, err)
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("secret reference %q resolved to an empty value", ref)
	}

	return value, nil
}

func lookupEnv(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	value, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("environment variable %s is not set", name)
	}

	return value, nil
}
