package cache

import (
	"crypto/tls"

	"collabhub/internal/config"

	"github.com/valkey-io/valkey-go"
)

// New builds the valkey client from the environment. The client is
// constructed once in main and handed to the components that need it.
func New(env config.EnvVariables) (valkey.Client, error) {
	options := valkey.ClientOption{
		InitAddress: []string{env.ValkeyHost + ":" + env.ValkeyPort},
		Password:    env.ValkeyPassword,
		Username:    env.ValkeyUsername,
	}

	if env.ValkeyIsSsl {
		options.TLSConfig = &tls.Config{
			ServerName: env.ValkeyHost,
		}
	}

	return valkey.NewClient(options)
}
