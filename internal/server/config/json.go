package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/userservice/internal/flagx"
)

// JsonConfig is the on-disk shape of the optional configuration file.
// Pointer fields distinguish "absent" from a zero value so that only keys
// present in the file override earlier layers.
type JsonConfig struct {
	EndpointAddrGRPC *string   `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP *string   `json:"endpoint_addr_http"`
	DatabaseDSN      *string   `json:"database_dsn"`
	JWTSecret        *string   `json:"jwt_secret"`
	JWTExpiration    *Duration `json:"jwt_expiration"`
	BcryptCost       *int      `json:"bcrypt_cost"`
	LogBackend       *string   `json:"log_backend"`
	LogLevel         *string   `json:"log_level"`
}

// parseJson loads the file named by -c/-config in args, if any, and copies
// the keys it sets into config. Unreadable files or invalid JSON panic.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.JWTSecret, c.JWTSecret)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogLevel, c.LogLevel)
	if c.JWTExpiration != nil {
		config.JWTExpiration = c.JWTExpiration.Duration
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
