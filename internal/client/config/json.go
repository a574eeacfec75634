package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/userservice/internal/flagx"
)

// JsonConfig is the on-disk shape. Absent keys leave the current value.
type JsonConfig struct {
	ServerEndpointAddr *string `json:"server_endpoint_addr"`
	SessionDB          *string `json:"session_db"`
	RequestTimeout     *string `json:"request_timeout"`
}

// parseJson overlays cfg with the JSON file named by -c/-config, if any.
// It panics on read, syntax or duration errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != nil {
		cfg.ServerEndpointAddr = *jc.ServerEndpointAddr
	}
	if jc.SessionDB != nil {
		cfg.SessionDB = *jc.SessionDB
	}
	if jc.RequestTimeout != nil {
		d, err := time.ParseDuration(*jc.RequestTimeout)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
}
