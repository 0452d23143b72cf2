package config

import (
	"encoding/json"
	"os"
	"strconv"
)

type Config struct {
	Server       ServerConfig       `json:"server"`
	API          APIConfig          `json:"api"`
	Till         TillConfig         `json:"till"`
	Payment      PaymentConfig      `json:"payment"`
	Connectivity ConnectivityConfig `json:"connectivity"`
	Storage      StorageConfig      `json:"storage"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type APIConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type TillConfig struct {
	// VATRate is the inclusive VAT rate, e.g. "0.19".
	VATRate string `json:"vat_rate"`
	// GenericCompanyID bills sales with no explicit company.
	GenericCompanyID string `json:"generic_company_id"`
	ReturnURL        string `json:"return_url"`
}

type PaymentConfig struct {
	PollIntervalSeconds  int `json:"poll_interval_seconds"`
	PollTimeoutSeconds   int `json:"poll_timeout_seconds"`
	SuccessDisplayMillis int `json:"success_display_millis"`
}

type ConnectivityConfig struct {
	ProbeIntervalSeconds int `json:"probe_interval_seconds"`
}

type StorageConfig struct {
	Path string `json:"path"`
}

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	config.applyDefaults()
	config.applyEnvOverrides()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 7070
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 10
	}
	if c.Till.VATRate == "" {
		c.Till.VATRate = "0.19"
	}
	if c.Payment.PollIntervalSeconds == 0 {
		c.Payment.PollIntervalSeconds = 5
	}
	if c.Payment.PollTimeoutSeconds == 0 {
		c.Payment.PollTimeoutSeconds = 300
	}
	if c.Payment.SuccessDisplayMillis == 0 {
		c.Payment.SuccessDisplayMillis = 2000
	}
	if c.Connectivity.ProbeIntervalSeconds == 0 {
		c.Connectivity.ProbeIntervalSeconds = 15
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "till.db"
	}
}

// Environment wins over the file so the same build can point at different
// backends per device.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TILL_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("TILL_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("TILL_GENERIC_COMPANY_ID"); v != "" {
		c.Till.GenericCompanyID = v
	}
	if v := os.Getenv("TILL_VAT_RATE"); v != "" {
		c.Till.VATRate = v
	}
	if v := os.Getenv("TILL_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}
