package main

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type declarantConfig struct {
	TaxID     string `yaml:"tax_id"`
	LegalName string `yaml:"legal_name"`
	Address   string `yaml:"address"`
	Commune   string `yaml:"commune"`
	Email     string `yaml:"email"`
	Phone     string `yaml:"phone"`
}

type config struct {
	DatabaseURL string          `yaml:"database_url"`
	HTTPAddr    string          `yaml:"http_addr"`
	JWTSecret   string          `yaml:"jwt_secret"`
	DocType     string          `yaml:"doc_type"`
	Declarant   declarantConfig `yaml:"declarant"`
}

// loadConfig merges a yaml config file (TAXFILING_CONFIG) over env defaults.
func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		DocType:     getenvDefault("DOC_TYPE", "DJ"),
		Declarant: declarantConfig{
			TaxID:     getenvDefault("DECLARANT_TAX_ID", ""),
			LegalName: getenvDefault("DECLARANT_NAME", ""),
			Address:   getenvDefault("DECLARANT_ADDRESS", ""),
			Commune:   getenvDefault("DECLARANT_COMMUNE", ""),
			Email:     getenvDefault("DECLARANT_EMAIL", ""),
			Phone:     getenvDefault("DECLARANT_PHONE", ""),
		},
	}

	if path := os.Getenv("TAXFILING_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("config read error: %v", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("config parse error: %v", err)
		}
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
