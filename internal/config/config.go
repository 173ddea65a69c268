// Package config loads printerkit settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// IPP endpoint used on non-windows builds.
	IPPHost           string
	IPPPort           int
	IPPUseTLS         bool
	IPPUser           string
	IPPPassword       string
	IPPInsecureVerify bool

	// Submission history ledger; empty path disables it.
	HistoryDBPath  string
	HistoryMaxRows int

	ErrorLogPath string
	PageLogPath  string
	MaxLogSize   int64

	SNMPCommunity string
	SNMPTimeout   time.Duration

	DiscoveryTimeout time.Duration

	// Software raster defaults for devices that report no geometry.
	DefaultPageWidthMM  float64
	DefaultPageHeightMM float64
	DefaultDPI          int
}

func Load() Config {
	dataDir := getenv("PRINTERKIT_DATA_DIR", "data")
	return Config{
		IPPHost:           getenv("PRINTERKIT_IPP_HOST", "localhost"),
		IPPPort:           getenvInt("PRINTERKIT_IPP_PORT", 631),
		IPPUseTLS:         getenvBool("PRINTERKIT_IPP_TLS", false),
		IPPUser:           getenv("PRINTERKIT_IPP_USER", ""),
		IPPPassword:       getenv("PRINTERKIT_IPP_PASSWORD", ""),
		IPPInsecureVerify: getenvBool("PRINTERKIT_IPP_INSECURE", false),

		HistoryDBPath:  getenv("PRINTERKIT_HISTORY_DB", ""),
		HistoryMaxRows: getenvInt("PRINTERKIT_HISTORY_MAX_ROWS", 10000),

		ErrorLogPath: getenv("PRINTERKIT_ERROR_LOG", "stderr"),
		PageLogPath:  getenv("PRINTERKIT_PAGE_LOG", filepath.Join(dataDir, "page_log")),
		MaxLogSize:   getenvInt64("PRINTERKIT_MAX_LOG_SIZE", 1<<20),

		SNMPCommunity: getenv("PRINTERKIT_SNMP_COMMUNITY", "public"),
		SNMPTimeout:   getenvDuration("PRINTERKIT_SNMP_TIMEOUT", 2*time.Second),

		DiscoveryTimeout: getenvDuration("PRINTERKIT_DISCOVERY_TIMEOUT", 2*time.Second),

		DefaultPageWidthMM:  getenvFloat("PRINTERKIT_DEFAULT_PAGE_WIDTH_MM", 210),
		DefaultPageHeightMM: getenvFloat("PRINTERKIT_DEFAULT_PAGE_HEIGHT_MM", 297),
		DefaultDPI:          getenvInt("PRINTERKIT_DEFAULT_DPI", 300),
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getenvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvInt64(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
