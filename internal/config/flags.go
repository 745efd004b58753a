package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a relay listen address in format [host]:[port]
//	-d change log database DSN
//	-c/-config json file path with configs
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-token-duration token duration (e.g., "24h")
//	-request-timeout inbound request timeout (e.g., "30s", "1m")
//	-relay-address relay base URL for the agent
//	-relay-timeout outbound request timeout
//	-outbox-path outbox database file path
//	-device-id device identifier
//	-company-id company identifier
//	-batch-size push/pull batch size
//	-sync-interval periodic sync interval (e.g., "30s")
//	-purge-interval relay purge interval (e.g., "1h")
//	-retention-days relay retention floor in days
//	-region relay region label
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var jsonConfigPath string
	var tokenSignKey string
	var tokenIssuer string
	var tokenDuration time.Duration
	var requestTimeout time.Duration
	var relayAddress string
	var relayTimeout time.Duration
	var outboxPath string
	var deviceID string
	var companyID string
	var batchSize int
	var syncInterval time.Duration
	var purgeInterval time.Duration
	var retentionDays int
	var region string

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 24h)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.StringVar(&relayAddress, "relay-address", "", "Relay base URL")
	flag.DurationVar(&relayTimeout, "relay-timeout", 0, "Relay request timeout")
	flag.StringVar(&outboxPath, "outbox-path", "", "Outbox database file path")
	flag.StringVar(&deviceID, "device-id", "", "Device identifier")
	flag.StringVar(&companyID, "company-id", "", "Company identifier")
	flag.IntVar(&batchSize, "batch-size", 0, "Push/pull batch size")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval (e.g., 30s)")
	flag.DurationVar(&purgeInterval, "purge-interval", 0, "Relay purge interval (e.g., 1h)")
	flag.IntVar(&retentionDays, "retention-days", 0, "Relay retention floor in days")
	flag.StringVar(&region, "region", "", "Relay region label")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			TokenSignKey:  tokenSignKey,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
			Region:        region,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			Outbox: Outbox{
				Path: outboxPath,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Relay: Relay{
			BaseURL:        relayAddress,
			RequestTimeout: relayTimeout,
		},
		Sync: Sync{
			DeviceID:  deviceID,
			CompanyID: companyID,
			BatchSize: batchSize,
		},
		Workers: Workers{
			SyncInterval:  syncInterval,
			PurgeInterval: purgeInterval,
			RetentionDays: retentionDays,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
