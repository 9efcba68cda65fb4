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
//	-a server address in format [host]:[port]
//	-d database DSN
//	-c/-config json file path with configs
//	-token-sign-key caller token verification key
//	-token-issuer expected caller token issuer
//	-request-timeout inbound request timeout (e.g., "90s")
//	-poll-interval pause between provider poll attempts (e.g., "5s")
//	-poll-attempts maximum provider poll attempts per search
//	-provider-timeout per-call upstream timeout (e.g., "15s")
//	-default-currency currency used when a request names none
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var jsonConfigPath string
	var tokenSignKey string
	var tokenIssuer string
	var requestTimeout time.Duration
	var pollInterval time.Duration
	var pollAttempts int
	var providerTimeout time.Duration
	var defaultCurrency string

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Caller token verification key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Expected caller token issuer")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 90s)")
	flag.DurationVar(&pollInterval, "poll-interval", 0, "Pause between provider polls (e.g., 5s)")
	flag.IntVar(&pollAttempts, "poll-attempts", 0, "Maximum provider poll attempts per search")
	flag.DurationVar(&providerTimeout, "provider-timeout", 0, "Per-call upstream timeout (e.g., 15s)")
	flag.StringVar(&defaultCurrency, "default-currency", "", "Currency used when a request names none")

	flag.Parse()

	return &StructuredConfig{
		Auth: Auth{
			TokenSignKey: tokenSignKey,
			TokenIssuer:  tokenIssuer,
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Search: Search{
			PollInterval:    pollInterval,
			PollAttempts:    pollAttempts,
			ProviderTimeout: providerTimeout,
			DefaultCurrency: defaultCurrency,
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
