package docker

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/docker/client"
)

// Config sisältää Docker client konfiguraation
type Config struct {
	Host      string
	TLSVerify bool
	CertPath  string
	Timeout   time.Duration
}

// DefaultConfig reads DOCKER_HOST, DOCKER_TLS_VERIFY and DOCKER_CERT_PATH
func DefaultConfig() Config {
	cfg := Config{
		Host:    "unix:///var/run/docker.sock",
		Timeout: 5 * time.Second,
	}
	if host := os.Getenv("DOCKER_HOST"); host != "" {
		cfg.Host = host
	}
	if os.Getenv("DOCKER_TLS_VERIFY") != "" {
		cfg.TLSVerify = true
		cfg.CertPath = os.Getenv("DOCKER_CERT_PATH")
	}
	return cfg
}

// Client wrappaa Docker API clientin
type Client struct {
	cli     *client.Client
	timeout time.Duration
}

// NewClient luo uuden Docker clientin ja tarkistaa yhteyden pingillä
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	opts := []client.Opt{
		client.WithHost(cfg.Host),
		client.WithAPIVersionNegotiation(),
	}

	if cfg.TLSVerify {
		opts = append(opts, client.WithTLSClientConfig(
			filepath.Join(cfg.CertPath, "ca.pem"),
			filepath.Join(cfg.CertPath, "cert.pem"),
			filepath.Join(cfg.CertPath, "key.pem"),
		))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if _, err := cli.Ping(pingCtx); err != nil {
		cli.Close()
		return nil, err
	}

	return &Client{
		cli:     cli,
		timeout: cfg.Timeout,
	}, nil
}

// Close sulkee yhteyden
func (c *Client) Close() error {
	if c.cli != nil {
		return c.cli.Close()
	}
	return nil
}
