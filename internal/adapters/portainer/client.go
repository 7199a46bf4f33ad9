package portainer

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/bnema/portainer-notifier/internal/ports"
	containertypes "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

type AuthScheme string

const (
	AuthSchemeAPIKey AuthScheme = "api_key"
	AuthSchemeBearer AuthScheme = "bearer"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20
	userAgent       = "pn/portainer"
)

type Config struct {
	URL                string
	Token              string
	EndpointID         int
	AuthScheme         AuthScheme
	InsecureSkipVerify bool
	Timeout            time.Duration
}

type containerLister interface {
	ContainerList(ctx context.Context, options containertypes.ListOptions) ([]containertypes.Summary, error)
	Close() error
}

// Client reads stacks from the Portainer API and containers from the Docker API that
// Portainer proxies for the configured environment.
type Client struct {
	baseURL    *url.URL
	endpointID int
	headers    map[string]string
	httpClient *http.Client
	docker     containerLister
}

var _ ports.Orchestrator = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	baseURL, err := parseBaseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("portainer token is empty")
	}
	if cfg.EndpointID <= 0 {
		return nil, fmt.Errorf("invalid portainer endpoint id %d", cfg.EndpointID)
	}

	headers, err := authHeaders(cfg.AuthScheme, cfg.Token)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed Portainer certificates
	}
	httpClient := &http.Client{Transport: transport, Timeout: timeout}

	docker, err := client.NewClientWithOpts(
		client.WithHost(dockerProxyHost(baseURL, cfg.EndpointID)),
		client.WithScheme(baseURL.Scheme),
		client.WithHTTPClient(&http.Client{Transport: transport.Clone(), Timeout: timeout}),
		client.WithHTTPHeaders(headers),
		client.WithUserAgent(userAgent),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create docker proxy client: %w", err)
	}

	return &Client{
		baseURL:    baseURL,
		endpointID: cfg.EndpointID,
		headers:    headers,
		httpClient: httpClient,
		docker:     docker,
	}, nil
}

func (c *Client) Close() error {
	return c.docker.Close()
}

type stackPayload struct {
	ID         int    `json:"Id"`
	Name       string `json:"Name"`
	EndpointID int    `json:"EndpointId"`
}

// ListStacks returns the stacks deployed to the configured environment, in API order.
func (c *Client) ListStacks(ctx context.Context) ([]domain.Stack, error) {
	endpoint := c.baseURL.JoinPath("api", "stacks")

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, &domain.TransportError{Op: "list stacks", Err: fmt.Errorf("create request: %w", err)}
	}
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", userAgent)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, &domain.TransportError{Op: "list stacks", Err: fmt.Errorf("perform request: %w", err)}
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, &domain.TransportError{Op: "list stacks", StatusCode: response.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &domain.TransportError{
			Op:         "list stacks",
			StatusCode: response.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(body))),
		}
	}

	var payload []stackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &domain.TransportError{Op: "list stacks", StatusCode: response.StatusCode, Err: fmt.Errorf("decode payload: %w", err)}
	}

	stacks := make([]domain.Stack, 0, len(payload))
	for _, entry := range payload {
		if entry.EndpointID != 0 && entry.EndpointID != c.endpointID {
			continue
		}
		stacks = append(stacks, domain.Stack{
			ID:   domain.StackID(strconv.Itoa(entry.ID)),
			Name: entry.Name,
		})
	}

	return stacks, nil
}

// ListContainers returns every container of the environment, stopped ones included.
func (c *Client) ListContainers(ctx context.Context) ([]domain.Container, error) {
	summaries, err := c.docker.ContainerList(ctx, containertypes.ListOptions{All: true})
	if err != nil {
		return nil, &domain.TransportError{Op: "list containers", Err: err}
	}

	containers := make([]domain.Container, 0, len(summaries))
	for _, summary := range summaries {
		containers = append(containers, domain.NewContainer(summary.Names, string(summary.State), summary.Labels))
	}

	return containers, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("portainer url is empty")
	}

	parsed, err := url.Parse(strings.TrimRight(trimmed, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse portainer url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("portainer url %q must use http or https", raw)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("portainer url %q has no host", raw)
	}

	return parsed, nil
}

// dockerProxyHost builds the docker client host for Portainer's Docker API proxy. The docker
// client only keeps a base path for tcp hosts; the real scheme is set with client.WithScheme.
func dockerProxyHost(baseURL *url.URL, endpointID int) string {
	basePath := path.Join("/", baseURL.Path, "api", "endpoints", strconv.Itoa(endpointID), "docker")
	return "tcp://" + baseURL.Host + basePath
}

func authHeaders(scheme AuthScheme, token string) (map[string]string, error) {
	switch scheme {
	case "", AuthSchemeAPIKey:
		return map[string]string{"X-API-Key": token}, nil
	case AuthSchemeBearer:
		return map[string]string{"Authorization": "Bearer " + token}, nil
	default:
		return nil, fmt.Errorf("unsupported portainer auth scheme %q", scheme)
	}
}
