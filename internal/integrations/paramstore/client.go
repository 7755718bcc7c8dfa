package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ssmAPI is the slice of the SSM client used here; *ssm.Client satisfies it.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// endpointPayload is the JSON form an endpoint parameter may take.
type endpointPayload struct {
	URL string `json:"url"`
}

// Client reads query service settings from AWS SSM Parameter Store.
type Client struct {
	api ssmAPI
}

func New(api ssmAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	return &Client{api: api}, nil
}

// GetParameter returns the decrypted value of the named parameter.
func (c *Client) GetParameter(ctx context.Context, name string) (string, error) {
	if c.api == nil {
		return "", errors.New("paramstore: client not initialized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: name is required")
	}

	withDecryption := true
	out, err := c.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		return "", fmt.Errorf("paramstore: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", errors.New("paramstore: parameter missing value")
	}
	return *out.Parameter.Value, nil
}

// LookupEndpoint reads a query service URL stored either as a plain string or
// as JSON {"url": "..."}.
func (c *Client) LookupEndpoint(ctx context.Context, name string) (string, error) {
	raw, err := c.GetParameter(ctx, name)
	if err != nil {
		return "", err
	}
	return parseEndpoint(raw)
}

func parseEndpoint(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if strings.HasPrefix(value, "{") {
		var p endpointPayload
		if err := json.Unmarshal([]byte(value), &p); err != nil {
			return "", fmt.Errorf("paramstore: unmarshal endpoint value as JSON: %w", err)
		}
		value = strings.TrimSpace(p.URL)
	}
	if value == "" {
		return "", errors.New("paramstore: endpoint is empty")
	}
	u, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("paramstore: parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("paramstore: endpoint %q must be an http or https URL", value)
	}
	return value, nil
}
