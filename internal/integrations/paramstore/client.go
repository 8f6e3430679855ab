package paramstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"faq-bot/internal/corpus"
)

// ssmAPI is the minimal AWS SSM interface required by Client.
// *ssm.Client from aws-sdk-go-v2 satisfies this interface.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// defaultParamNames maps resource names to parameter names under the prefix.
var defaultParamNames = map[string]string{
	corpus.DefaultCorpusResource:  "faq-categorizer",
	corpus.DefaultAnswersResource: "question-answer",
}

// Client reads corpus resources stored as SSM parameters under a common
// prefix. It satisfies corpus.Source.
type Client struct {
	api    ssmAPI
	prefix string
}

// New creates a Client with the given SSM API implementation and parameter
// path prefix, e.g. "/faq-bot/prod".
func New(api ssmAPI, prefix string) (*Client, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return nil, errors.New("paramstore: parameter prefix must not be empty")
	}
	return &Client{api: api, prefix: prefix}, nil
}

// ParameterName returns the full parameter path backing a resource.
// Unknown resources map to their base name without extension.
func (c *Client) ParameterName(resource string) string {
	name, ok := defaultParamNames[resource]
	if !ok {
		base := path.Base(resource)
		name = strings.TrimSuffix(base, path.Ext(base))
	}
	return c.prefix + "/" + name
}

// Open returns the value of the parameter backing resource.
func (c *Client) Open(ctx context.Context, resource string) (io.ReadCloser, error) {
	if strings.TrimSpace(resource) == "" {
		return nil, errors.New("paramstore: resource name is required")
	}
	v, err := c.GetParameter(ctx, c.ParameterName(resource))
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(v)), nil
}

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
		return "", fmt.Errorf("paramstore: parameter %q missing value", name)
	}
	return *out.Parameter.Value, nil
}

var _ corpus.Source = (*Client)(nil)
