package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	gocache "github.com/patrickmn/go-cache"
)

// SSMParameters implements ParameterStore over AWS Systems Manager with
// decrypt-on-read. Values are cached in memory so repeated reads within one
// process do not hit the API again.
type SSMParameters struct {
	client *ssm.Client
	cache  *gocache.Cache
}

// NewSSMParameters creates a parameter store with a 5-minute value cache.
func NewSSMParameters(client *ssm.Client) *SSMParameters {
	return &SSMParameters{
		client: client,
		cache:  gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Get retrieves and decrypts a parameter value.
func (p *SSMParameters) Get(ctx context.Context, name string) (string, error) {
	if val, found := p.cache.Get(name); found {
		return val.(string), nil
	}

	out, err := p.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("get parameter %s: %w", name, err)
	}

	value := aws.ToString(out.Parameter.Value)
	p.cache.Set(name, value, gocache.DefaultExpiration)
	return value, nil
}
