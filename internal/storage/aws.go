package storage

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Clients bundles the AWS service clients used by the pipeline. They are
// constructed once per process and passed into components explicitly.
type Clients struct {
	S3       *s3.Client
	DynamoDB *dynamodb.Client
	SSM      *ssm.Client
}

// NewClients loads the default AWS configuration chain and constructs all
// service clients from it.
func NewClients(ctx context.Context) (*Clients, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Clients{
		S3:       s3.NewFromConfig(cfg),
		DynamoDB: dynamodb.NewFromConfig(cfg),
		SSM:      ssm.NewFromConfig(cfg),
	}, nil
}
