package config

import (
	"context"
	"fmt"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/labstack/gommon/log"
	"os"
	"strings"
)

const (
	envVarsPrefix = "/promptlib/prod/"
	ssmRegion     = "us-east-2"
)

type parametersByPathAPI interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadProdEnv exports every SSM parameter under /promptlib/prod/ as an
// environment variable named after the parameter's remaining path.
func LoadProdEnv() error {
	ctx := context.Background()
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(ssmRegion))
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %w", err)
	}

	params, err := fetchParameters(ctx, ssm.NewFromConfig(cfg), envVarsPrefix)
	if err != nil {
		return fmt.Errorf("unable to load prod environment: %w", err)
	}

	for key, value := range params {
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("unable to set environment variable: %w", err)
		}
	}
	log.Debugf("loaded %d prod environment variables", len(params))
	return nil
}

func fetchParameters(ctx context.Context, client parametersByPathAPI, prefix string) (map[string]string, error) {
	params := map[string]string{}
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		WithDecryption: aws.Bool(true),
		Recursive:      aws.Bool(true),
	})

	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		for _, param := range out.Parameters {
			key := strings.TrimPrefix(aws.ToString(param.Name), prefix)
			if key == "" {
				continue
			}
			params[key] = aws.ToString(param.Value)
		}
	}
	return params, nil
}
