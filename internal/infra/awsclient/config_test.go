package awsclient

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/fiapx/fiapx-video-events/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresRegion(t *testing.T) {
	_, err := Load(context.Background(), Config{})
	assert.ErrorIs(t, err, messaging.ErrMissingConfig)
}

func TestLoadStaticCredentials(t *testing.T) {
	cfg, err := Load(context.Background(), Config{
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.Region)

	creds, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
}

func TestBaseEndpoint(t *testing.T) {
	assert.Nil(t, Config{}.BaseEndpoint())
	assert.Equal(t, "http://localhost:4566", aws.ToString(Config{Endpoint: "http://localhost:4566"}.BaseEndpoint()))
}
