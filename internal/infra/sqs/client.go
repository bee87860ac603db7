package sqs

import (
	"context"

	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/fiapx/fiapx-video-events/internal/infra/awsclient"
)

const transportName = "sqs"

// API is the subset of *sqs.Client used by the publisher and consumer.
type API interface {
	SendMessage(ctx context.Context, params *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *awssqs.ReceiveMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *awssqs.DeleteMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.DeleteMessageOutput, error)
}

type ClientConfig = awsclient.Config

type clientFactory func(ctx context.Context, cfg ClientConfig) (API, error)

func NewClient(ctx context.Context, cfg ClientConfig) (API, error) {
	awsCfg, err := awsclient.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return awssqs.NewFromConfig(awsCfg, func(o *awssqs.Options) {
		o.BaseEndpoint = cfg.BaseEndpoint()
	}), nil
}
