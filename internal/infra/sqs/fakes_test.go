package sqs

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []*awssqs.SendMessageInput
	receives []*awssqs.ReceiveMessageInput
	deleted  []string
	batches  [][]types.Message
	sendErr  error
	received chan struct{}
}

func newFakeAPI(batches ...[]types.Message) *fakeAPI {
	return &fakeAPI{batches: batches, received: make(chan struct{}, 16)}
}

func (f *fakeAPI) SendMessage(_ context.Context, in *awssqs.SendMessageInput, _ ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, in)
	return &awssqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func (f *fakeAPI) ReceiveMessage(ctx context.Context, in *awssqs.ReceiveMessageInput, _ ...func(*awssqs.Options)) (*awssqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	f.receives = append(f.receives, in)
	var batch []types.Message
	if len(f.batches) > 0 {
		batch, f.batches = f.batches[0], f.batches[1:]
	}
	f.mu.Unlock()

	select {
	case f.received <- struct{}{}:
	default:
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return &awssqs.ReceiveMessageOutput{Messages: batch}, nil
}

func (f *fakeAPI) DeleteMessage(ctx context.Context, in *awssqs.DeleteMessageInput, _ ...func(*awssqs.Options)) (*awssqs.DeleteMessageOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &awssqs.DeleteMessageOutput{}, nil
}

func (f *fakeAPI) deletedHandles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type fakeFactory struct {
	mu    sync.Mutex
	api   API
	err   error
	calls int
}

func (f *fakeFactory) newClient(context.Context, ClientConfig) (API, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.api, nil
}

func message(handle, body string) types.Message {
	return types.Message{
		MessageId:     aws.String("id-" + handle),
		ReceiptHandle: aws.String(handle),
		Body:          aws.String(body),
	}
}
