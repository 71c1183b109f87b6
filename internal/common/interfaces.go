package common

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/storage"
)

type GCSObjectReaderInterface interface {
	io.ReadCloser
}
type GCSObjectWriterInterface interface {
	io.WriteCloser
}

// GCSClientInterface is the slice of Cloud Storage the services use. Objects
// written through NewObjectWriter only become visible once the writer is
// closed without error.
type GCSClientInterface interface {
	NewObjectWriter(ctx context.Context, bucket, object string) GCSObjectWriterInterface
	NewObjectReader(ctx context.Context, bucket, object string) (GCSObjectReaderInterface, error)
}

type PubSubClientInterface interface {
	PublishMessage(ctx context.Context, topicID string, msg *pubsub.Message) (string, error)
}

// MessageInterface abstracts the Pub/Sub message for testing.
type MessageInterface interface {
	Ack()
	Nack()
	GetData() []byte
}

// WriteObject streams fn's output into a new object and commits it. The object
// is only committed when both fn and the final Close succeed.
func WriteObject(ctx context.Context, client GCSClientInterface, bucket, object string, fn func(w io.Writer) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wc := client.NewObjectWriter(ctx, bucket, object)
	if err := fn(wc); err != nil {
		// the deferred cancel aborts the unclosed upload
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("commit object %s: %w", object, err)
	}
	return nil
}

type RealGCSClient struct {
	Client *storage.Client
}

func (c *RealGCSClient) NewObjectWriter(ctx context.Context, bucket, object string) GCSObjectWriterInterface {
	return c.Client.Bucket(bucket).Object(object).NewWriter(ctx)
}

func (c *RealGCSClient) NewObjectReader(ctx context.Context, bucket, object string) (GCSObjectReaderInterface, error) {
	return c.Client.Bucket(bucket).Object(object).NewReader(ctx)
}

type RealPubSubClient struct {
	Client *pubsub.Client
}

// PublishMessage blocks until Pub/Sub returns the server-generated ID. A new
// publisher per call keeps messages from being batched.
func (c *RealPubSubClient) PublishMessage(ctx context.Context, topicID string, msg *pubsub.Message) (string, error) {
	publisher := c.Client.Publisher(topicID)
	defer publisher.Stop()
	result := publisher.Publish(ctx, msg)
	return result.Get(ctx)
}

// RealMessage wraps the concrete pubsub.Message.
type RealMessage struct {
	Msg *pubsub.Message
}

func (r *RealMessage) Ack() {
	r.Msg.Ack()
}

func (r *RealMessage) Nack() {
	r.Msg.Nack()
}

func (r *RealMessage) GetData() []byte {
	return r.Msg.Data
}
