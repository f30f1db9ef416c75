package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// TopicPublisher publishes messages to one SNS topic.
type TopicPublisher struct {
	client   *sns.Client
	topicARN string
}

// NewClient creates an SNS client, honouring a LocalStack endpoint when set.
func NewClient(awsCfg aws.Config, endpointURL string) *sns.Client {
	return sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if endpointURL != "" {
			o.BaseEndpoint = aws.String(endpointURL)
		}
	})
}

func NewTopicPublisher(client *sns.Client, topicARN string) *TopicPublisher {
	return &TopicPublisher{client: client, topicARN: topicARN}
}

// Publish sends message with the given subject. SNS limits subjects to 100 characters.
func (p *TopicPublisher) Publish(ctx context.Context, subject, message string) error {
	if len(subject) > 100 {
		subject = subject[:100]
	}
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
