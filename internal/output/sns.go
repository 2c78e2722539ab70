// internal/output/sns.go
package output

import (
	"context"

	apperrors "kiosk-dialog/internal/common/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSService is the subset of the SNS client the sink needs.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSink publishes each reply to a topic, for example one feeding a speech synthesizer.
type SNSSink struct {
	client   SNSService
	topicARN string
	source   string
}

func NewSNSSink(client SNSService, topicARN, source string) *SNSSink {
	return &SNSSink{client: client, topicARN: topicARN, source: source}
}

func (s *SNSSink) Emit(ctx context.Context, reply string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(reply),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"source": {
				DataType:    aws.String("String"),
				StringValue: aws.String(s.source),
			},
		},
	})
	if err != nil {
		return apperrors.NewOutputSinkFailedError("sns", err)
	}
	return nil
}
