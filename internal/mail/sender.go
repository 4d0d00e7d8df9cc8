package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Message is an outbound notification email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	ReplyTo string
}

// Sender delivers notification emails.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SESSender sends emails using AWS SES.
type SESSender struct {
	client *ses.Client
	logger *slog.Logger
}

// NewSESSender creates an SES-backed sender for the given region.
func NewSESSender(ctx context.Context, region string, logger *slog.Logger) (*SESSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESSender{
		client: ses.NewFromConfig(cfg),
		logger: logger,
	}, nil
}

// Send delivers msg via SES. Provider errors are returned wrapped; callers
// decide what, if anything, reaches the client.
func (s *SESSender) Send(ctx context.Context, msg Message) error {
	input := &ses.SendEmailInput{
		Source: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(msg.Subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(msg.HTML),
				},
			},
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("notification email sent",
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}
