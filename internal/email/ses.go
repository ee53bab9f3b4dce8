package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESConfig holds the configuration for the SES email sender.
type SESConfig struct {
	Region    string
	AccessKey string
	SecretKey string
}

// sesAPI is the subset of *sesv2.Client the sender uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender implements Sender using Amazon SES v2.
type SESSender struct {
	client sesAPI
}

// NewSESSender creates an SESSender. Static keys are used when both are
// set, otherwise the default AWS credential chain applies.
func NewSESSender(ctx context.Context, cfg SESConfig) (*SESSender, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ses: loading AWS config: %w", err)
	}

	return &SESSender{client: sesv2.NewFromConfig(awsCfg)}, nil
}

// Send delivers the message through SES SendEmail.
func (s *SESSender) Send(ctx context.Context, msg Message) (string, error) {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination:      &types.Destination{ToAddresses: msg.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		var badRequest *types.BadRequestException
		var rejected *types.MessageRejected
		var tooMany *types.TooManyRequestsException
		switch {
		case errors.As(err, &badRequest):
			return "", &ProviderError{Provider: "ses", StatusCode: http.StatusBadRequest, Invalid: true, Message: badRequest.ErrorMessage()}
		case errors.As(err, &rejected):
			return "", &ProviderError{Provider: "ses", StatusCode: http.StatusBadRequest, Invalid: true, Message: rejected.ErrorMessage()}
		case errors.As(err, &tooMany):
			return "", &ProviderError{Provider: "ses", StatusCode: http.StatusTooManyRequests, Message: tooMany.ErrorMessage()}
		}
		return "", fmt.Errorf("ses: failed to send email: %w", err)
	}

	return aws.ToString(out.MessageId), nil
}
