package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sirupsen/logrus"
)

// EmailSender is the part of the SES v2 client the email service uses
type EmailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client    EmailSender
	fromEmail string
	fromName  string
	enabled   bool
	log       logrus.FieldLogger
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service that skips every send.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName string, log logrus.FieldLogger) (*EmailService, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if fromEmail == "" {
		log.Info("Email service disabled: EMAIL_FROM not configured")
		return &EmailService{log: log}, nil
	}

	opts := []func(*config.LoadOptions) error{}
	if awsRegion != "" {
		opts = append(opts, config.WithRegion(awsRegion))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.WithFields(logrus.Fields{"from": fromEmail, "region": cfg.Region}).Info("Email service enabled")
	return NewEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, fromName, log), nil
}

// NewEmailServiceWithClient creates an enabled email service around client
func NewEmailServiceWithClient(client EmailSender, fromEmail, fromName string, log logrus.FieldLogger) *EmailService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   client != nil && fromEmail != "",
		log:       log,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s != nil && s.enabled
}

// Send delivers one message with an HTML and a plain-text body
func (s *EmailService) Send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	if !s.IsEnabled() {
		if s != nil {
			s.log.WithField("to", toEmail).Debug("Skipping email send (service disabled)")
		}
		return nil
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	fields := logrus.Fields{"to": toEmail, "subject": subject}
	if result != nil && result.MessageId != nil {
		fields["message_id"] = *result.MessageId
	}
	s.log.WithFields(fields).Info("Email sent successfully")
	return nil
}
