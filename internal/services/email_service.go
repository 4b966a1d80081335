package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	pkglogger "github.com/BradenHooton/marquee/pkg/logger"
)

// Mailer sends account emails
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, email, username string) error
}

// SESAPI is the subset of the SES client used here
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer sends emails using AWS SES
type SESMailer struct {
	client      SESAPI
	fromAddress string
	appURL      string
	logger      *slog.Logger
}

// NewSESMailer loads the default AWS config for region and creates a mailer
func NewSESMailer(ctx context.Context, region, fromAddress, appURL string, logger *slog.Logger) (*SESMailer, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewSESMailerWithClient(ses.NewFromConfig(cfg), fromAddress, appURL, logger), nil
}

func NewSESMailerWithClient(client SESAPI, fromAddress, appURL string, logger *slog.Logger) *SESMailer {
	return &SESMailer{
		client:      client,
		fromAddress: fromAddress,
		appURL:      appURL,
		logger:      logger,
	}
}

// SendWelcomeEmail greets a newly signed up user
func (m *SESMailer) SendWelcomeEmail(ctx context.Context, email, username string) error {
	browseLink := m.appURL + "/browse"

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <h1>Welcome, %s!</h1>
    <p>Your account is ready. Pick an avatar and start browsing trending movies and shows.</p>
    <p><a href="%s">Start browsing</a></p>
    <p style="color: #666; font-size: 12px;">This is an automated message. Please do not reply to this email.</p>
</body>
</html>
`, username, browseLink)

	textBody := fmt.Sprintf(`Welcome, %s!

Your account is ready. Pick an avatar and start browsing trending movies and shows:
%s

This is an automated message. Please do not reply to this email.
`, username, browseLink)

	input := &ses.SendEmailInput{
		Source: aws.String(m.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Welcome aboard"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		m.logger.Error("failed to send welcome email via SES",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info("welcome email sent",
		slog.String("email", pkglogger.SanitizedEmail(email)),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}
