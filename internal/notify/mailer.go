// Package notify sends owner-facing messages through AWS SES and SNS.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	awsclient "business-directory/internal/common/aws"
	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/logger"
	"business-directory/internal/common/validation"
	"business-directory/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

var (
	ErrInvalidRecipient = errors.New("INVALID_RECIPIENT")
	ErrDisabled         = errors.New("NOTIFICATIONS_DISABLED")
)

type SESMailer struct {
	client  awsclient.EmailAPI
	sender  string
	enabled bool
	logger  logger.Logger
}

func NewSESMailer(client awsclient.EmailAPI, sender string, enabled bool, log logger.Logger) *SESMailer {
	return &SESMailer{client: client, sender: sender, enabled: enabled, logger: logger.ForComponent(log, "ses-mailer")}
}

// SendWelcome mails the owner a confirmation for a saved listing and
// returns the SES message id.
func (m *SESMailer) SendWelcome(ctx context.Context, saved *models.SavedRecord) (string, error) {
	if !m.enabled {
		return "", ErrDisabled
	}
	to := strings.TrimSpace(saved.Record.OwnerEmail)
	if !validation.ValidateEmail(to) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecipient, to)
	}

	subject := fmt.Sprintf("Welcome to the directory, %s", saved.Record.BusinessName)
	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(m.sender),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(welcomeText(saved)), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return "", apperrors.NewNotificationSendFailedError("email", err)
	}

	messageID := aws.ToString(out.MessageId)
	m.logger.Info("welcome email sent", map[string]interface{}{
		"listingId": saved.ID,
		"messageId": messageID,
	})
	return messageID, nil
}

func welcomeText(saved *models.SavedRecord) string {
	var b strings.Builder
	name := saved.Record.OwnerName
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "%s is now listed in the directory on the %s plan.\n", saved.Record.BusinessName, saved.Plan)
	if len(saved.Record.Services) > 0 {
		fmt.Fprintf(&b, "Services: %s\n", strings.Join(saved.Record.Services, ", "))
	}
	fmt.Fprintf(&b, "\nListing reference: %s\n", saved.ID)
	return b.String()
}
