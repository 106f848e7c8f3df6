// internal/notify/alerter.go
package notify

import (
	"context"
	"fmt"
	"strings"

	awsclient "business-directory/internal/common/aws"
	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/logger"
	"business-directory/internal/common/validation"
	"business-directory/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSAlerter tells owners about new leads. With a phone number it sends an
// SMS, otherwise it publishes to the lead topic.
type SNSAlerter struct {
	client     awsclient.PublishAPI
	topicARN   string
	smsEnabled bool
	logger     logger.Logger
}

func NewSNSAlerter(client awsclient.PublishAPI, topicARN string, smsEnabled bool, log logger.Logger) *SNSAlerter {
	return &SNSAlerter{client: client, topicARN: topicARN, smsEnabled: smsEnabled, logger: logger.ForComponent(log, "sns-alerter")}
}

func (a *SNSAlerter) NotifyLead(ctx context.Context, phone string, lead models.Lead) error {
	input := &sns.PublishInput{
		Message: aws.String(leadText(lead)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"listingId": {DataType: aws.String("String"), StringValue: aws.String(lead.ListingID)},
		},
	}

	phone = strings.TrimSpace(phone)
	switch {
	case a.smsEnabled && phone != "":
		if !validation.ValidatePhone(phone) {
			return fmt.Errorf("%w: %q", ErrInvalidRecipient, phone)
		}
		input.PhoneNumber = aws.String(phone)
	case a.topicARN != "":
		input.TopicArn = aws.String(a.topicARN)
	default:
		return ErrDisabled
	}

	out, err := a.client.Publish(ctx, input)
	if err != nil {
		return apperrors.NewNotificationSendFailedError("sns", err)
	}

	a.logger.Info("lead alert published", map[string]interface{}{
		"listingId": lead.ListingID,
		"messageId": aws.ToString(out.MessageId),
		"sms":       input.PhoneNumber != nil,
	})
	return nil
}

func leadText(lead models.Lead) string {
	msg := fmt.Sprintf("New enquiry from %s (%s)", lead.Name, lead.Email)
	if lead.Phone != "" {
		msg += ", " + lead.Phone
	}
	if lead.Message != "" {
		msg += ": " + lead.Message
	}
	return msg
}
