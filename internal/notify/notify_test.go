package notify

import (
	"context"
	"errors"
	"testing"

	apperrors "business-directory/internal/common/errors"
	"business-directory/internal/common/logger"
	"business-directory/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSES struct{ mock.Mock }

func (m *mockSES) SendEmail(ctx context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*ses.SendEmailOutput)
	return out, args.Error(1)
}

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

func savedRecord() *models.SavedRecord {
	return &models.SavedRecord{
		ID:   "lst-1",
		Plan: "basic",
		Record: models.BusinessRecord{
			BusinessName: "Glow Salon",
			OwnerName:    "Ada",
			OwnerEmail:   "ada@glow.example",
			Services:     []string{"Cuts", "Colour"},
		},
	}
}

func TestSendWelcome(t *testing.T) {
	client := &mockSES{}
	client.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == "noreply@directory.example" &&
			in.Destination.ToAddresses[0] == "ada@glow.example" &&
			assert.ObjectsAreEqual("Welcome to the directory, Glow Salon", aws.ToString(in.Message.Subject.Data))
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil)

	mailer := NewSESMailer(client, "noreply@directory.example", true, logger.NewTestLogger(t))
	id, err := mailer.SendWelcome(context.Background(), savedRecord())
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	client.AssertExpectations(t)
}

func TestSendWelcome_Failures(t *testing.T) {
	client := &mockSES{}
	client.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := NewSESMailer(client, "noreply@directory.example", false, nil).SendWelcome(context.Background(), savedRecord())
	assert.ErrorIs(t, err, ErrDisabled)

	mailer := NewSESMailer(client, "noreply@directory.example", true, nil)
	bad := savedRecord()
	bad.Record.OwnerEmail = "nope"
	_, err = mailer.SendWelcome(context.Background(), bad)
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	_, err = mailer.SendWelcome(context.Background(), savedRecord())
	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, stdErr.Code)
}

func TestWelcomeText(t *testing.T) {
	text := welcomeText(savedRecord())
	assert.Contains(t, text, "Hi Ada,")
	assert.Contains(t, text, "Glow Salon is now listed in the directory on the basic plan.")
	assert.Contains(t, text, "Services: Cuts, Colour")
}

func TestNotifyLead_Routing(t *testing.T) {
	lead := models.Lead{ListingID: "lst-1", Name: "Bo", Email: "bo@example.com", Message: "Open Sunday?"}

	t.Run("sms", func(t *testing.T) {
		client := &mockSNS{}
		client.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
			return aws.ToString(in.PhoneNumber) == "+15550102030" && in.TopicArn == nil
		})).Return(&sns.PublishOutput{MessageId: aws.String("m")}, nil)

		alerter := NewSNSAlerter(client, "arn:aws:sns:us-east-1:1:leads", true, logger.NewTestLogger(t))
		require.NoError(t, alerter.NotifyLead(context.Background(), "+15550102030", lead))
		client.AssertExpectations(t)
	})

	t.Run("topic when sms disabled", func(t *testing.T) {
		client := &mockSNS{}
		client.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
			return aws.ToString(in.TopicArn) == "arn:aws:sns:us-east-1:1:leads" && in.PhoneNumber == nil
		})).Return(&sns.PublishOutput{MessageId: aws.String("m")}, nil)

		alerter := NewSNSAlerter(client, "arn:aws:sns:us-east-1:1:leads", false, logger.NewTestLogger(t))
		require.NoError(t, alerter.NotifyLead(context.Background(), "+15550102030", lead))
		client.AssertExpectations(t)
	})

	t.Run("nowhere to send", func(t *testing.T) {
		alerter := NewSNSAlerter(&mockSNS{}, "", false, nil)
		assert.ErrorIs(t, alerter.NotifyLead(context.Background(), "", lead), ErrDisabled)
	})

	t.Run("bad phone", func(t *testing.T) {
		alerter := NewSNSAlerter(&mockSNS{}, "", true, nil)
		assert.ErrorIs(t, alerter.NotifyLead(context.Background(), "12", lead), ErrInvalidRecipient)
	})
}

func TestLeadText(t *testing.T) {
	assert.Equal(t, "New enquiry from Bo (bo@example.com), 555: hi",
		leadText(models.Lead{Name: "Bo", Email: "bo@example.com", Phone: "555", Message: "hi"}))
}
