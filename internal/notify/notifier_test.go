package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonaws "student-report-worker/internal/common/aws"
	"student-report-worker/internal/common/logger"
)

// The shared AWS wrappers must satisfy the notifier's service contracts.
var (
	_ SNSService = (*commonaws.SNSClient)(nil)
	_ SESService = (*commonaws.SESClient)(nil)
)

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
}

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

func newTestNotifier(t *testing.T) (*Notifier, *mockSNS, *mockSES) {
	t.Helper()
	snsClient := &mockSNS{}
	sesClient := &mockSES{}
	n := NewWithClients(Config{
		Region:    "eu-west-1",
		TopicARN:  "arn:aws:sns:eu-west-1:000000000000:report-ready",
		AlertFrom: "worker@example.com",
		AlertTo:   "ops@example.com",
	}, logger.NewTestLogger(t), snsClient, sesClient)
	return n, snsClient, sesClient
}

func TestNotifier_ReportReady(t *testing.T) {
	n, snsClient, sesClient := newTestNotifier(t)

	n.ReportReady(context.Background(), 42, "reports/42.json")

	require.Len(t, snsClient.inputs, 1)
	assert.Empty(t, sesClient.inputs)

	input := snsClient.inputs[0]
	assert.Equal(t, "arn:aws:sns:eu-west-1:000000000000:report-ready", *input.TopicArn)
	assert.Equal(t, "student-report-ready", *input.Subject)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(*input.Message), &event))
	assert.Equal(t, float64(42), event["student_id"])
	assert.Equal(t, "reports/42.json", event["s3_output_key"])
	assert.NotEmpty(t, event["generated_at"])
}

func TestNotifier_ReportReady_NoTopicConfigured(t *testing.T) {
	snsClient := &mockSNS{}
	n := NewWithClients(Config{}, logger.NewNoOpLogger(), snsClient, &mockSES{})

	n.ReportReady(context.Background(), 42, "reports/42.json")

	assert.Empty(t, snsClient.inputs)
}

func TestNotifier_ReportReady_PublishFailureIsSwallowed(t *testing.T) {
	n, snsClient, _ := newTestNotifier(t)
	snsClient.err = errors.New("topic gone")

	// Must not panic or propagate; delivery settlement never depends on it.
	n.ReportReady(context.Background(), 42, "reports/42.json")
	require.Len(t, snsClient.inputs, 1)
}

func TestNotifier_ReportFailed(t *testing.T) {
	n, snsClient, sesClient := newTestNotifier(t)

	n.ReportFailed(context.Background(), 42, "reports/42.json", errors.New("bucket unavailable"))

	require.Len(t, sesClient.inputs, 1)
	assert.Empty(t, snsClient.inputs)

	input := sesClient.inputs[0]
	assert.Equal(t, "worker@example.com", *input.Source)
	assert.Equal(t, []string{"ops@example.com"}, input.Destination.ToAddresses)
	assert.Contains(t, *input.Message.Subject.Data, "student 42")
	assert.Contains(t, *input.Message.Body.Text.Data, "bucket unavailable")
	assert.Contains(t, *input.Message.Body.Text.Data, "reports/42.json")
}

func TestNotifier_ReportFailed_NoRecipientConfigured(t *testing.T) {
	sesClient := &mockSES{}
	n := NewWithClients(Config{AlertFrom: "worker@example.com"}, logger.NewNoOpLogger(), &mockSNS{}, sesClient)

	n.ReportFailed(context.Background(), 42, "reports/42.json", errors.New("boom"))

	assert.Empty(t, sesClient.inputs)
}
