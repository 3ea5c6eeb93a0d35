// Package notify sends best-effort report lifecycle notifications. Delivery
// failures are logged and never affect job settlement.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	commonaws "student-report-worker/internal/common/aws"
	"student-report-worker/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Config struct {
	Region    string
	TopicARN  string
	AlertFrom string
	AlertTo   string
}

// Notifier publishes a "report ready" event to SNS on success and emails an
// operator alert via SES on failure.
type Notifier struct {
	config    Config
	logger    logger.Logger
	snsClient SNSService
	sesClient SESService
}

func New(ctx context.Context, cfg Config, log logger.Logger) (*Notifier, error) {
	snsClient, err := commonaws.NewSNSClient(ctx, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("init SNS client: %w", err)
	}
	sesClient, err := commonaws.NewSESClient(ctx, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("init SES client: %w", err)
	}
	return NewWithClients(cfg, log, snsClient, sesClient), nil
}

// NewWithClients wires pre-built clients; used by tests.
func NewWithClients(cfg Config, log logger.Logger, snsClient SNSService, sesClient SESService) *Notifier {
	return &Notifier{
		config:    cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
		snsClient: snsClient,
		sesClient: sesClient,
	}
}

type reportReadyEvent struct {
	StudentID   int64  `json:"student_id"`
	S3OutputKey string `json:"s3_output_key"`
	GeneratedAt string `json:"generated_at"`
}

// ReportReady publishes an event for downstream consumers of finished
// reports.
func (n *Notifier) ReportReady(ctx context.Context, studentID int64, outputKey string) {
	if n == nil || n.snsClient == nil || n.config.TopicARN == "" {
		return
	}

	event := reportReadyEvent{
		StudentID:   studentID,
		S3OutputKey: outputKey,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.WithError(err).Warn("failed to encode report-ready event", nil)
		return
	}

	_, err = n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.TopicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String("student-report-ready"),
	})
	if err != nil {
		n.logger.WithError(err).Warn("failed to publish report-ready event", map[string]interface{}{
			"studentId": studentID,
			"outputKey": outputKey,
		})
	}
}

// ReportFailed emails an operator alert describing a failed job.
func (n *Notifier) ReportFailed(ctx context.Context, studentID int64, outputKey string, cause error) {
	if n == nil || n.sesClient == nil || n.config.AlertTo == "" {
		return
	}

	subject := fmt.Sprintf("Student report generation failed (student %d)", studentID)
	body := fmt.Sprintf(
		"Report generation failed.\n\nStudent ID: %d\nOutput key: %s\nError: %v\nTime: %s\n",
		studentID, outputKey, cause, time.Now().UTC().Format(time.RFC3339),
	)

	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{n.config.AlertTo},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.AlertFrom),
	})
	if err != nil {
		n.logger.WithError(err).Warn("failed to send failure alert", map[string]interface{}{
			"studentId": studentID,
			"outputKey": outputKey,
		})
	}
}
