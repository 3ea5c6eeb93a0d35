// internal/pipeline/pipeline.go

// Package pipeline drives one report job end to end: validate the message,
// fetch the student's assessment views, run the analyses, publish the report
// blob, record terminal status, and settle the delivery.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"student-report-worker/internal/analysis"
	commonerrors "student-report-worker/internal/common/errors"
	"student-report-worker/internal/common/logger"
	"student-report-worker/internal/common/metrics"
	"student-report-worker/internal/common/observability"
	"student-report-worker/internal/common/validation"
	"student-report-worker/internal/disability"
	"student-report-worker/internal/models"
	"student-report-worker/internal/predictor"
)

const (
	TaskType    = "student-report"
	contentType = "application/json"
)

// Repository supplies the assessment views and records terminal job status.
type Repository interface {
	AllAssessments(ctx context.Context, studentID int64, semesterID *int64) ([]models.AssessmentRecord, error)
	PriorAssessmentsWithQuestionnaire(ctx context.Context, studentID int64, semesterID *int64) ([]models.AssessmentRecord, error)
	Attendance(ctx context.Context, studentID int64, semesterID *int64) (*models.AttendanceSummary, error)
	UpdateJobStatus(ctx context.Context, status models.JobStatus, outputKey string) error
}

// BlobStore receives the finished report document.
type BlobStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// Guard short-circuits jobs whose output key already completed. Optional.
type Guard interface {
	AlreadyDone(ctx context.Context, outputKey string) (bool, error)
	Mark(ctx context.Context, outputKey string, status models.JobStatus) error
}

// Notifier emits best-effort lifecycle events. Optional.
type Notifier interface {
	ReportReady(ctx context.Context, studentID int64, outputKey string)
	ReportFailed(ctx context.Context, studentID int64, outputKey string, cause error)
}

// Delivery is one broker message awaiting settlement.
type Delivery interface {
	Body() []byte
	Ack() error
	Nack(requeue bool) error
}

type Params struct {
	Repo       Repository
	Blob       BlobStore
	Disability *disability.Analyzer
	Scores     *analysis.ScorePredictor
	Guard      Guard
	Notifier   Notifier
	Obs        *observability.Observability
	Logger     logger.Logger
	Clock      func() time.Time
}

// Processor is safe for sequential use only; the consumer holds a single
// unacknowledged message at a time, so no internal locking is needed.
type Processor struct {
	repo       Repository
	blob       BlobStore
	disability *disability.Analyzer
	scores     *analysis.ScorePredictor
	guard      Guard
	notifier   Notifier
	obs        *observability.Observability
	logger     logger.Logger
	clock      func() time.Time
}

func New(p Params) *Processor {
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Processor{
		repo:       p.Repo,
		blob:       p.Blob,
		disability: p.Disability,
		scores:     p.Scores,
		guard:      p.Guard,
		notifier:   p.Notifier,
		obs:        p.Obs,
		logger:     p.Logger.WithFields(map[string]interface{}{"taskType": TaskType}),
		clock:      clock,
	}
}

// Process handles one delivery. A malformed payload is logged and left
// unsettled; a failed job is nacked without requeue after the ERROR status
// write; a finished job is acked after the report is published.
func (p *Processor) Process(ctx context.Context, d Delivery) {
	start := p.clock()

	if err := validation.ValidateReportJob(d.Body()); err != nil {
		stdErr := commonerrors.NewPayloadError(err)
		p.logger.WithError(stdErr).Error("leaving malformed job payload unsettled", map[string]interface{}{
			"payloadBytes": len(d.Body()),
		})
		metrics.ReportJobsFailed.WithLabelValues(TaskType, string(commonerrors.ErrCodePayloadInvalid)).Inc()
		return
	}

	var job models.ReportJob
	if err := json.Unmarshal(d.Body(), &job); err != nil {
		stdErr := commonerrors.NewPayloadError(err)
		p.logger.WithError(stdErr).Error("leaving undecodable job payload unsettled", nil)
		metrics.ReportJobsFailed.WithLabelValues(TaskType, string(commonerrors.ErrCodePayloadInvalid)).Inc()
		return
	}

	log := p.logger.WithFields(map[string]interface{}{
		"runId":     uuid.New().String(),
		"studentId": job.StudentID,
		"outputKey": job.OutputKey,
	})
	log.Info("processing report job", nil)

	metrics.ReportJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.ReportJobsActive.WithLabelValues(TaskType).Dec()
	defer func() {
		metrics.ReportJobDuration.WithLabelValues(TaskType).Observe(p.clock().Sub(start).Seconds())
	}()

	if p.guard != nil {
		done, err := p.guard.AlreadyDone(ctx, job.OutputKey)
		if err != nil {
			log.WithError(err).Warn("idempotency check failed, processing anyway", nil)
		} else if done {
			log.Info("report already generated, skipping", nil)
			metrics.ReportJobsSkipped.WithLabelValues(TaskType).Inc()
			if err := d.Ack(); err != nil {
				log.WithError(err).Error("failed to ack skipped job", nil)
			}
			return
		}
	}

	report, err := p.buildReport(ctx, &job, log)
	if err != nil {
		p.failJob(ctx, d, &job, err, log)
		return
	}

	body, err := json.Marshal(report)
	if err != nil {
		p.failJob(ctx, d, &job, commonerrors.NewSerializeError(err), log)
		return
	}

	if err := p.blob.Put(ctx, job.OutputKey, body, contentType); err != nil {
		p.failJob(ctx, d, &job, commonerrors.NewUploadError(job.OutputKey, err), log)
		return
	}

	// The report is already live at this point, so a failed status write is
	// logged but does not undo the job.
	if err := p.repo.UpdateJobStatus(ctx, models.StatusDone, job.OutputKey); err != nil {
		log.WithError(err).Error("failed to record DONE status", map[string]interface{}{
			"errorCode": string(commonerrors.ErrCodeStatusWriteFailed),
		})
	}

	if err := d.Ack(); err != nil {
		log.WithError(err).Error("failed to ack finished job", map[string]interface{}{
			"errorCode": string(commonerrors.ErrCodeBrokerDeliveryFailed),
		})
	}

	if p.guard != nil {
		if err := p.guard.Mark(ctx, job.OutputKey, models.StatusDone); err != nil {
			log.WithError(err).Warn("failed to record idempotency mark", nil)
		}
	}
	if p.notifier != nil {
		p.notifier.ReportReady(ctx, job.StudentID, job.OutputKey)
	}

	metrics.ReportJobsCompleted.WithLabelValues(TaskType).Inc()
	if p.obs != nil {
		p.obs.RecordJobProcessed(ctx, "completed")
		p.obs.RecordJobDuration(ctx, p.clock().Sub(start), "completed")
	}
	log.Info("report job finished", map[string]interface{}{
		"reportBytes": len(body),
	})
}

// buildReport assembles the composite report. An unavailable model artifact
// degrades the affected section to null; everything else fails the job.
func (p *Processor) buildReport(ctx context.Context, job *models.ReportJob, log logger.Logger) (*models.Report, error) {
	all, err := p.repo.AllAssessments(ctx, job.StudentID, job.SemesterID)
	if err != nil {
		return nil, commonerrors.NewFetchError("all_assessments", err)
	}
	withQuestionnaire, err := p.repo.PriorAssessmentsWithQuestionnaire(ctx, job.StudentID, job.SemesterID)
	if err != nil {
		return nil, commonerrors.NewFetchError("prior_assessments_with_questionnaire", err)
	}
	attendance, err := p.repo.Attendance(ctx, job.StudentID, job.SemesterID)
	if err != nil {
		return nil, commonerrors.NewFetchError("attendance", err)
	}

	an := analysis.New(all)

	frame, err := an.MovingAverages()
	if err != nil {
		return nil, commonerrors.NewAnalysisError(err)
	}
	data, err := an.Dataset()
	if err != nil {
		return nil, commonerrors.NewAnalysisError(err)
	}
	bias, err := an.SubjectBias()
	if err != nil {
		return nil, commonerrors.NewAnalysisError(err)
	}
	comparison, err := an.StageComparison()
	if err != nil {
		return nil, commonerrors.NewAnalysisError(err)
	}

	classification, err := p.disability.Analyze(withQuestionnaire, attendance)
	if err != nil {
		if !errors.Is(err, predictor.ErrArtifactUnavailable) {
			return nil, commonerrors.NewAnalysisError(err)
		}
		log.WithError(err).Warn("classifier artifact unavailable, emitting null section", nil)
		classification = nil
	}

	// The score predictor reads the same questionnaire view as the risk
	// classifier; its engineered features live only on questionnaire rows.
	predictions, err := p.scores.Predict(withQuestionnaire, attendance)
	if err != nil {
		if !errors.Is(err, predictor.ErrArtifactUnavailable) {
			return nil, commonerrors.NewAnalysisError(err)
		}
		log.WithError(err).Warn("regressor artifact unavailable, emitting null section", nil)
		predictions = nil
	}

	return &models.Report{
		GeneratedAt: p.clock().Unix(),
		AllScores: models.AllScores{
			Scores: frame,
			Data:   data,
			Labels: an.Labels(),
		},
		SubjectBias:          bias,
		AssessmentComparison: comparison,
		LearningDisability:   classification,
		LearningDisabilityLR: models.LinearRegressionSection{
			ScoresLinearRegression: predictions,
		},
	}, nil
}

// failJob settles a failed delivery: nack without requeue first so the
// broker releases the message, then record ERROR and alert. Redelivery is
// driven by upstream re-enqueueing, not broker requeue.
func (p *Processor) failJob(ctx context.Context, d Delivery, job *models.ReportJob, cause error, log logger.Logger) {
	code := commonerrors.CodeOf(cause)
	log.WithError(cause).Error("report job failed", map[string]interface{}{
		"errorCode": string(code),
	})

	if err := d.Nack(false); err != nil {
		log.WithError(err).Error("failed to nack job", map[string]interface{}{
			"errorCode": string(commonerrors.ErrCodeBrokerDeliveryFailed),
		})
	}

	if err := p.repo.UpdateJobStatus(ctx, models.StatusError, job.OutputKey); err != nil {
		log.WithError(err).Error("failed to record ERROR status", map[string]interface{}{
			"errorCode": string(commonerrors.ErrCodeStatusWriteFailed),
		})
	}

	if p.guard != nil {
		if err := p.guard.Mark(ctx, job.OutputKey, models.StatusError); err != nil {
			log.WithError(err).Warn("failed to record idempotency mark", nil)
		}
	}
	if p.notifier != nil {
		p.notifier.ReportFailed(ctx, job.StudentID, job.OutputKey, cause)
	}

	metrics.ReportJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	if p.obs != nil {
		p.obs.RecordJobProcessed(ctx, "failed")
	}
}
