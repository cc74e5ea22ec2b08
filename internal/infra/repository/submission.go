package repository

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/hhyyy9/logistics-platform/internal/domain"
	"github.com/hhyyy9/logistics-platform/internal/infra/database/models"
)

var tracer = otel.Tracer("repository")

// SubmissionRepository journals signer hand-offs in postgres.
type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Fingerprint identifies a call by function and arguments so repeated
// submissions of the same payload can be grouped.
func Fingerprint(function string, arguments []byte) string {
	buf := make([]byte, 0, len(function)+1+len(arguments))
	buf = append(buf, function...)
	buf = append(buf, 0)
	buf = append(buf, arguments...)
	return strconv.FormatUint(xxh3.Hash(buf), 16)
}

func (r *SubmissionRepository) Begin(ctx context.Context, s domain.Submission) error {
	ctx, span := tracer.Start(ctx, "Repository.Submission.Begin")
	defer span.End()

	args, err := json.Marshal(s.Arguments)
	if err != nil {
		return errors.Wrap(err, "marshal arguments")
	}

	row := models.Submission{
		ID:          s.ID,
		Operation:   s.Operation,
		Function:    s.Function,
		Arguments:   string(args),
		Fingerprint: Fingerprint(s.Function, args),
		Status:      string(s.Status),
		CDate:       s.At,
		MDate:       s.At,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "insert submission")
	}
	return nil
}

func (r *SubmissionRepository) Finish(ctx context.Context, id string, status domain.SubmissionStatus, txHash, errMsg string) error {
	ctx, span := tracer.Start(ctx, "Repository.Submission.Finish")
	defer span.End()

	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  string(status),
			"tx_hash": txHash,
			"error":   errMsg,
		}).Error
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "update submission")
	}
	return nil
}

// Recent lists the newest submissions first.
func (r *SubmissionRepository) Recent(ctx context.Context, limit int) ([]domain.Submission, error) {
	ctx, span := tracer.Start(ctx, "Repository.Submission.Recent")
	defer span.End()

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows []models.Submission
	err := r.db.WithContext(ctx).
		Order("c_date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "list submissions")
	}

	result := make([]domain.Submission, 0, len(rows))
	for _, row := range rows {
		var args []any
		if row.Arguments != "" {
			if err := json.Unmarshal([]byte(row.Arguments), &args); err != nil {
				return nil, errors.Wrapf(err, "decode arguments of %s", row.ID)
			}
		}
		result = append(result, domain.Submission{
			ID:        row.ID,
			Operation: row.Operation,
			Function:  row.Function,
			Arguments: args,
			Status:    domain.SubmissionStatus(row.Status),
			TxHash:    row.TxHash,
			Error:     row.Error,
			At:        row.CDate,
		})
	}
	return result, nil
}
