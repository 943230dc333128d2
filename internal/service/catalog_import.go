package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/javacachava/pizza-brava-sub000/internal/domain"
	"github.com/javacachava/pizza-brava-sub000/internal/queue"
	"github.com/javacachava/pizza-brava-sub000/internal/repo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var ErrCatalogSourceUnavailable = errors.New("catalog source is not configured")

// CatalogSource reads a full catalog from a spreadsheet.
type CatalogSource interface {
	ParseCatalog(ctx context.Context, spreadsheetID string) (*domain.Catalog, error)
}

type CatalogImportService struct {
	importTaskRepo repo.ImportTaskRepository
	catalogRepo    repo.CatalogRepository
	source         CatalogSource
	broker         queue.Broker
	logger         *zap.SugaredLogger
}

func NewCatalogImportService(
	importTaskRepo repo.ImportTaskRepository,
	catalogRepo repo.CatalogRepository,
	source CatalogSource,
	broker queue.Broker,
	logger *zap.SugaredLogger,
) *CatalogImportService {
	return &CatalogImportService{
		importTaskRepo: importTaskRepo,
		catalogRepo:    catalogRepo,
		source:         source,
		broker:         broker,
		logger:         logger,
	}
}

func (s *CatalogImportService) CreateImportTask(ctx context.Context, spreadsheetID string, actor domain.Actor) (primitive.ObjectID, error) {
	task := &domain.ImportTask{
		Status:        domain.StatusQueued,
		SpreadsheetID: spreadsheetID,
		CreatedBy:     actor.ID,
	}

	if err := s.importTaskRepo.Create(ctx, task); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create import task: %w", err)
	}

	message := domain.CatalogImportMessage{
		TaskID:        task.ID.Hex(),
		SpreadsheetID: spreadsheetID,
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := s.broker.Publish(ctx, queue.QueueCatalogImport, messageBytes); err != nil {
		// update task status to failed
		_ = s.importTaskRepo.UpdateStatus(ctx, task.ID, domain.StatusFailed, err.Error())
		return primitive.NilObjectID, fmt.Errorf("failed to publish message: %w", err)
	}

	s.logger.Infow("import task created", "task_id", task.ID.Hex(), "spreadsheet_id", spreadsheetID)

	return task.ID, nil
}

func (s *CatalogImportService) GetTaskStatus(ctx context.Context, taskID primitive.ObjectID) (*domain.ImportTask, error) {
	task, err := s.importTaskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get import task: %w", err)
	}

	return task, nil
}

// ProcessImportTask parses the spreadsheet and swaps the catalog. The swap
// is a single transaction in the catalog store, so a failed import leaves
// the previous catalog in place.
func (s *CatalogImportService) ProcessImportTask(ctx context.Context, taskID primitive.ObjectID) error {
	task, err := s.importTaskRepo.GetByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	if task.Status == domain.StatusCompleted {
		s.logger.Infow("import task already completed", "task_id", taskID.Hex())
		return nil
	}

	if err := s.importTaskRepo.UpdateStatus(ctx, taskID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	s.logger.Infow("processing import task", "task_id", taskID.Hex())

	if s.source == nil {
		_ = s.importTaskRepo.UpdateStatus(ctx, taskID, domain.StatusFailed, ErrCatalogSourceUnavailable.Error())
		return ErrCatalogSourceUnavailable
	}

	catalog, err := s.source.ParseCatalog(ctx, task.SpreadsheetID)
	if err != nil {
		s.logger.Errorw("failed to parse catalog", "task_id", taskID.Hex(), "error", err)
		s.fail(ctx, taskID, err)
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := s.catalogRepo.ReplaceCatalog(ctx, *catalog); err != nil {
		s.logger.Errorw("failed to save catalog", "task_id", taskID.Hex(), "error", err)
		s.fail(ctx, taskID, err)
		return fmt.Errorf("failed to save catalog: %w", err)
	}

	summary := domain.ImportSummary{
		Products:      len(catalog.Products),
		Combos:        len(catalog.Combos),
		Ingredients:   len(catalog.Ingredients),
		VariantGroups: len(catalog.VariantGroups),
	}
	if err := s.importTaskRepo.Complete(ctx, taskID, summary); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	s.logger.Infow("import task completed", "task_id", taskID.Hex(), "products", summary.Products, "combos", summary.Combos)

	return nil
}

func (s *CatalogImportService) fail(ctx context.Context, taskID primitive.ObjectID, cause error) {
	_ = s.importTaskRepo.IncrementRetryCount(ctx, taskID)
	_ = s.importTaskRepo.UpdateStatus(ctx, taskID, domain.StatusFailed, cause.Error())
}
