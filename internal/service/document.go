package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/traveldesk/internal/domain"
	"github.com/xela07ax/traveldesk/internal/storage"
	"go.uber.org/zap"
)

// DocumentRepository — метаданные вложений; байты живут в storage.FileStore.
type DocumentRepository interface {
	GetTravelRequest(ctx context.Context, id string) (*domain.TravelRequest, error)
	CreateDocument(ctx context.Context, d *domain.Document) error
	ListDocuments(ctx context.Context, travelRequestID string) ([]*domain.Document, error)
	SoftDeleteDocument(ctx context.Context, id string) error
}

type DocumentService struct {
	repo   DocumentRepository
	files  storage.FileStore
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewDocumentService(repo DocumentRepository, files storage.FileStore, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		repo:   repo,
		files:  files,
		logger: logger.Named("document-service"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Upload сохраняет файл и регистрирует вложение у заявки.
// Сначала убеждаемся, что заявка существует: файл-сирота хуже лишнего запроса.
func (s *DocumentService) Upload(
	ctx context.Context,
	travelRequestID string,
	fileName string,
	docType domain.DocumentType,
	description *string,
	content io.Reader,
) (*domain.Document, error) {
	if _, err := s.repo.GetTravelRequest(ctx, travelRequestID); err != nil {
		return nil, err
	}

	fileURL, err := s.files.Save(travelRequestID, fileName, content)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:              s.newID(),
		TravelRequestID: travelRequestID,
		FileName:        fileName,
		FileURL:         fileURL,
		DocumentType:    docType,
		Description:     description,
		UploadedDate:    s.now(),
	}

	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document uploaded",
		zap.String("travel_request_id", travelRequestID),
		zap.String("document_id", doc.ID),
		zap.String("type", string(docType)))
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, travelRequestID string) ([]*domain.Document, error) {
	return s.repo.ListDocuments(ctx, travelRequestID)
}

func (s *DocumentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.SoftDeleteDocument(ctx, id); err != nil {
		return err
	}
	s.logger.Info("document deleted", zap.String("document_id", id))
	return nil
}
