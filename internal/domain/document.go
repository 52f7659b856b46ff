package domain

import (
	"fmt"
	"strings"
	"time"
)

// DocumentType — закрытое множество типов вложений.
type DocumentType string

const (
	DocumentAadharCard        DocumentType = "AadharCard"
	DocumentPassport          DocumentType = "Passport"
	DocumentVisa              DocumentType = "Visa"
	DocumentTicket            DocumentType = "Ticket"
	DocumentHotelConfirmation DocumentType = "HotelConfirmation"
	DocumentOther             DocumentType = "Other"
)

func ParseDocumentType(s string) (DocumentType, error) {
	for _, d := range []DocumentType{
		DocumentAadharCard, DocumentPassport, DocumentVisa,
		DocumentTicket, DocumentHotelConfirmation, DocumentOther,
	} {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("Invalid document type %q", s))
}

// Document — вложение к заявке. В конечном автомате не участвует,
// это чисто аддитивные метаданные поверх файлового хранилища.
type Document struct {
	ID              string       `json:"id"`
	TravelRequestID string       `json:"travel_request_id"`
	FileName        string       `json:"file_name"`
	FileURL         string       `json:"file_url"` // локатор в хранилище, наружу отдаем как есть
	DocumentType    DocumentType `json:"document_type"`
	Description     *string      `json:"description,omitempty"`
	UploadedDate    time.Time    `json:"uploaded_date"`
	IsDeleted       bool         `json:"is_deleted"`
}
