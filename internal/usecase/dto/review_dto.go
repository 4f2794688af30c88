package dto

import "github.com/hindrance-reporter/internal/domain"

// ReviewObjectRequest - решение ревьюера по объекту
type ReviewObjectRequest struct {
	Status   domain.ReviewStatus `json:"status" validate:"required,oneof=Approved Rejected"`
	Feedback *string             `json:"feedback,omitempty" validate:"omitempty,max=1000"`
}

// ReportStatusRequest - смена статуса отчета ревьюером
type ReportStatusRequest struct {
	Status domain.ReviewStatus `json:"status" validate:"required,oneof=Resolved Closed"`
}

// ListReportsQuery - фильтр списка отчетов для ревьюера
type ListReportsQuery struct {
	Status domain.ReviewStatus `query:"status" validate:"omitempty,oneof=Draft Submitted Resolved Closed"`
}
