package catalog

import (
	"context"
)

// DepartmentRepository provides access to the department catalog.
type DepartmentRepository interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, d *Department) error
	List(ctx context.Context) ([]*Department, error)
}

// LabCatalogRepository provides access to lab test types and their critical
// value thresholds.
type LabCatalogRepository interface {
	CountTestTypes(ctx context.Context) (int, error)
	CreateTestType(ctx context.Context, t *LabTestType) error
	ListTestTypes(ctx context.Context) ([]*LabTestType, error)
	GetTestTypeByCode(ctx context.Context, code string) (*LabTestType, error)

	CountCriticalValues(ctx context.Context) (int, error)
	CreateCriticalValue(ctx context.Context, c *CriticalLabValue) error
	ListCriticalValues(ctx context.Context) ([]*CriticalLabValue, error)
}

// QualityCatalogRepository provides access to the quality and safety catalog
// tables: indicators, accreditation, compliance, risk, improvement
// initiatives, and education materials.
type QualityCatalogRepository interface {
	CountIndicators(ctx context.Context) (int, error)
	CreateIndicator(ctx context.Context, q *QualityIndicator) error
	ListIndicators(ctx context.Context) ([]*QualityIndicator, error)

	CountAccreditations(ctx context.Context) (int, error)
	CreateAccreditation(ctx context.Context, a *Accreditation) error

	CountComplianceAreas(ctx context.Context) (int, error)
	CreateComplianceArea(ctx context.Context, c *ComplianceArea) error

	CountRiskAssessments(ctx context.Context) (int, error)
	CreateRiskAssessment(ctx context.Context, r *RiskAssessment) error

	CountInitiatives(ctx context.Context) (int, error)
	CreateInitiative(ctx context.Context, i *QualityImprovementInitiative) error

	CountEducationMaterials(ctx context.Context) (int, error)
	CreateEducationMaterial(ctx context.Context, m *EducationMaterial) error
	ListEducationMaterials(ctx context.Context) ([]*EducationMaterial, error)
}
