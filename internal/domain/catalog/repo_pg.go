package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospitalops/opsim/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Department Repository ===========

type departmentRepoPG struct{ pool *pgxpool.Pool }

func NewDepartmentRepoPG(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepoPG{pool: pool}
}

func (r *departmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const deptCols = `id, name, code, type, created_at`

func (r *departmentRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM department`).Scan(&n)
	return n, err
}

func (r *departmentRepoPG) Create(ctx context.Context, d *Department) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO department (id, name, code, type)
		VALUES ($1,$2,$3,$4)`,
		d.ID, d.Name, d.Code, d.Type)
	return err
}

func (r *departmentRepoPG) List(ctx context.Context) ([]*Department, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+deptCols+` FROM department ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Code, &d.Type, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}

// =========== Lab Catalog Repository ===========

type labCatalogRepoPG struct{ pool *pgxpool.Pool }

func NewLabCatalogRepoPG(pool *pgxpool.Pool) LabCatalogRepository {
	return &labCatalogRepoPG{pool: pool}
}

func (r *labCatalogRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const testTypeCols = `id, name, code, category, reference_range_low, reference_range_high, unit, created_at`

func (r *labCatalogRepoPG) scanTestType(row pgx.Row) (*LabTestType, error) {
	var t LabTestType
	err := row.Scan(&t.ID, &t.Name, &t.Code, &t.Category,
		&t.ReferenceRangeLow, &t.ReferenceRangeHigh, &t.Unit, &t.CreatedAt)
	return &t, err
}

func (r *labCatalogRepoPG) CountTestTypes(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM lab_test_type`).Scan(&n)
	return n, err
}

func (r *labCatalogRepoPG) CreateTestType(ctx context.Context, t *LabTestType) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_test_type (id, name, code, category, reference_range_low, reference_range_high, unit)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.Name, t.Code, t.Category, t.ReferenceRangeLow, t.ReferenceRangeHigh, t.Unit)
	return err
}

func (r *labCatalogRepoPG) ListTestTypes(ctx context.Context) ([]*LabTestType, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+testTypeCols+` FROM lab_test_type ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*LabTestType
	for rows.Next() {
		t, err := r.scanTestType(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *labCatalogRepoPG) GetTestTypeByCode(ctx context.Context, code string) (*LabTestType, error) {
	return r.scanTestType(r.conn(ctx).QueryRow(ctx, `SELECT `+testTypeCols+` FROM lab_test_type WHERE code = $1`, code))
}

const criticalCols = `id, test_type_id, critical_low, critical_high, description, created_at`

func (r *labCatalogRepoPG) CountCriticalValues(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM critical_lab_value`).Scan(&n)
	return n, err
}

func (r *labCatalogRepoPG) CreateCriticalValue(ctx context.Context, c *CriticalLabValue) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO critical_lab_value (id, test_type_id, critical_low, critical_high, description)
		VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.TestTypeID, c.CriticalLow, c.CriticalHigh, c.Description)
	return err
}

func (r *labCatalogRepoPG) ListCriticalValues(ctx context.Context) ([]*CriticalLabValue, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+criticalCols+` FROM critical_lab_value`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*CriticalLabValue
	for rows.Next() {
		var c CriticalLabValue
		if err := rows.Scan(&c.ID, &c.TestTypeID, &c.CriticalLow, &c.CriticalHigh, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}

// =========== Quality Catalog Repository ===========

type qualityCatalogRepoPG struct{ pool *pgxpool.Pool }

func NewQualityCatalogRepoPG(pool *pgxpool.Pool) QualityCatalogRepository {
	return &qualityCatalogRepoPG{pool: pool}
}

func (r *qualityCatalogRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *qualityCatalogRepoPG) count(ctx context.Context, table string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}

func (r *qualityCatalogRepoPG) CountIndicators(ctx context.Context) (int, error) {
	return r.count(ctx, "quality_indicator")
}

func (r *qualityCatalogRepoPG) CreateIndicator(ctx context.Context, q *QualityIndicator) error {
	q.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO quality_indicator (id, name, category, target_value, unit)
		VALUES ($1,$2,$3,$4,$5)`,
		q.ID, q.Name, q.Category, q.TargetValue, q.Unit)
	return err
}

func (r *qualityCatalogRepoPG) ListIndicators(ctx context.Context) ([]*QualityIndicator, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, category, target_value, unit, created_at FROM quality_indicator ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*QualityIndicator
	for rows.Next() {
		var q QualityIndicator
		if err := rows.Scan(&q.ID, &q.Name, &q.Category, &q.TargetValue, &q.Unit, &q.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &q)
	}
	return items, rows.Err()
}

func (r *qualityCatalogRepoPG) CountAccreditations(ctx context.Context) (int, error) {
	return r.count(ctx, "accreditation")
}

func (r *qualityCatalogRepoPG) CreateAccreditation(ctx context.Context, a *Accreditation) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO accreditation (id, body, program, status, valid_until)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.Body, a.Program, a.Status, a.ValidUntil)
	return err
}

func (r *qualityCatalogRepoPG) CountComplianceAreas(ctx context.Context) (int, error) {
	return r.count(ctx, "compliance_area")
}

func (r *qualityCatalogRepoPG) CreateComplianceArea(ctx context.Context, c *ComplianceArea) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO compliance_area (id, name, score, last_audit_date)
		VALUES ($1,$2,$3,$4)`,
		c.ID, c.Name, c.Score, c.LastAuditDate)
	return err
}

func (r *qualityCatalogRepoPG) CountRiskAssessments(ctx context.Context) (int, error) {
	return r.count(ctx, "risk_assessment")
}

func (r *qualityCatalogRepoPG) CreateRiskAssessment(ctx context.Context, ra *RiskAssessment) error {
	ra.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO risk_assessment (id, area, severity, likelihood, mitigation_plan)
		VALUES ($1,$2,$3,$4,$5)`,
		ra.ID, ra.Area, ra.Severity, ra.Likelihood, ra.MitigationPlan)
	return err
}

func (r *qualityCatalogRepoPG) CountInitiatives(ctx context.Context) (int, error) {
	return r.count(ctx, "quality_improvement_initiative")
}

func (r *qualityCatalogRepoPG) CreateInitiative(ctx context.Context, i *QualityImprovementInitiative) error {
	i.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO quality_improvement_initiative (id, title, status, start_date, owner)
		VALUES ($1,$2,$3,$4,$5)`,
		i.ID, i.Title, i.Status, i.StartDate, i.Owner)
	return err
}

func (r *qualityCatalogRepoPG) CountEducationMaterials(ctx context.Context) (int, error) {
	return r.count(ctx, "education_material")
}

func (r *qualityCatalogRepoPG) CreateEducationMaterial(ctx context.Context, m *EducationMaterial) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO education_material (id, title, topic, format)
		VALUES ($1,$2,$3,$4)`,
		m.ID, m.Title, m.Topic, m.Format)
	return err
}

func (r *qualityCatalogRepoPG) ListEducationMaterials(ctx context.Context) ([]*EducationMaterial, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, title, topic, format, created_at FROM education_material ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*EducationMaterial
	for rows.Next() {
		var m EducationMaterial
		if err := rows.Scan(&m.ID, &m.Title, &m.Topic, &m.Format, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &m)
	}
	return items, rows.Err()
}
