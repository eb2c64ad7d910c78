package roster

import (
	"time"

	"github.com/google/uuid"
)

// StaffSchedule is one shift assignment in the current roster
// snapshot. The roster is replaced wholesale each rebuild.
type StaffSchedule struct {
	ID           uuid.UUID `db:"id" json:"id"`
	StaffID      uuid.UUID `db:"staff_id" json:"staff_id"`
	DepartmentID uuid.UUID `db:"department_id" json:"department_id"`
	ShiftStart   time.Time `db:"shift_start" json:"shift_start"`
	ShiftEnd     time.Time `db:"shift_end" json:"shift_end"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
