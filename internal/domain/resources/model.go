package resources

import (
	"time"

	"github.com/google/uuid"
)

const (
	BedStatusAvailable   = "AVAILABLE"
	BedStatusOccupied    = "OCCUPIED"
	BedStatusMaintenance = "MAINTENANCE"
)

const (
	RoleNurse        = "NURSE"
	RolePhysician    = "PHYSICIAN"
	RoleReceptionist = "RECEPTIONIST"
)

// Bed is a physical bed assigned to a department. PatientID is set
// only while Status is OCCUPIED.
type Bed struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	BedNumber    string     `db:"bed_number" json:"bed_number"`
	RoomNumber   string     `db:"room_number" json:"room_number"`
	DepartmentID uuid.UUID  `db:"department_id" json:"department_id"`
	Status       string     `db:"status" json:"status"`
	PatientID    *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

type Staff struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
