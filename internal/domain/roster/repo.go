package roster

import "context"

type ScheduleRepository interface {
	// ReplaceAll clears the roster and writes the new snapshot. Callers
	// run it inside a transaction so readers never see a partial
	// roster.
	ReplaceAll(ctx context.Context, schedules []*StaffSchedule) error
	List(ctx context.Context) ([]*StaffSchedule, error)
}
