package schedule

import "time"

// BatchDimension names the resource axis two drafts of the same batch
// collide on.
type BatchDimension string

const (
	BatchInstructor BatchDimension = "batch-instructor"
	BatchRoom       BatchDimension = "batch-room"
	BatchStudents   BatchDimension = "batch-students"
)

// BatchConflict records a collision between a draft and an earlier
// draft of the same batch. WithIndex is the earlier draft's position in
// generation order.
type BatchConflict struct {
	WithIndex int            `json:"withIndex"`
	Dimension BatchDimension `json:"dimension"`
	Date      time.Time      `json:"date"`
	StartTime string         `json:"startTime"`
	EndTime   string         `json:"endTime"`
}

// CrossCheck runs the intra-batch conflict pass. For every draft it
// compares the time range against each earlier draft on the same
// calendar day and reports one entry per colliding dimension. The
// result slice is indexed like drafts; entries for non-conflicting
// drafts are nil.
//
// Drafts must be in generation order: the pass only looks backwards,
// so reordering the input changes which draft "owns" a collision.
func CrossCheck(drafts []Draft) ([][]BatchConflict, error) {
	conflicts := make([][]BatchConflict, len(drafts))

	for i := 1; i < len(drafts); i++ {
		for j := 0; j < i; j++ {
			if !SameDay(drafts[i].Date, drafts[j].Date) {
				continue
			}

			overlap, err := RangesOverlap(drafts[i].StartTime, drafts[i].EndTime, drafts[j].StartTime, drafts[j].EndTime)
			if err != nil {
				return nil, err
			}
			if !overlap {
				continue
			}

			for _, dim := range collidingDimensions(&drafts[i], &drafts[j]) {
				conflicts[i] = append(conflicts[i], BatchConflict{
					WithIndex: j,
					Dimension: dim,
					Date:      drafts[j].Date,
					StartTime: drafts[j].StartTime,
					EndTime:   drafts[j].EndTime,
				})
			}
		}
	}

	return conflicts, nil
}

// collidingDimensions reports every axis on which two overlapping
// drafts compete for the same resource. A single pair may collide on
// all three.
func collidingDimensions(a, b *Draft) []BatchDimension {
	var dims []BatchDimension

	if a.InstructorID != nil && b.InstructorID != nil && *a.InstructorID == *b.InstructorID {
		dims = append(dims, BatchInstructor)
	}
	if a.Room != "" && a.Room == b.Room {
		dims = append(dims, BatchRoom)
	}
	if a.ClassName == b.ClassName && a.Section == b.Section {
		dims = append(dims, BatchStudents)
	}

	return dims
}
