package numarena

import "github.com/google/uuid"

// TaskID identifies a borrower of pool slots. Go has no goroutine identity,
// so each concurrent task creates its own TaskID and passes it to every pool
// call it makes.
type TaskID uuid.UUID

// NewTaskID returns a random TaskID.
func NewTaskID() TaskID { return TaskID(uuid.New()) }

func (t TaskID) String() string { return uuid.UUID(t).String() }
