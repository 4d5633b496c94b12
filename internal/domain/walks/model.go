package walks

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

// WalkRequest es una solicitud de paseo tal como se guarda en walkRequests.
type WalkRequest struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"`      // YYYY-MM-DD
	StartTime string `json:"startTime"` // HH:MM
	EndTime   string `json:"endTime"`   // HH:MM
	Address   string `json:"address"`
	Walker    string `json:"walker"`
	Status    Status `json:"status"`

	// IsCompleted lo lee el historial; nada en la app lo setea.
	IsCompleted *bool `json:"isCompleted,omitempty"`
}

func (r WalkRequest) Completed() bool {
	return r.IsCompleted != nil && *r.IsCompleted
}

// Lists es la vista del cliente: pendientes y confirmadas, en orden de guardado.
type Lists struct {
	Pending   []WalkRequest `json:"pending"`
	Confirmed []WalkRequest `json:"confirmed"`
}

// Board es la vista del paseador.
type Board struct {
	Pending   []WalkRequest `json:"pending"`
	Confirmed []WalkRequest `json:"confirmed"`
	// Examples es true cuando Pending son las solicitudes de ejemplo.
	Examples bool `json:"examples"`
}

// Form es lo que necesita la pantalla de solicitud.
type Form struct {
	Walkers   []string `json:"walkers"`
	TimeSlots []string `json:"timeSlots"`
	Today     string   `json:"today"`
}

type Progress string

const (
	ProgressNotStarted Progress = "not_started"
	ProgressInProgress Progress = "in_progress"
	ProgressFinished   Progress = "finished"
)

// WalkProgress es el estado en memoria de un paseo del lado del paseador.
type WalkProgress struct {
	RequestID     int64     `json:"requestId"`
	Status        Progress  `json:"status"`
	DisabledUntil time.Time `json:"disabledUntil,omitempty"`
}
