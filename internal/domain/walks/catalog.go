package walks

import (
	"fmt"
	"time"
)

// RandomWalker se resuelve a un paseador concreto al guardar.
const RandomWalker = "Aleatorio"

// NamedWalkers son los paseadores elegibles (y el pool del aleatorio).
var NamedWalkers = []string{"Martin", "Azul", "Tomas", "Sofia"}

// Walkers es el catálogo que ve el formulario.
func Walkers() []string {
	return append([]string{RandomWalker}, NamedWalkers...)
}

func knownWalker(name string) bool {
	if name == RandomWalker {
		return true
	}
	for _, w := range NamedWalkers {
		if w == name {
			return true
		}
	}
	return false
}

// TimeSlots: cada media hora de 07:00 a 22:00 inclusive.
func TimeSlots() []string {
	out := make([]string, 0, 31)
	for h := 7; h < 22; h++ {
		out = append(out, fmt.Sprintf("%02d:00", h), fmt.Sprintf("%02d:30", h))
	}
	return append(out, "22:00")
}

func validSlot(hhmm string) bool {
	for _, s := range TimeSlots() {
		if s == hhmm {
			return true
		}
	}
	return false
}

func parseHHMM(s string) (int, int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}

// EndTime suma una hora a start, con vuelta a 00 después de 23.
func EndTime(start string) (string, error) {
	h, m, ok := parseHHMM(start)
	if !ok {
		return "", fmt.Errorf("invalid time %q", start)
	}
	return fmt.Sprintf("%02d:%02d", (h+1)%24, m), nil
}

// Solicitudes de ejemplo del tablero del paseador.
const (
	ExampleID1 int64 = 999
	ExampleID2 int64 = 998
)

// ExampleRequests arma las dos solicitudes de ejemplo a partir de la hora actual:
// la primera en la hora siguiente en punto, la segunda dos horas después a y media.
// Ninguna pasa de las 23.
func ExampleRequests(now time.Time) []WalkRequest {
	date := now.Format("2006-01-02")
	h := now.Hour()

	s1, e1 := exampleHours(h + 1)
	s2, e2 := exampleHours(h + 2)

	return []WalkRequest{
		{
			ID:        ExampleID1,
			Date:      date,
			StartTime: fmt.Sprintf("%02d:00", s1),
			EndTime:   fmt.Sprintf("%02d:00", e1),
			Address:   "Av. Libertador 4567, CABA",
			Walker:    RandomWalker,
			Status:    StatusPending,
		},
		{
			ID:        ExampleID2,
			Date:      date,
			StartTime: fmt.Sprintf("%02d:30", s2),
			EndTime:   fmt.Sprintf("%02d:30", e2),
			Address:   "Av. Cabildo 1234, CABA",
			Walker:    RandomWalker,
			Status:    StatusPending,
		},
	}
}

func exampleHours(start int) (int, int) {
	if start >= 24 {
		return 23, 23
	}
	end := start + 1
	if end >= 24 {
		end = 23
	}
	return start, end
}

func exampleByID(now time.Time, id int64) (WalkRequest, bool) {
	for _, ex := range ExampleRequests(now) {
		if ex.ID == id {
			return ex, true
		}
	}
	return WalkRequest{}, false
}
