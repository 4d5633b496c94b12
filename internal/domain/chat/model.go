package chat

import (
	"fmt"
	"time"
)

type Sender string

const (
	SenderUser   Sender = "user"
	SenderWalker Sender = "walker"
)

// Message es un mensaje de la conversación; la conversación completa se guarda
// como array en chat_<requestId>_<walker>.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultWalker se usa cuando no llega nombre de paseador.
const DefaultWalker = "Paseador"

// Respuestas automáticas de un cliente (cuando escribe el paseador).
var clientReplies = []string{
	"Perfecto, muchas gracias!",
	"De acuerdo, nos vemos entonces.",
	"Excelente, mi mascota está muy contenta.",
	"Entendido, no hay problema.",
	"Está bien, gracias por la información.",
	"Perfecto, nos comunicamos más tarde.",
	"De acuerdo, muy amable.",
}

// Respuestas automáticas de un paseador (cuando escribe el cliente).
var walkerReplies = []string{
	"No hay inconveniente alguno.",
	"Perfecto, no hay problema.",
	"Entendido, sin problemas.",
	"No te preocupes, todo está bien.",
	"Perfecto, me parece bien.",
	"Entendido, todo bajo control.",
	"¡Perfecto! Todo listo.",
	"No hay inconveniente con eso.",
	"Perfecto, sin problemas.",
	"Entendido, no hay inconveniente.",
	"¡Genial! Todo está claro.",
	"Perfecto, todo bien.",
	"No hay problema alguno.",
	"Entendido, sin inconveniente.",
	"¡Perfecto! No hay inconveniente.",
}

func greeting(walker string, viewerIsWalker bool) string {
	if viewerIsWalker {
		return fmt.Sprintf("¡Hola! Soy %s, voy a acompañar a tu mascota en el paseo.", walker)
	}
	return fmt.Sprintf("¡Hola! Soy %s, tu paseador asignado. ¿Cómo está tu mascota?", walker)
}
