package service

import (
	"fmt"
	"strings"
	"time"
)

const (
	ExportFilename    = "asistentes_eventosu.txt"
	ExportContentType = "text/plain; charset=utf-8"
)

// ExportText renders the filtered attendees as a plain-text listing.
func (c *AttendeeConsole) ExportText(now time.Time) (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.filtered) == 0 {
		return "", "", ErrNothingToExport
	}

	var b strings.Builder
	b.WriteString("Lista de Asistentes - EventosU\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	for i, a := range c.filtered {
		fmt.Fprintf(&b, "Asistente #%d:\n", i+1)
		b.WriteString("  Nombre: " + a.Name + "\n")
		b.WriteString("  Email: " + a.Email + "\n")
		b.WriteString("  Teléfono: " + a.Phone + "\n")
		b.WriteString("  Evento: " + a.EventName + "\n")
		b.WriteString("  Estado: " + string(a.Status) + "\n")
		b.WriteString(strings.Repeat("-", 30) + "\n")
	}

	fmt.Fprintf(&b, "\nTotal: %d asistentes\n", len(c.filtered))
	b.WriteString("Generado: " + now.Format("02/01/2006, 15:04:05") + "\n")

	return ExportFilename, b.String(), nil
}
