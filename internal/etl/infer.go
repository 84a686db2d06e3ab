package etl

import "github.com/ougirez/ayudas/internal/domain"

var dryDepartments = map[string]bool{
	"BOQUERON":      true,
	"ALTO PARAGUAY": true,
	"PDTE. HAYES":   true,
}

// InferEvent guesses the event of a row recorded without one from where it happened and
// what was delivered. Any other event is returned unchanged.
func InferEvent(evento, departamento string, q domain.Quantities) string {
	if evento != EventoSinEvento {
		return evento
	}

	if dryDepartments[departamento] {
		return "SEQUIA"
	}

	kits := q.KitSentencia + q.KitEvento
	materials := q.Total() - kits

	switch {
	case kits > 0 && kits < 10 && materials > 0:
		return "INCENDIO"
	case departamento == "CAPITAL" && kits > 0 && materials == 0:
		return "INUNDACION"
	case q.ChapaZinc > 0 && kits == 0 && materials == q.ChapaZinc:
		return "TORMENTA SEVERA"
	case q.ChapaFibrocemento > 0 && kits == 0 && materials == q.ChapaFibrocemento:
		return "INUNDACION"
	}

	return "EXTREMA VULNERABILIDAD"
}
