package etl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/ougirez/ayudas/internal/domain"
	"github.com/ougirez/ayudas/internal/pkg/constants"
	"github.com/ougirez/ayudas/internal/pkg/logger"
)

// Skip reasons of RowError.
const (
	ReasonMissingEvent   = "missing_event"
	ReasonInvalidDate    = "invalid_date"
	ReasonDiscardedEvent = "discarded_event"
	ReasonNoAid          = "no_aid"
	ReasonResolveFailed  = "resolve_failed"
	ReasonInsertFailed   = "insert_failed"
)

// RowError explains why one source row was not loaded.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// cleanRow is a record after normalization, ready for dimension resolution.
type cleanRow struct {
	line         int
	fecha        time.Time
	departamento string
	distrito     string
	localidad    string
	evento       string
	quantities   domain.Quantities
}

func clean(ctx context.Context, rec Record) (*cleanRow, *RowError) {
	rawEvent := rec.Get(ColEvento)
	evento, ok := NormalizeEvent(rawEvent)
	if evento == "" {
		return nil, &RowError{Row: rec.Line, Reason: ReasonMissingEvent}
	}
	if !ok {
		logger.Warnf(ctx, "row %d: unknown event %q, stored as %s", rec.Line, rawEvent, EventoOtros)
	}
	if evento == EventoDescartado {
		return nil, &RowError{Row: rec.Line, Reason: ReasonDiscardedEvent, Detail: NormalizeText(rawEvent)}
	}

	rawDate := rec.Get(ColFecha)
	fecha, ok := ParseDate(rawDate)
	if !ok {
		return nil, &RowError{Row: rec.Line, Reason: ReasonInvalidDate, Detail: strings.TrimSpace(rawDate)}
	}

	var q domain.Quantities
	for _, t := range domain.AidTypes {
		q.Set(t, ParseNumeric(rec.Get(Column(t))))
	}
	if q.IsZero() {
		return nil, &RowError{Row: rec.Line, Reason: ReasonNoAid}
	}

	rawDepartment := rec.Get(ColDepartamento)
	departamento, ok := NormalizeDepartment(rawDepartment)
	if !ok {
		logger.Warnf(ctx, "row %d: unknown department %q, stored as %s", rec.Line, rawDepartment, constants.Unspecified)
	}

	return &cleanRow{
		line:         rec.Line,
		fecha:        fecha,
		departamento: departamento,
		distrito:     NormalizeText(rec.Get(ColDistrito)),
		localidad:    NormalizeText(rec.Get(ColLocalidad)),
		evento:       InferEvent(evento, departamento, q),
		quantities:   q,
	}, nil
}

// content is the canonical rendering fingerprints are computed from.
func (r *cleanRow) content() string {
	parts := []string{
		r.fecha.Format(domain.DateLayout),
		r.departamento,
		r.distrito,
		r.localidad,
		r.evento,
	}
	for _, t := range domain.AidTypes {
		parts = append(parts, strconv.FormatInt(r.quantities.Get(t), 10))
	}
	return strings.Join(parts, "\x1f")
}

// fingerprint identifies the occurrence-th row with this content inside one source.
// Identical rows stay distinct facts, and a rerun of the same source maps onto the same ones.
func fingerprint(content string, occurrence int) string {
	sum := sha256.Sum256([]byte(content + "\x1e" + strconv.Itoa(occurrence)))
	return hex.EncodeToString(sum[:])
}
