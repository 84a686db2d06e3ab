package domain

import "time"

type Year = int

// AidType names one aid product column of the fact table.
type AidType string

const (
	KitSentencia      AidType = "kit_sentencia"
	KitEvento         AidType = "kit_evento"
	ChapaFibrocemento AidType = "chapa_fibrocemento_cantidad"
	ChapaZinc         AidType = "chapa_zinc_cantidad"
	Colchones         AidType = "colchones_cantidad"
	Frazadas          AidType = "frazadas_cantidad"
	Terciadas         AidType = "terciadas_cantidad"
	Puntales          AidType = "puntales_cantidad"
	CarpasPlasticas   AidType = "carpas_plasticas_cantidad"
)

// AidTypes lists every known aid type in column order.
var AidTypes = []AidType{
	KitSentencia,
	KitEvento,
	ChapaFibrocemento,
	ChapaZinc,
	Colchones,
	Frazadas,
	Terciadas,
	Puntales,
	CarpasPlasticas,
}

func ParseAidType(s string) (AidType, bool) {
	for _, t := range AidTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Quantities holds one value per aid type.
type Quantities struct {
	KitSentencia      int64 `db:"kit_sentencia" json:"kit_sentencia"`
	KitEvento         int64 `db:"kit_evento" json:"kit_evento"`
	ChapaFibrocemento int64 `db:"chapa_fibrocemento_cantidad" json:"chapa_fibrocemento_cantidad"`
	ChapaZinc         int64 `db:"chapa_zinc_cantidad" json:"chapa_zinc_cantidad"`
	Colchones         int64 `db:"colchones_cantidad" json:"colchones_cantidad"`
	Frazadas          int64 `db:"frazadas_cantidad" json:"frazadas_cantidad"`
	Terciadas         int64 `db:"terciadas_cantidad" json:"terciadas_cantidad"`
	Puntales          int64 `db:"puntales_cantidad" json:"puntales_cantidad"`
	CarpasPlasticas   int64 `db:"carpas_plasticas_cantidad" json:"carpas_plasticas_cantidad"`
}

func (q *Quantities) ref(t AidType) *int64 {
	switch t {
	case KitSentencia:
		return &q.KitSentencia
	case KitEvento:
		return &q.KitEvento
	case ChapaFibrocemento:
		return &q.ChapaFibrocemento
	case ChapaZinc:
		return &q.ChapaZinc
	case Colchones:
		return &q.Colchones
	case Frazadas:
		return &q.Frazadas
	case Terciadas:
		return &q.Terciadas
	case Puntales:
		return &q.Puntales
	case CarpasPlasticas:
		return &q.CarpasPlasticas
	}
	return nil
}

func (q Quantities) Get(t AidType) int64 {
	if p := q.ref(t); p != nil {
		return *p
	}
	return 0
}

func (q *Quantities) Set(t AidType, v int64) {
	if p := q.ref(t); p != nil {
		*p = v
	}
}

func (q Quantities) Add(o Quantities) Quantities {
	for _, t := range AidTypes {
		q.Set(t, q.Get(t)+o.Get(t))
	}
	return q
}

func (q Quantities) Total() int64 {
	var total int64
	for _, t := range AidTypes {
		total += q.Get(t)
	}
	return total
}

// Chapas is fibre-cement plus zinc roofing sheets.
func (q Quantities) Chapas() int64 {
	return q.ChapaFibrocemento + q.ChapaZinc
}

func (q Quantities) IsZero() bool {
	return q == Quantities{}
}

// Map returns every aid type, including zero values.
func (q Quantities) Map() map[string]int64 {
	m := make(map[string]int64, len(AidTypes))
	for _, t := range AidTypes {
		m[string(t)] = q.Get(t)
	}
	return m
}

// Units is the value of a single product, or the grand total when product is empty.
func (q Quantities) Units(product AidType) int64 {
	if product == "" {
		return q.Total()
	}
	return q.Get(product)
}

type Location struct {
	ID           int64  `db:"id_ubicacion"`
	Departamento string `db:"departamento"`
	Distrito     string `db:"distrito"`
	Localidad    string `db:"localidad"`
	Orden        int    `db:"orden"`
}

type Fecha struct {
	ID        int64     `db:"id_fecha"`
	Fecha     time.Time `db:"fecha"`
	Anio      Year      `db:"anio"`
	Mes       int       `db:"mes"`
	NombreMes string    `db:"nombre_mes"`
	DiaDelMes int       `db:"dia_del_mes"`
}

// NewFecha derives the date dimension row for a calendar day.
func NewFecha(t time.Time) Fecha {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Fecha{
		Fecha:     day,
		Anio:      day.Year(),
		Mes:       int(day.Month()),
		NombreMes: MonthName(int(day.Month())),
		DiaDelMes: day.Day(),
	}
}

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

func MonthName(mes int) string {
	if mes < 1 || mes > 12 {
		return ""
	}
	return monthNames[mes-1]
}

type Event struct {
	ID     int64  `db:"id_evento"`
	Evento string `db:"evento"`
}

// Fact is one aid disbursement row ready to be stored.
type Fact struct {
	ID          int64  `db:"id_asistencia_hum"`
	FechaID     int64  `db:"id_fecha"`
	UbicacionID int64  `db:"id_ubicacion"`
	EventoID    int64  `db:"id_evento"`
	Fingerprint string `db:"fingerprint"`
	Eliminado   bool   `db:"eliminado"`
	Quantities
}

// DetailRow is a fact joined with its dimension labels.
type DetailRow struct {
	ID           int64  `db:"id" json:"-"`
	Fecha        string `db:"fecha" json:"fecha"`
	Anio         Year   `db:"anio" json:"-"`
	Mes          int    `db:"mes" json:"-"`
	Departamento string `db:"departamento" json:"departamento"`
	Distrito     string `db:"distrito" json:"distrito"`
	Localidad    string `db:"localidad" json:"localidad"`
	Evento       string `db:"evento" json:"evento"`
	Eliminado    bool   `db:"eliminado" json:"-"`
	Quantities
}
