package etl

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/ougirez/ayudas/internal/pkg/constants"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	EventoSinEvento = "SIN EVENTO"
	EventoOtros     = "OTROS"
	// EventoDescartado marks pre-positioning and stock movements. Such rows are not aid.
	EventoDescartado = "ELIMINAR_REGISTRO"
)

// NormalizeText trims, collapses inner whitespace and upper-cases s.
// Empty values become constants.Unspecified.
func NormalizeText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return constants.Unspecified
	}
	return strings.ToUpper(s)
}

// fold upper-cases s and strips its diacritics, Ñ included.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(strings.Join(strings.Fields(out), " "))
}

// Departments in their official order, 1 to 18.
var departments = []string{
	"CONCEPCIÓN", "SAN PEDRO", "CORDILLERA", "GUAIRÁ", "CAAGUAZÚ", "CAAZAPÁ",
	"ITAPÚA", "MISIONES", "PARAGUARÍ", "ALTO PARANÁ", "CENTRAL", "ÑEEMBUCÚ",
	"AMAMBAY", "CANINDEYÚ", "PDTE. HAYES", "BOQUERON", "ALTO PARAGUAY", "CAPITAL",
}

var departmentAliases = map[string][]string{
	"ÑEEMBUCÚ":    {"ÑEMBUCU"},
	"ALTO PARANÁ": {"ALTO PNÁ", "ALTO PY"},
	"CAAGUAZÚ": {
		"CAAG-CANIND", "CAAG/CANIN", "CAAG/CANIND.", "CAAGUAZU- ALTO PARANA", "CAAGUAZU/MISIONES",
		"CAAGUAZU-GUAIRA", "CAAGUAZU-GUAIRA Y SAN PEDRO", "CNEL OVIEDO",
	},
	"CENTRAL": {
		"CENT/CORDILL", "CENTR-CORD", "CENTRAL-CORDILLERA", "CENTRAL/CAP", "CENTRAL/CAPITAL",
		"CENTRAL/COR", "CENTRAL/CORD", "CENTRAL/CORD.", "CENTRAL/CORDILLER", "CENTRAL/CORDILLERA",
		"CENTRAL/PARAG.", "VARIOS", "VARIOS DEP.", "VARIOS DPTOS.", "VARIOS DPTS.",
		"REGION ORIENTAL/ OCCIDENTAL", "ASOC MUSICO", "INDI", "ITA", "ITAUGUA",
	},
	"CORDILLERA": {
		"COORDILLERA", "CORD./CENTRAL", "CORD/S.PEDRO", "CORDILLERA ARROYOS",
		"CORDILLERA ARROYOS Y EST.", "CORDILLERACAACUPÈ", "CAACUPÉ",
	},
	"GUAIRÁ":    {"GUIARA", "VILLARICA"},
	"ITAPÚA":    {"ITAPUA- CAAGUAZU"},
	"MISIONES":  {"MISIONES YABEBYRY"},
	"PARAGUARÍ": {"PARAGUARI PARAGUARI"},
	"PDTE. HAYES": {
		"PDTE HAYES", "PDTE HAYES S.PIRI-4 DE MAYO", "PDTE HYES", "PTE HAYES", "PTE. HAYES", "PDTE.HAYES",
	},
	"SAN PEDRO": {"S.PEDRO/CAN.", "SAN PEDRO/ AMAMBAY"},
	"CAPITAL":   {"ASUNCIÓN"},
}

var (
	departmentIndex = buildIndex(departments, departmentAliases)
	departmentOrder = func() map[string]int {
		m := make(map[string]int, len(departments))
		for i, d := range departments {
			m[d] = i + 1
		}
		return m
	}()
	// longest names first so ALTO PARAGUAY never loses to a shorter match
	departmentsByLength = func() []string {
		out := slices.Clone(departments)
		slices.SortStableFunc(out, func(a, b string) int { return cmp.Compare(len(b), len(a)) })
		return out
	}()
	departmentSeparators = []string{" - ", " / ", ", ", " Y ", "/", "-"}
)

func buildIndex(canonical []string, aliases map[string][]string) map[string]string {
	index := make(map[string]string)
	for _, c := range canonical {
		index[fold(c)] = c
	}
	for c, list := range aliases {
		index[fold(c)] = c
		for _, a := range list {
			index[fold(a)] = c
		}
	}
	return index
}

// NormalizeDepartment maps a raw department onto one of the 18 canonical departments.
// ok is false, and the value constants.Unspecified, when no rule matches.
func NormalizeDepartment(raw string) (string, bool) {
	key := fold(raw)
	if key == "" {
		return constants.Unspecified, false
	}
	if d, ok := departmentIndex[key]; ok {
		return d, true
	}

	for _, sep := range departmentSeparators {
		if first, _, found := strings.Cut(key, sep); found {
			if d, ok := departmentIndex[strings.TrimSpace(first)]; ok {
				return d, true
			}
		}
	}

	for _, d := range departmentsByLength {
		if strings.Contains(key, fold(d)) {
			return d, true
		}
	}

	return constants.Unspecified, false
}

// DepartmentOrder is the official position of a canonical department, 0 when unknown.
func DepartmentOrder(departamento string) int {
	return departmentOrder[departamento]
}

var events = []string{
	"COVID", "INCENDIO", "TORMENTA SEVERA", "SEQUIA", "EXTREMA VULNERABILIDAD", "C.I.D.H.",
	"OPERATIVO JAHO'I", "INUNDACION", "OLLA POPULAR", EventoOtros, EventoSinEvento,
}

var eventAliases = map[string][]string{
	"COVID": {
		"ALB.COVID", "ALBER.COVID", "ALBERG.COVID", "COVI 19 OLL.", "COVID 19", "COVI", "VAC.ARATIRI",
		"VACUNATORIO SND", "APOY.INST.COVID 19", "APOYO INSTITUCIONAL COVID", "ÑANGARECO", "ÑANGAREKO",
	},
	"INCENDIO": {
		"INC.FORESTAL", "INCCENDIO", "INCEND", "INCEND. DOMIC.", "INCENDIO DOMICILIARIO",
		"INCENDIO FORESTAL", "DERRUMBE",
	},
	"TORMENTA SEVERA": {
		"EVENTO CLIMATICO", "EVENTO CLIMATICO TEMPORAL", "TORMENTA SEVERA CENTRAL", "MUNICIPALIDAD",
		"TEMPORAL", "TEMPORAL CENTRAL", "TEMPORAL - MUNICIPALIDAD", "TEMPORAL-GOBERNACION",
		"TEMPORAL - GOBERNACION", "TEMPORAL CENTRAL MUNICIPALIDAD",
	},
	"SEQUIA":                 {"SEQ. E INUND.", "SEQ./INUND.", "SEQUIA-INUND."},
	"EXTREMA VULNERABILIDAD": {"COMISION VECINAL", "AYUDA SOLIDARIA"},
	"C.I.D.H.":               {"C I D H", "C.H.D.H", "C.I.D.H", "C.ID.H", "CIDH"},
	"OPERATIVO JAHO'I": {
		"OPERATIVO ÑEÑUA", "OPERATIVO ESPECIAL", "OP INVIERNO", "OP. INVIERNO", "OP. ÑEÑUA", "OP.INVIERNO",
	},
	"INUNDACION": {
		"INUNDAC.", "INUNDAIÓN S.", "INUNDACION SUBITA", `INUNDACION " DECLARACION DE EMERGENCIA"`, "LNUNDACION",
	},
	"OLLA POPULAR": {
		"OLLA P", "OLLA P.", "OLLA POP", "OLLA POP.", "OLLA POPILAR", "OLLA POPOLAR", "OLLA POPUL",
		"OLLAP.", "OLLA POPULAR COVID",
	},
	EventoOtros: {
		"INERAM", "INERAM(MINGA)", "MINGA", "INDERT", "INDI MBYA GUARANI", "NIÑEZ", "DGRR 027/22",
		"DGRR 028/22", "DONAC", "DONAC.", "DONACIÒN", "EDAN", "EVALUACION DE DAÑOS", "TRABAJO COMUNITARIO",
		"ASISTENCIA INSTITUCIONAL", "APOYO LOGISTICO", "APOYO INSTITUCIONAL", "APOY.LOG", "APOY LOG",
		"APOYO LOG.", `OTROS "TEMPORAL"`, "APOYO LOGISTICO INDI",
	},
	EventoDescartado: {
		"PREP.", "PREPOS", "PREPOS.", "PREPOSIC.", "PREPOSICION.", "PRE POSICIONAMIENTO", "PREPOSICIONAMIENTO",
		"P/ STOCK DEL COE", "REP.DE MATERIAL", "REPOSIC.MATER", "REPOSIC.MATER.", "PROVISION DE MATERIALES",
		"REABASTECIMIENTO", "REPARACION", "REPARACION DE BAÑADERA", "REPARACION DE OBRES", "PRESTAMO",
		"REPOSICION", "REPOSICION DE MATERIALES", "TRASLADO INTERNO",
	},
	EventoSinEvento: {"SIN_EVENTO", "DEVOLVIO", "REFUGIO SEN"},
}

var (
	eventIndex = buildIndex(events, eventAliases)

	eventKeywords = []struct {
		keyword string
		evento  string
	}{
		{"COVID", "COVID"},
		{"INCENDIO", "INCENDIO"},
		{"TORMENTA", "TORMENTA SEVERA"},
		{"TEMPORAL", "TORMENTA SEVERA"},
		{"INUNDACION", "INUNDACION"},
		{"SEQUIA", "SEQUIA"},
		{"JAHO", "OPERATIVO JAHO'I"},
		{"NENUA", "OPERATIVO JAHO'I"},
		{"OLLA", "OLLA POPULAR"},
		{"VULNERABILIDAD", "EXTREMA VULNERABILIDAD"},
		{"CIDH", "C.I.D.H."},
	}
)

// NormalizeEvent maps a raw event onto its canonical name. Unknown events become OTROS
// with ok false. An empty value yields "" and false; callers treat it as a missing event.
// The result may be EventoDescartado or EventoSinEvento.
func NormalizeEvent(raw string) (string, bool) {
	key := fold(raw)
	if key == "" {
		return "", false
	}
	if e, ok := eventIndex[key]; ok {
		return e, true
	}

	for _, kw := range eventKeywords {
		if strings.Contains(key, kw.keyword) {
			return kw.evento, true
		}
	}

	return EventoOtros, false
}
