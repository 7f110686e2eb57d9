package catalog

// Direction encodes an instrument's scoring directionality.
type Direction string

const (
	// LowerIsBetter means a score decrease represents clinical improvement
	// (pain and disability indexes).
	LowerIsBetter Direction = "lower"
	// HigherIsBetter means a score increase represents clinical improvement
	// (functional capacity scales).
	HigherIsBetter Direction = "higher"
)

// Instrument is a static outcome-measure definition. MCID is the minimal
// clinically important difference for the instrument, always positive.
type Instrument struct {
	Code      string    `yaml:"code"`
	Name      string    `yaml:"name"`
	MCID      float64   `yaml:"mcid"`
	Direction Direction `yaml:"direction"`
}

// BuiltinInstruments lists the instruments the registry ships with, in
// canonical order. MCID values follow commonly cited literature thresholds;
// they are interpretive reference points, not universal cutoffs.
var BuiltinInstruments = []Instrument{
	{Code: "NPRS", Name: "Numeric Pain Rating Scale", MCID: 2, Direction: LowerIsBetter},
	{Code: "ODI", Name: "Oswestry Disability Index", MCID: 10, Direction: LowerIsBetter},
	{Code: "NDI", Name: "Neck Disability Index", MCID: 7.5, Direction: LowerIsBetter},
	{Code: "QUICKDASH", Name: "QuickDASH", MCID: 8, Direction: LowerIsBetter},
	{Code: "LEFS", Name: "Lower Extremity Functional Scale", MCID: 9, Direction: HigherIsBetter},
	{Code: "PSFS", Name: "Patient-Specific Functional Scale", MCID: 2, Direction: HigherIsBetter},
	{Code: "BBS", Name: "Berg Balance Scale", MCID: 5, Direction: HigherIsBetter},
	{Code: "TUG", Name: "Timed Up and Go", MCID: 3.4, Direction: LowerIsBetter},
}

// Catalog is a read-only instrument registry keyed by code. Built once at
// process start; there is no mutation path after that.
type Catalog struct {
	byCode map[string]Instrument
	codes  []string
}

// New builds a catalog from the given instruments. Later entries with a
// duplicate code replace earlier ones, which is how file-based overrides
// layer on top of the builtins.
func New(instruments []Instrument) *Catalog {
	c := &Catalog{byCode: make(map[string]Instrument, len(instruments))}
	for _, ins := range instruments {
		if _, seen := c.byCode[ins.Code]; !seen {
			c.codes = append(c.codes, ins.Code)
		}
		c.byCode[ins.Code] = ins
	}
	return c
}

// Builtin returns a catalog holding only the built-in instruments.
func Builtin() *Catalog {
	return New(BuiltinInstruments)
}

// Lookup returns the instrument for the given code. Unknown codes return
// ok=false; callers must degrade the affected classification to incomplete
// rather than fail.
func (c *Catalog) Lookup(code string) (Instrument, bool) {
	ins, ok := c.byCode[code]
	return ins, ok
}

// Codes returns the registered instrument codes in registration order.
func (c *Catalog) Codes() []string {
	out := make([]string, len(c.codes))
	copy(out, c.codes)
	return out
}

// Len returns the number of registered instruments.
func (c *Catalog) Len() int {
	return len(c.byCode)
}
