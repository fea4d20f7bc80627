package chipset

import (
	"fmt"
	"strings"
)

// Generation identifies a chipset family with an SPI controller this module can drive.
// A Generation is chosen once per controller and never changes afterwards.
type Generation int

// Supported chipset generations.
const (
	Unknown Generation = iota
	ICH7
	TunnelCreek
	Centerton
	VIA
	ICH8
	ICH9
	ICH10
	Series5IbexPeak
	Series6CougarPoint
	Series7PantherPoint
	Series8LynxPoint
	Series8LynxPointLP
	Series8Wellsburg
	Baytrail
	Series9WildcatPoint
	Series9WildcatPointLP
	Series100SunrisePoint
	C620Lewisburg
	Series300CannonPoint
	Series400CometPoint
	Series500TigerPoint
	Series600AlderPoint
	MeteorLake
	ApolloLake
	GeminiLake
	JasperLake
	ElkhartLake
	C740Emmitsburg

	numGenerations
)

var generationNames = [...]string{
	Unknown:               "unknown",
	ICH7:                  "ich7",
	TunnelCreek:           "tunnel-creek",
	Centerton:             "centerton",
	VIA:                   "via",
	ICH8:                  "ich8",
	ICH9:                  "ich9",
	ICH10:                 "ich10",
	Series5IbexPeak:       "5-series-ibex-peak",
	Series6CougarPoint:    "6-series-cougar-point",
	Series7PantherPoint:   "7-series-panther-point",
	Series8LynxPoint:      "8-series-lynx-point",
	Series8LynxPointLP:    "8-series-lynx-point-lp",
	Series8Wellsburg:      "8-series-wellsburg",
	Baytrail:              "baytrail",
	Series9WildcatPoint:   "9-series-wildcat-point",
	Series9WildcatPointLP: "9-series-wildcat-point-lp",
	Series100SunrisePoint: "100-series-sunrise-point",
	C620Lewisburg:         "c620-series-lewisburg",
	Series300CannonPoint:  "300-series-cannon-point",
	Series400CometPoint:   "400-series-comet-point",
	Series500TigerPoint:   "500-series-tiger-point",
	Series600AlderPoint:   "600-series-alder-point",
	MeteorLake:            "meteor-lake",
	ApolloLake:            "apollo-lake",
	GeminiLake:            "gemini-lake",
	JasperLake:            "jasper-lake",
	ElkhartLake:           "elkhart-lake",
	C740Emmitsburg:        "c740-series-emmitsburg",
}

// String returns the canonical lower-case name of the generation.
func (g Generation) String() string {
	if g < 0 || g >= numGenerations {
		return fmt.Sprintf("generation(%d)", int(g))
	}
	return generationNames[g]
}

// Valid reports whether g is one of the known generations (Unknown excluded).
func (g Generation) Valid() bool {
	return g > Unknown && g < numGenerations
}

// Generations returns every known generation except Unknown, in declaration order.
func Generations() []Generation {
	gens := make([]Generation, 0, int(numGenerations)-1)
	for g := ICH7; g < numGenerations; g++ {
		gens = append(gens, g)
	}
	return gens
}

// ParseGeneration resolves a generation from its canonical name.
// Matching is case-insensitive and accepts underscores in place of dashes.
func ParseGeneration(name string) (Generation, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for g, s := range generationNames {
		if s == n {
			return Generation(g), nil
		}
	}
	return Unknown, fmt.Errorf("unknown chipset generation %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (g Generation) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Generation) UnmarshalText(text []byte) error {
	gen, err := ParseGeneration(string(text))
	if err != nil {
		return err
	}
	*g = gen
	return nil
}
