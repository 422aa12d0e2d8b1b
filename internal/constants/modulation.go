package constants

// Modulation selects which tract parameter a connectivity matrix entry scales.
type Modulation string

const (
	// ModulationCon scales connectivity by the matrix entry.
	ModulationCon Modulation = "con"

	// ModulationEff scales efficacy by the matrix entry.
	ModulationEff Modulation = "eff"
)

// Valid returns true if the modulation is a recognized value.
func (m Modulation) Valid() bool {
	switch m {
	case ModulationCon, ModulationEff:
		return true
	}
	return false
}

// OrDefault returns ModulationCon for an unset modulation.
func (m Modulation) OrDefault() Modulation {
	if m == "" {
		return ModulationCon
	}
	return m
}

// String returns the string representation of the modulation.
func (m Modulation) String() string {
	return string(m)
}
