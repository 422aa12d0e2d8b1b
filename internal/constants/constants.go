// Package constants provides named constants used throughout netgen.
// This centralizes parameter keys, tags and file names shared by the engine
// and its writers.
package constants

// Pattern tags understood by the connectivity matrix synthesizer.
const (
	PatternAll      = "all"      // every pair connected
	PatternSyn      = "syn"      // equal index
	PatternAnti     = "anti"     // unequal index
	PatternRandBool = "randbool" // Bernoulli draw per cell
)

// Event type tags.
const (
	EventChangeExtFreq = "ChangeExtFreq"
	EventEndTrial      = "EndTrial"
)

// Transform operation names.
const (
	// TransformPopScale multiplies every population size and compensates
	// connectivity on every connection template.
	TransformPopScale = "popscale"

	// TransformEfficacy multiplies efficacy of connections with a matching
	// display name.
	TransformEfficacy = "efficacy"
)

// Population parameter keys.
const (
	// ParamSize is the population size rescaled by popscale.
	ParamSize = "N"
)

// Receptor parameter keys. Every receptor carries at least these, in this order.
const (
	ReceptorTau        = "Tau"
	ReceptorRevPot     = "RevPot"
	ReceptorFreqExt    = "FreqExt"
	ReceptorFreqExtSD  = "FreqExtSD"
	ReceptorMeanExtEff = "MeanExtEff"
	ReceptorMeanExtCon = "MeanExtCon"
)

// ReceptorKeys lists the receptor parameters in serialization order.
var ReceptorKeys = []string{
	ReceptorTau,
	ReceptorRevPot,
	ReceptorFreqExt,
	ReceptorFreqExtSD,
	ReceptorMeanExtEff,
	ReceptorMeanExtCon,
}

// Tract payload keys as written to the simulator configuration.
const (
	TractTargetReceptor = "TargetReceptor"
	TractSTFTau         = "STFacilitationTau"
	TractSTFP           = "STFacilitationP"
	TractConnectivity   = "Connectivity"
	TractMeanEff        = "MeanEff"
)

// Graph node and edge kinds used by the store and renderers.
const (
	NodeKindPopulation = "population"
	NodeKindHandle     = "handle"

	EdgeKindTract = "tract" // population -> population
	EdgeKindDrive = "drive" // handle -> population
)

// Default output file names.
const (
	ConfFileName  = "network.conf"
	ProFileName   = "network.pro"
	CSVFileName   = "net.csv"
	ArrowFileName = "tracts.arrow"
	DBFileName    = "netgen.db"
	TraceFileName = "generation.jsonl"
)

// NetgenDir is the per-project state directory.
const NetgenDir = ".netgen"

// DefaultSeed seeds the randbool stream when nothing else is configured.
const DefaultSeed = 1

// MCP tool names.
const (
	ToolGenerate = "netgen_generate"
	ToolGraph    = "netgen_graph"
	ToolValidate = "netgen_validate"
	ToolEvents   = "netgen_events"
)

// AuditFileName is the MCP tool audit log under NetgenDir.
const AuditFileName = "audit.jsonl"
