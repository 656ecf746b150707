// Package repparams holds the bit-exact protocol constants for the Reports
// state machine, alongside the handful of environment-specific knobs the
// spec leaves to the integrator.
package repparams

// Protocol constants. Values are bit-exact per the interop spec; do not
// tune these per deployment.
const (
	// SuperMajorityNumerator and SuperMajorityDenominator express the 2/3
	// endorsement threshold as an exact fraction (avoids floating point).
	SuperMajorityNumerator   = 2
	SuperMajorityDenominator = 3

	ReportTimeoutSlots      uint64 = 100
	MaxDependencies         int    = 10
	MaxWorkReportGas        uint64 = 200000
	MinServiceItemGas       uint64 = 10
	MaxCoreIndex            uint32 = 1023
	AnchorMaxAgeSlots       uint64 = 50
	// RecentHistoryLookupSlots is kept bit-exact per §6 even though check 13
	// (duplicate_package_in_recent_history) tests ξ membership directly
	// rather than a slot-bounded window; no processor reads this constant.
	RecentHistoryLookupSlots uint64 = 200

	// EpochLengthSlots is the true epoch length used for guarantor-roster
	// assignment. The spec's source reused ReportTimeoutSlots for this
	// purpose, which §9 flags as almost certainly a bug; SPEC_FULL.md
	// resolves the open question by giving the epoch its own constant.
	EpochLengthSlots uint64 = 600
)

// Threshold returns ceil(n * SuperMajorityNumerator / SuperMajorityDenominator).
func Threshold(n int) int {
	if n <= 0 {
		return 0
	}
	num := n * SuperMajorityNumerator
	return (num + SuperMajorityDenominator - 1) / SuperMajorityDenominator
}

// Config carries the non-bit-exact knobs an integrator may tune: logging
// verbosity and the expected guarantor roster size bounds. Config only
// holds these values; no processor, the logger or the vector hydration code
// reads them. Grounded on params.DPoSConfig's
// role as the mutable counterpart to the const-block protocol parameters in
// params/protocol_params.go.
type Config struct {
	LogVerbosity    string `toml:"log_verbosity"`
	MinRosterSize   int    `toml:"min_roster_size"`
	MaxRosterSize   int    `toml:"max_roster_size"`
}

// DefaultConfig returns the configuration used when no override file is
// supplied.
func DefaultConfig() Config {
	return Config{
		LogVerbosity:  "info",
		MinRosterSize: 1,
		MaxRosterSize: 1024,
	}
}
