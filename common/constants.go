package common

const (
	SrcFileExtension = ".dk"
	OutFileExtension = ".vasm"
	ProjectFileName  = "dusk.toml"
	DuskVersion      = "0.3.1"

	// DefaultMaxParams is the hard cap on function parameters used when no
	// project file overrides it.  The virtual machine reserves this many
	// registers for call setup.
	DefaultMaxParams = 8
)
