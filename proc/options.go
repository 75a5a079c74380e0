package proc

import "os"

// Environment variables consulted by RunEmbeddedCaptured. When the
// image variable is set, embedded runs are redirected to the named
// ahead-of-time compiled binary and executed natively instead.
const (
	EnvAOTImage = "VERIRUN_AOT_IMAGE"
	EnvAOTArgs  = "VERIRUN_AOT_ARGS"
)

// aotImage is looked up per call, not cached, so tests can flip the
// variable with t.Setenv and suites can toggle it between cases.
func aotImage() string { return os.Getenv(EnvAOTImage) }

func aotArgs() string { return os.Getenv(EnvAOTArgs) }
