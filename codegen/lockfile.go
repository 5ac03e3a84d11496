package codegen

import (
	"encoding/json"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/reilabs/cairo-hints-go/schema"
)

// MarshalLockFile renders cfg as the pretty-printed JSON lock file from
// spec.md §4.1/§6. encoding/json already sorts map[string]T keys when
// marshalling, so Configuration's Messages/Enums/Services maps come out
// sorted by key for free -- the determinism rule spec.md §4.1 states
// explicitly -- without any bespoke sorting pass here.
func MarshalLockFile(cfg *schema.Configuration) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}

// Result is everything one call to Generate produces: the lock file
// Configuration and the generated Cairo source, keyed by proto package (or
// file name, for packageless files).
type Result struct {
	Configuration *schema.Configuration
	CairoSources  map[string]string
}

// Generate runs the full spec.md §4.1 pipeline over fds: build the schema
// lock file, then render Cairo source per package against that same
// resolved type set.
func Generate(fds *descriptorpb.FileDescriptorSet) (*Result, error) {
	cfg, err := BuildConfiguration(fds)
	if err != nil {
		return nil, err
	}
	sources, err := GenerateCairoSource(fds)
	if err != nil {
		return nil, err
	}
	return &Result{Configuration: cfg, CairoSources: sources}, nil
}
