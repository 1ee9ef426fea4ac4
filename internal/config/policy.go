package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/matthewbaird/opsconsole/internal/permission"
)

//go:embed default_policy.cue
var defaultPolicy []byte

const policySchema = `
#Policy: {
	default_home: string
	roles: [string]: {
		capabilities: [...string]
		home?: string
	}
}
`

// LoadPolicy reads the role policy from path, or the embedded default when
// path is empty.
func LoadPolicy(path string) (*permission.Policy, error) {
	if path == "" {
		return ParsePolicy("default_policy.cue", defaultPolicy)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy: %w", err)
	}
	return ParsePolicy(path, src)
}

// ParsePolicy compiles CUE source, checks it against the policy schema and
// decodes it. The value must be concrete.
func ParsePolicy(filename string, src []byte) (*permission.Policy, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(policySchema).LookupPath(cue.ParsePath("#Policy"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling policy schema: %w", err)
	}

	val := ctx.CompileBytes(src, cue.Filename(filename))
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("compiling policy %s: %w", filename, err)
	}
	val = schema.Unify(val)
	if err := val.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validating policy %s: %w", filename, err)
	}

	var p permission.Policy
	if err := val.Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding policy %s: %w", filename, err)
	}
	return &p, nil
}
