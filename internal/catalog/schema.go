// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource string

var (
	// cue.Context is not safe for concurrent use.
	schemaMu   sync.Mutex
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

func catalogSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compiling catalog schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Catalog"))
		if !schemaDef.Exists() {
			schemaErr = fmt.Errorf("catalog schema has no #Catalog definition")
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// validateSchema checks catalog YAML against the #Catalog definition.
func validateSchema(name string, data []byte) error {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	ctx, def, err := catalogSchema()
	if err != nil {
		return err
	}
	file, err := cueyaml.Extract(name, data)
	if err != nil {
		return fmt.Errorf("parsing catalog %s: %w", name, err)
	}
	v := ctx.BuildFile(file)
	if err := v.Err(); err != nil {
		return fmt.Errorf("building catalog %s: %w", name, err)
	}
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid catalog %s: %w", name, err)
	}
	return nil
}
