// Package tracegen mechanically derives the gc.Traceable capability for
// user-defined aggregate types. It applies the gc package's composition
// rule over go/types: a type may carry the marker only if every field is
// itself traceable, so the generator can never emit a capability that hides
// a reference from a future collector. Named aggregates are held to the
// per-type contract: a struct type reached through a field must either
// declare the capability or be requested in the same run.
package tracegen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// GenOptions controls capability generation.
type GenOptions struct {
	// Named types to derive the capability for. All must live in the same
	// package. Required.
	Types []string
	// Package name of the generated code. If empty, the target package's
	// name is used.
	PackageName string
	// Destination path for the generated file. If empty, the code is only
	// returned.
	Destination string
	// Source patterns passed to go/packages (e.g. []string{"./..."}).
	SourcePatterns []string
	// Build tags. Empty means none.
	BuildTags []string
	// Dir is the working directory for package loading. Empty means the
	// process's working directory.
	Dir string
}

// Generate derives the Traceable marker for the requested types and returns
// the generated source. Every requested type is verified against the
// composition rule first; a type with a non-traceable field is an error,
// never a silently unsound capability.
func Generate(opts GenOptions) (string, error) {
	if len(opts.Types) == 0 {
		return "", errors.New("at least one type is required")
	}
	patterns := opts.SourcePatterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedSyntax,
		Dir: opts.Dir,
	}
	if len(opts.BuildTags) > 0 {
		cfg.BuildFlags = append(cfg.BuildFlags, fmt.Sprintf("-tags=%s", strings.Join(opts.BuildTags, ",")))
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return "", fmt.Errorf("load source packages: %w", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return "", errors.New("failed to load packages")
	}

	targets, pkg, err := resolveTargets(pkgs, opts.Types)
	if err != nil {
		return "", err
	}

	// Requested siblings are assumed traceable, so mutually recursive
	// aggregates can be derived together.
	c := newChecker(targets)
	for _, tgt := range targets {
		if err := c.checkTarget(tgt); err != nil {
			return "", err
		}
	}

	genPkgName := opts.PackageName
	if genPkgName == "" {
		genPkgName = pkg.Name
	}
	names := make([]string, len(targets))
	for i, tgt := range targets {
		names[i] = tgt.Obj().Name()
	}
	code := render(genPkgName, names)

	if opts.Destination != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Destination), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		if err := os.WriteFile(opts.Destination, []byte(code), 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", opts.Destination, err)
		}
	}
	return code, nil
}

// resolveTargets finds each requested named type, requiring all of them to
// live in one package (they share one generated file).
func resolveTargets(pkgs []*packages.Package, names []string) ([]*types.Named, *packages.Package, error) {
	var (
		targets []*types.Named
		home    *packages.Package
	)
	for _, name := range names {
		var found *types.Named
		var foundIn *packages.Package
		for _, p := range pkgs {
			if p.Types == nil || p.Types.Scope() == nil {
				continue
			}
			obj := p.Types.Scope().Lookup(name)
			if obj == nil {
				continue
			}
			named, ok := obj.Type().(*types.Named)
			if !ok {
				return nil, nil, fmt.Errorf("type %q is not a named type", name)
			}
			found = named
			foundIn = p
			break
		}
		if found == nil {
			return nil, nil, fmt.Errorf("type %q not found in provided source patterns", name)
		}
		if found.TypeParams().Len() > 0 {
			return nil, nil, fmt.Errorf("type %q is generic; derive the capability for its instantiations instead", name)
		}
		if home == nil {
			home = foundIn
		} else if home != foundIn {
			return nil, nil, fmt.Errorf("types %q and %q live in different packages", names[0], name)
		}
		targets = append(targets, found)
	}
	return targets, home, nil
}

// checker applies the composition rule over go/types.
type checker struct {
	assume map[*types.TypeName]bool
}

func newChecker(targets []*types.Named) *checker {
	assume := make(map[*types.TypeName]bool, len(targets))
	for _, tgt := range targets {
		assume[tgt.Obj()] = true
	}
	return &checker{assume: assume}
}

// checkTarget verifies every structurally held part of a requested type,
// reporting the first offending field.
func (c *checker) checkTarget(tgt *types.Named) error {
	name := tgt.Obj().Name()
	st, ok := tgt.Underlying().(*types.Struct)
	if !ok {
		if !c.traceable(tgt.Underlying(), map[types.Type]bool{}) {
			return fmt.Errorf("type %s: underlying %s is not traceable", name, tgt.Underlying())
		}
		return nil
	}
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !c.traceable(f.Type(), map[types.Type]bool{}) {
			return fmt.Errorf("type %s: field %s (%s) is not traceable", name, f.Name(), f.Type())
		}
	}
	return nil
}

// traceable applies the gc package's composition rule over go/types, with
// one deliberate tightening: a named aggregate is only admitted when it
// declares the capability itself or is requested alongside. Emitting a
// marker for a type whose named struct fields never asked for one would
// vouch for aggregates behind their owner's back; the runtime walk in the
// gc package stays structural and remains the enforcement floor.
// visiting makes recursive types terminate: a type reached through its own
// fields is admitted while its check is in flight.
func (c *checker) traceable(t types.Type, visiting map[types.Type]bool) bool {
	if visiting[t] {
		return true
	}
	visiting[t] = true
	defer delete(visiting, t)

	if named, ok := t.(*types.Named); ok && c.assume[named.Obj()] {
		return true
	}
	if hasMarker(t) {
		return true
	}
	if named, ok := t.(*types.Named); ok {
		if _, isAggregate := named.Underlying().(*types.Struct); isAggregate {
			return false
		}
	}

	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch u.Kind() {
		case types.Bool,
			types.Int, types.Int8, types.Int16, types.Int32, types.Int64,
			types.Uint, types.Uint8, types.Uint16, types.Uint32, types.Uint64,
			types.Float32, types.Float64,
			types.Complex64, types.Complex128,
			types.String:
			return true
		default:
			// uintptr, unsafe.Pointer, untyped kinds
			return false
		}
	case *types.Slice:
		return c.traceable(u.Elem(), visiting)
	case *types.Array:
		return c.traceable(u.Elem(), visiting)
	case *types.Pointer:
		return c.traceable(u.Elem(), visiting)
	case *types.Map:
		return c.traceable(u.Key(), visiting) && c.traceable(u.Elem(), visiting)
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			if !c.traceable(u.Field(i).Type(), visiting) {
				return false
			}
		}
		return true
	default:
		// chan, func, interface: references the rule cannot see through.
		return false
	}
}

// hasMarker reports whether t (or *t) declares the capability: a method
// set containing a niladic Traceable().
func hasMarker(t types.Type) bool {
	for _, typ := range []types.Type{t, types.NewPointer(t)} {
		ms := types.NewMethodSet(typ)
		for i := 0; i < ms.Len(); i++ {
			obj := ms.At(i).Obj()
			if obj.Name() != "Traceable" {
				continue
			}
			sig, ok := obj.Type().(*types.Signature)
			if !ok {
				continue
			}
			if sig.Params().Len() == 0 && sig.Results().Len() == 0 {
				return true
			}
		}
	}
	return false
}

// render emits the marker declarations, gofmt-ed.
func render(pkg string, names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	var buf bytes.Buffer
	buf.WriteString("// Code generated by tracegen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	for _, n := range sorted {
		fmt.Fprintf(&buf, "// Traceable marks %s as safe for reference discovery:\n// every field is itself traceable.\nfunc (%s) Traceable() {}\n\n", n, n)
	}

	fmted, err := format.Source(buf.Bytes())
	if err != nil {
		// Return unformatted for easier debugging
		return buf.String()
	}
	return string(fmted)
}
