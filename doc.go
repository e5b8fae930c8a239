// Package perlbind bridges native Go functions and a refcounted Perl-style
// interpreter: values marshal between Go types and interpreter cells, native
// state rides on blessed references, and exported functions speak the
// interpreter's stack calling convention.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	perlbind/            Root package, documentation only
//	├── interp/          Modeled interpreter: cells, refcounts, stacks, magic
//	├── dyn/             Owned handles over cells (Scalar, Array, Hash, Value)
//	├── marshal/         Reflection serializer/deserializer for Go values
//	├── magic/           Typed native attachments and blessed object helpers
//	├── xs/              Export wrapping, argument protocol, call harness
//	├── fixture/         YAML fixtures that build interpreter values
//	└── errors/          Structured error types with phase and kind
//
// # Quick Start
//
// Wrap a Go function as an export and call it:
//
//	reg := xs.NewRegistry()
//	reg.Register("Demo", "greet", xs.Wrap(func(c *xs.Call) (any, error) {
//	    v, err := c.Args.Next("name")
//	    if err != nil {
//	        return nil, err
//	    }
//	    var name string
//	    if err := marshal.FromValue(v, &name); err != nil {
//	        return nil, err
//	    }
//	    return "Hello, " + name + "!", nil
//	}), "$")
//
//	ip := interp.New()
//	results, err := xs.CallNamed(ip, reg, "Demo", "greet", args...)
//
// # Ownership Model
//
// Every dyn handle owns exactly one reference count on its cell. Release
// gives the count back; IntoMortal hands it to the interpreter's deferred
// free list; IntoCell forgets the handle and leaks the count to the caller.
// Dropping a handle without one of these leaks the cell.
//
// # Thread Safety
//
// An Interp and every handle derived from it belong to a single goroutine.
// Registries and magic tags are safe for concurrent use.
package perlbind
