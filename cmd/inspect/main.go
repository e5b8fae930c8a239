package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/fixture"
	"github.com/wippyai/perlbind/interp"
	"github.com/wippyai/perlbind/xs"
)

func main() {
	var (
		fixtureFile = flag.String("fixture", "", "YAML file with call arguments")
		callName    = flag.String("call", "", "Export to call (Pkg::name)")
		list        = flag.Bool("list", false, "List registered exports and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	reg := xs.NewRegistry()
	if err := registerDemo(reg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(reg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !*list && *callName == "" {
		fmt.Fprintln(os.Stderr, "Usage: inspect -list")
		fmt.Fprintln(os.Stderr, "       inspect -call Pkg::name [-fixture args.yaml]")
		fmt.Fprintln(os.Stderr, "       inspect -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(reg, *callName, *fixtureFile, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(reg *xs.Registry, callName, fixtureFile string, listOnly bool) error {
	fmt.Printf("Registered exports:\n")
	reg.Each(func(e *xs.Export) {
		fmt.Printf("  %s::%s(%s)\n", e.Pkg, e.Name, e.Proto)
	})

	if listOnly {
		return nil
	}

	pkg, name, ok := strings.Cut(callName, "::")
	if !ok {
		return fmt.Errorf("call target must be Pkg::name, got %q", callName)
	}

	ip := interp.New()

	var args []*dyn.Value
	if fixtureFile != "" {
		root, err := fixture.LoadFile(ip, fixtureFile)
		if err != nil {
			return err
		}
		args = splitArgs(root)
	}

	fmt.Printf("\nCalling %s::%s with %d argument(s)...\n", pkg, name, len(args))
	results, err := xs.CallNamed(ip, reg, pkg, name, args...)
	if err != nil {
		return err
	}

	fmt.Printf("\nResults (%d):\n", len(results))
	for i, r := range results {
		fmt.Printf("[%d] %s\n", i, renderValue(r, 1))
		r.Release()
	}
	return nil
}

// splitArgs treats a top-level sequence fixture as the argument list and
// anything else as a single argument.
func splitArgs(root *dyn.Value) []*dyn.Value {
	target, ok := root.Dereference()
	if !ok {
		return []*dyn.Value{root}
	}
	arr, err := target.AsArray()
	if err != nil {
		target.Release()
		return []*dyn.Value{root}
	}
	var args []*dyn.Value
	it := arr.Iter()
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		args = append(args, v)
	}
	arr.Release()
	root.Release()
	return args
}

var (
	scalarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	refStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF9ECD"))

	undefStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// renderValue prints the result tree, following references one level at a
// time.
func renderValue(v *dyn.Value, depth int) string {
	pad := strings.Repeat("  ", depth)
	switch v.Kind() {
	case dyn.KindReference:
		target, ok := v.Dereference()
		if !ok {
			return refStyle.Render("\\<dangling>")
		}
		defer target.Release()
		cls := ""
		if b := v.Blessed(); b != "" {
			cls = " (" + b + ")"
		}
		return refStyle.Render("\\"+cls) + renderValue(target, depth)

	case dyn.KindArray:
		clone := v.CloneRef()
		arr, err := clone.AsArray()
		if err != nil {
			clone.Release()
			return "?"
		}
		defer arr.Release()
		var b strings.Builder
		b.WriteString("[\n")
		it := arr.Iter()
		for {
			e, ok := it.Next()
			if !ok {
				break
			}
			b.WriteString(pad + "  " + renderValue(e, depth+1) + "\n")
			e.Release()
		}
		b.WriteString(pad + "]")
		return b.String()

	case dyn.KindHash:
		clone := v.CloneRef()
		h, err := clone.AsHash()
		if err != nil {
			clone.Release()
			return "?"
		}
		defer h.Release()
		var b strings.Builder
		b.WriteString("{\n")
		it := h.SharedIter()
		for {
			k, e, ok := it.Next()
			if !ok {
				break
			}
			b.WriteString(pad + "  " + keyStyle.Render(k) + ": " + renderValue(e, depth+1) + "\n")
			e.Release()
		}
		b.WriteString(pad + "}")
		return b.String()

	default:
		if v.IsUndef() {
			return undefStyle.Render("undef")
		}
		return scalarStyle.Render(v.PVUTF8())
	}
}
