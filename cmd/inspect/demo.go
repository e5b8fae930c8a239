package main

import (
	"fmt"
	"strings"

	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/magic"
	"github.com/wippyai/perlbind/marshal"
	"github.com/wippyai/perlbind/xs"
)

// The demo exports exercise the whole bridge: plain marshaling, list
// returns, and a class-style object carrying native state.

type counter struct {
	n int64
}

var (
	counterTag  = magic.NewTag[counter]()
	counterSpec = magic.NewSpec(counterTag).WithName("counter")
)

func registerDemo(reg *xs.Registry) error {
	exports := []struct {
		pkg, name, proto string
		entry            xs.XSub
	}{
		{"Demo", "greet", "$;$", xs.Wrap(greet)},
		{"Demo", "sum", "@", xs.Wrap(sum)},
		{"Demo", "split_words", "$", xs.Wrap(splitWords, xs.WithListReturn())},
		{"Counter", "new", "$;$", xs.Wrap(counterNew)},
		{"Counter", "incr", "$;$", xs.Wrap(counterIncr)},
		{"Counter", "value", "$", xs.Wrap(counterValue)},
	}
	for _, e := range exports {
		if err := reg.Register(e.pkg, e.name, e.entry, e.proto); err != nil {
			return err
		}
	}
	return nil
}

func greet(c *xs.Call) (any, error) {
	nameArg, err := c.Args.Next("name")
	if err != nil {
		return nil, err
	}
	var name string
	if err := marshal.FromValue(nameArg, &name); err != nil {
		return nil, err
	}
	greeting := "Hello"
	if g, ok := c.Args.Optional(); ok {
		if err := marshal.FromValue(g, &greeting); err != nil {
			return nil, err
		}
	}
	if err := c.Args.Finish(2); err != nil {
		return nil, err
	}
	return fmt.Sprintf("%s, %s!", greeting, name), nil
}

func sum(c *xs.Call) (any, error) {
	var total int64
	for {
		v, ok := c.Args.Optional()
		if !ok {
			break
		}
		var n int64
		if err := marshal.FromValue(v, &n); err != nil {
			return nil, err
		}
		total += n
	}
	return total, nil
}

func splitWords(c *xs.Call) (any, error) {
	v, err := c.Args.Next("text")
	if err != nil {
		return nil, err
	}
	var text string
	if err := marshal.FromValue(v, &text); err != nil {
		return nil, err
	}
	if err := c.Args.Finish(1); err != nil {
		return nil, err
	}
	return strings.Fields(text), nil
}

func counterNew(c *xs.Call) (any, error) {
	// First argument is the class name, as the host passes it.
	cls, err := c.Args.Next("class")
	if err != nil {
		return nil, err
	}
	var pkg string
	if err := marshal.FromValue(cls, &pkg); err != nil {
		return nil, err
	}
	var start int64
	if v, ok := c.Args.Optional(); ok {
		if err := marshal.FromValue(v, &start); err != nil {
			return nil, err
		}
	}
	if err := c.Args.Finish(2); err != nil {
		return nil, err
	}
	obj := magic.NewBlessed(c.Interp, counterSpec, pkg, &counter{n: start})
	return marshal.Single(obj), nil
}

func counterSelf(c *xs.Call) (*counter, *dyn.Value, error) {
	self, err := c.Args.Next("self")
	if err != nil {
		return nil, nil, err
	}
	state, err := magic.FromRef(self, counterSpec)
	if err != nil {
		self.Release()
		return nil, nil, err
	}
	return state, self, nil
}

func counterIncr(c *xs.Call) (any, error) {
	state, self, err := counterSelf(c)
	if err != nil {
		return nil, err
	}
	defer self.Release()
	by := int64(1)
	if v, ok := c.Args.Optional(); ok {
		if err := marshal.FromValue(v, &by); err != nil {
			return nil, err
		}
	}
	if err := c.Args.Finish(2); err != nil {
		return nil, err
	}
	state.n += by
	return state.n, nil
}

func counterValue(c *xs.Call) (any, error) {
	state, self, err := counterSelf(c)
	if err != nil {
		return nil, err
	}
	defer self.Release()
	if err := c.Args.Finish(1); err != nil {
		return nil, err
	}
	return state.n, nil
}
