// Package bench holds the built-in synthetic workloads the runner can
// measure. Each workload is a factory: given a run's parameter values
// it does its setup once and returns the operation the runner times.
package bench

import (
	"crypto/sha256"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
)

// Op is one timed invocation of a workload.
type Op func() error

// Factory builds an Op for one parameter combination.
type Factory func(params map[string]string) (Op, error)

var registry = map[string]Factory{
	"alloc": alloc,
	"sort":  sortInts,
	"hash":  hash,
}

func Lookup(name string) (Factory, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown workload %q", name)
	}
	return f, nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sizeParam(params map[string]string) (int, error) {
	raw, ok := params["size"]
	if !ok {
		return 1024, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size < 1 {
		return 0, fmt.Errorf("bad size parameter %q", raw)
	}
	return size, nil
}

var sink []byte

func alloc(params map[string]string) (Op, error) {
	size, err := sizeParam(params)
	if err != nil {
		return nil, err
	}
	return func() error {
		sink = make([]byte, size)
		return nil
	}, nil
}

func sortInts(params map[string]string) (Op, error) {
	size, err := sizeParam(params)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(42))
	input := make([]int, size)
	for i := range input {
		input[i] = rng.Int()
	}
	scratch := make([]int, size)
	return func() error {
		copy(scratch, input)
		sort.Ints(scratch)
		return nil
	}, nil
}

func hash(params map[string]string) (Op, error) {
	size, err := sizeParam(params)
	if err != nil {
		return nil, err
	}
	data := make([]byte, size)
	rand.New(rand.NewSource(42)).Read(data)
	var digest [sha256.Size]byte
	return func() error {
		digest = sha256.Sum256(data)
		_ = digest
		return nil
	}, nil
}
