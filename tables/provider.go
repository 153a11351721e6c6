// Package tables provides the default, filesystem-backed bufr.TableProvider:
// Table B and Table D rows loaded from semicolon-delimited CSV files laid
// out per master table version, originating centre, and local table
// version.
package tables

import (
	"fmt"
	"sync"

	"github.com/rob-gra/bufr/bufr"
)

// Provider is a bufr.TableProvider backed by CSV files under Root, one
// pair of files (element + sequence) per version triple, cached after
// first load.
type Provider struct {
	Root string

	mu    sync.Mutex
	elems map[versionTriple]map[bufr.Key]bufr.ElementDescriptor
	seqs  map[versionTriple]map[bufr.Key]bufr.SequenceDescriptor
}

type versionTriple struct {
	masterVersion int
	centre        int
	localVersion  int
}

// NewProvider returns a Provider rooted at root.
func NewProvider(root string) *Provider {
	return &Provider{
		Root:  root,
		elems: make(map[versionTriple]map[bufr.Key]bufr.ElementDescriptor),
		seqs:  make(map[versionTriple]map[bufr.Key]bufr.SequenceDescriptor),
	}
}

// Element implements bufr.TableProvider.
func (sf *Provider) Element(masterVersion, centre, localVersion int, k bufr.Key) (bufr.ElementDescriptor, error) {
	t := versionTriple{masterVersion, centre, localVersion}
	table, err := sf.elementTable(t)
	if err != nil {
		return bufr.ElementDescriptor{}, err
	}
	el, ok := table[k]
	if !ok {
		return bufr.ElementDescriptor{}, fmt.Errorf("tables: %s: %w", k, bufr.ErrUnknownDescriptor)
	}
	return el, nil
}

// Sequence implements bufr.TableProvider.
func (sf *Provider) Sequence(masterVersion, centre, localVersion int, k bufr.Key) (bufr.SequenceDescriptor, error) {
	t := versionTriple{masterVersion, centre, localVersion}
	table, err := sf.sequenceTable(t)
	if err != nil {
		return bufr.SequenceDescriptor{}, err
	}
	seq, ok := table[k]
	if !ok {
		return bufr.SequenceDescriptor{}, fmt.Errorf("tables: %s: %w", k, bufr.ErrUnknownDescriptor)
	}
	return seq, nil
}

func (sf *Provider) elementTable(t versionTriple) (map[bufr.Key]bufr.ElementDescriptor, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	if table, ok := sf.elems[t]; ok {
		return table, nil
	}
	table, err := loadElementTable(sf.Root, t)
	if err != nil {
		return nil, err
	}
	sf.elems[t] = table
	return table, nil
}

func (sf *Provider) sequenceTable(t versionTriple) (map[bufr.Key]bufr.SequenceDescriptor, error) {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	if table, ok := sf.seqs[t]; ok {
		return table, nil
	}
	table, err := loadSequenceTable(sf.Root, t)
	if err != nil {
		return nil, err
	}
	sf.seqs[t] = table
	return table, nil
}
