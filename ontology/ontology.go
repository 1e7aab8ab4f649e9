// Package ontology - hierarchical label taxonomy used to group related
// classifier outputs into one class subset.
package ontology

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// RootParent marks a node with no parent in taxonomy records.
const RootParent = "-"

// Node is one taxonomy record: a synset, its parent, and the classifier
// output index it maps to. Interior concepts usually have no output of
// their own.
type Node struct {
	// ID is the synset identifier, e.g. "n02084071".
	ID string
	// Parent is the parent synset identifier, or RootParent for roots.
	Parent string
	// ClassIndex is the classifier output index for this synset, or -1
	// when the synset has no direct output.
	ClassIndex int
}

// Taxonomy answers subtree queries over a set of synset records.
type Taxonomy struct {
	nodes    map[string]Node
	children map[string][]string
}

// NewTaxonomy builds a taxonomy from records. Children are kept in the
// order their records appear, so Subtree output is deterministic.
//
// Arguments:
//   - records: The synset records.
//
// Returns:
//   - *Taxonomy: The taxonomy.
//   - error: An error on duplicate synset identifiers.
func NewTaxonomy(records []Node) (*Taxonomy, error) {
	t := &Taxonomy{
		nodes:    make(map[string]Node, len(records)),
		children: make(map[string][]string, len(records)),
	}
	for _, rec := range records {
		if rec.ID == "" {
			return nil, errors.New("taxonomy record has an empty synset id")
		}
		if _, dup := t.nodes[rec.ID]; dup {
			return nil, errors.Errorf("duplicate synset id %q", rec.ID)
		}
		t.nodes[rec.ID] = rec
		if rec.Parent != RootParent && rec.Parent != "" {
			t.children[rec.Parent] = append(t.children[rec.Parent], rec.ID)
		}
	}
	return t, nil
}

// Contains reports whether the synset is known to the taxonomy.
func (t *Taxonomy) Contains(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Subtree returns the class indices of the synset and every concept
// subordinate to it, in pre-order. Synsets without a classifier output
// contribute -1; callers feed the sequence to the class-subset reducer,
// which filters those placeholders.
//
// Arguments:
//   - id: The root synset of the subtree.
//
// Returns:
//   - []int: The ordered, possibly sparse index sequence.
//   - error: An error when the synset is unknown.
func (t *Taxonomy) Subtree(id string) ([]int, error) {
	if !t.Contains(id) {
		return nil, errors.Errorf("unknown synset %q", id)
	}

	var out []int
	visited := make(map[string]struct{})
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[cur]; seen {
			continue
		}
		visited[cur] = struct{}{}

		out = append(out, t.nodes[cur].ClassIndex)

		// Push children in reverse so pre-order matches record order.
		kids := t.children[cur]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out, nil
}

// Load reads a taxonomy from a whitespace-separated text file with one
// record per line: "<synset> <parent> <classIndex>". The parent column
// uses "-" for roots and the index column uses "-1" for synsets without
// a classifier output. Blank lines and lines starting with '#' are
// skipped.
//
// Arguments:
//   - path: The taxonomy file path.
//
// Returns:
//   - *Taxonomy: The loaded taxonomy.
//   - error: An error on I/O failure or a malformed line.
func Load(path string) (*Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open taxonomy file")
	}
	defer f.Close()

	var records []Node
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, errors.Errorf("taxonomy line %d: want 3 fields, got %d", line, len(fields))
		}
		index, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, errors.Wrapf(err, "taxonomy line %d: bad class index %q", line, fields[2])
		}
		records = append(records, Node{ID: fields[0], Parent: fields[1], ClassIndex: index})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read taxonomy file")
	}

	return NewTaxonomy(records)
}
