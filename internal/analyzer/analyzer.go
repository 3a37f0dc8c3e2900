package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcncl/mpexplorer/internal/models"
)

// DuplicateKey records a map that repeats a scalar key
type DuplicateKey struct {
	Path  string
	Key   string
	Count int
}

// Summary describes the shape of one or more decoded trees
type Summary struct {
	Messages      int
	Failed        int
	Items         int
	Counts        map[models.Kind]int
	MaxDepth      int
	StringBytes   int
	BinaryBytes   int
	LargestArray  int
	LargestMap    int
	NonScalarKeys int
	DuplicateKeys []DuplicateKey
}

// Analyzer accumulates a Summary over decoded items
type Analyzer struct {
	summary Summary
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		summary: Summary{
			Counts:        make(map[models.Kind]int),
			DuplicateKeys: make([]DuplicateKey, 0),
		},
	}
}

// Analyze adds one decoded message to the summary and returns the running
// total.
func (a *Analyzer) Analyze(root *models.Item) (Summary, error) {
	if root == nil {
		return Summary{}, fmt.Errorf("nil item")
	}
	a.summary.Messages++

	err := models.Walk(root, func(path models.Path, item *models.Item) error {
		return a.analyzeNode(path, item)
	})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to analyze message %d: %w", a.summary.Messages-1, err)
	}
	return a.Summary(), nil
}

// RecordFailure counts a message that could not be decoded
func (a *Analyzer) RecordFailure() {
	a.summary.Messages++
	a.summary.Failed++
}

// Summary returns a copy of the accumulated summary
func (a *Analyzer) Summary() Summary {
	s := a.summary
	s.Counts = make(map[models.Kind]int, len(a.summary.Counts))
	for k, v := range a.summary.Counts {
		s.Counts[k] = v
	}
	s.DuplicateKeys = append([]DuplicateKey(nil), a.summary.DuplicateKeys...)
	return s
}

func (a *Analyzer) analyzeNode(path models.Path, item *models.Item) error {
	s := &a.summary
	s.Items++
	s.Counts[item.Kind]++

	// depth counts the item itself
	if depth := path.Depth() + 1; depth > s.MaxDepth {
		s.MaxDepth = depth
	}

	switch item.Kind {
	case models.String:
		s.StringBytes += len(item.Str)
	case models.Binary:
		s.BinaryBytes += len(item.Bytes)
	case models.Array:
		if len(item.Items) > s.LargestArray {
			s.LargestArray = len(item.Items)
		}
	case models.Map:
		if len(item.Pairs) > s.LargestMap {
			s.LargestMap = len(item.Pairs)
		}
		a.analyzeMapKeys(path, item)
	case models.Null, models.Boolean, models.Integer, models.Float:
	default:
		return fmt.Errorf("unexpected item kind %s at %s", item.Kind, path)
	}
	return nil
}

// analyzeMapKeys finds scalar keys that appear more than once. Container
// keys are counted but not compared.
func (a *Analyzer) analyzeMapKeys(path models.Path, item *models.Item) {
	seen := make(map[string]int)
	var order []string
	for _, pair := range item.Pairs {
		if pair.Key.Kind.IsContainer() {
			a.summary.NonScalarKeys++
			continue
		}
		key := keyIdentity(pair.Key)
		if seen[key] == 0 {
			order = append(order, key)
		}
		seen[key]++
	}
	for _, key := range order {
		if seen[key] > 1 {
			a.summary.DuplicateKeys = append(a.summary.DuplicateKeys, DuplicateKey{
				Path:  path.String(),
				Key:   key,
				Count: seen[key],
			})
		}
	}
}

// keyIdentity distinguishes Integer 1 from String "1"
func keyIdentity(key models.Item) string {
	if key.Kind == models.Binary {
		return key.Kind.String() + ": " + key.ValueString()
	}
	return key.String()
}

// String renders the summary as aligned text
func (s Summary) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Messages:       %d", s.Messages)
	if s.Failed > 0 {
		fmt.Fprintf(&b, " (%d failed)", s.Failed)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Items:          %d\n", s.Items)
	fmt.Fprintf(&b, "Max depth:      %d\n", s.MaxDepth)

	kinds := make([]models.Kind, 0, len(s.Counts))
	for k := range s.Counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		fmt.Fprintf(&b, "  %-12s  %d\n", k.String()+":", s.Counts[k])
	}

	fmt.Fprintf(&b, "String bytes:   %d\n", s.StringBytes)
	fmt.Fprintf(&b, "Binary bytes:   %d\n", s.BinaryBytes)
	fmt.Fprintf(&b, "Largest array:  %d\n", s.LargestArray)
	fmt.Fprintf(&b, "Largest map:    %d\n", s.LargestMap)
	if s.NonScalarKeys > 0 {
		fmt.Fprintf(&b, "Non-scalar keys: %d\n", s.NonScalarKeys)
	}
	for _, d := range s.DuplicateKeys {
		fmt.Fprintf(&b, "Duplicate key at %s: %s (x%d)\n", d.Path, d.Key, d.Count)
	}
	return b.String()
}
