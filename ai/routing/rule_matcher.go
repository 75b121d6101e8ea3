package routing

// Default phrase sets. Greetings and small-talk must match the whole
// normalized message; list-all phrases match anywhere in it.
var (
	DefaultGreetingPatterns  = []string{"hi", "hello", "hey"}
	DefaultSmallTalkPatterns = []string{"who are you", "what are you", "what do you do"}
	DefaultListAllPatterns   = []string{"list all", "show all", "all products", "what do you have"}
)

// RuleMatcher is the zero-latency layer: fixed phrase tables, no remote calls.
type RuleMatcher struct {
	exact   map[string]struct{}
	listAll []string
}

// NewRuleMatcher creates a matcher with the default phrase tables.
func NewRuleMatcher() *RuleMatcher {
	exact := append(append([]string{}, DefaultGreetingPatterns...), DefaultSmallTalkPatterns...)
	return NewRuleMatcherWithPatterns(exact, DefaultListAllPatterns)
}

// NewRuleMatcherWithPatterns creates a matcher with custom phrase tables.
func NewRuleMatcherWithPatterns(exact, listAll []string) *RuleMatcher {
	m := &RuleMatcher{
		exact:   make(map[string]struct{}, len(exact)),
		listAll: make([]string, 0, len(listAll)),
	}
	for _, p := range exact {
		m.exact[normalize(p)] = struct{}{}
	}
	for _, p := range listAll {
		m.listAll = append(m.listAll, normalize(p))
	}
	return m
}

// IsGreeting reports an exact greeting or small-talk match.
// "hi there" is not a greeting.
func (m *RuleMatcher) IsGreeting(input string) bool {
	_, ok := m.exact[normalize(input)]
	return ok
}

// IsListAll reports whether input asks to list every product.
func (m *RuleMatcher) IsListAll(input string) bool {
	return containsAny(normalize(input), m.listAll)
}
