// Package classifier maps free-text spreadsheet fields to category labels
// using ordered keyword tables.
package classifier

import "strings"

// DefaultLabel is returned when no keyword matches.
const DefaultLabel = "Otros"

const (
	GroupFixed    = "Fijo"
	GroupVariable = "Variable"
)

// Rule associates a label with the keywords that select it.
type Rule struct {
	Label    string
	Keywords []string
}

// Table is an ordered list of rules. Order matters: when a text matches
// keywords of several labels the first label in the table wins.
type Table struct {
	rules []Rule
}

// NewTable copies the rules and lowercases their keywords.
func NewTable(rules ...Rule) Table {
	t := Table{rules: make([]Rule, len(rules))}

	for i, r := range rules {
		keywords := make([]string, len(r.Keywords))
		for j, k := range r.Keywords {
			keywords[j] = strings.ToLower(k)
		}

		t.rules[i] = Rule{Label: r.Label, Keywords: keywords}
	}

	return t
}

// Rules returns a copy of the table's rules in order.
func (t Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	for i, r := range t.rules {
		out[i] = Rule{Label: r.Label, Keywords: append([]string(nil), r.Keywords...)}
	}

	return out
}

func (t Table) Labels() []string {
	labels := make([]string, len(t.rules))
	for i, r := range t.rules {
		labels[i] = r.Label
	}

	return labels
}

// match returns the first label with a keyword contained in text.
func (t Table) match(text string) (string, bool) {
	for _, r := range t.rules {
		for _, k := range r.Keywords {
			if strings.Contains(text, k) {
				return r.Label, true
			}
		}
	}

	return "", false
}

// Classifier performs first-match keyword classification over a Table.
type Classifier struct {
	table    Table
	fallback string
}

func New(table Table, fallback string) Classifier {
	if fallback == "" {
		fallback = DefaultLabel
	}

	return Classifier{table: table, fallback: fallback}
}

// Classify never fails: text matching no keyword gets the fallback label.
func (c Classifier) Classify(text string) string {
	if label, ok := c.table.match(strings.ToLower(text)); ok {
		return label
	}

	return c.fallback
}

// IncomeClassifier derives a product category and a sales channel from the
// same tags text using two independent tables.
type IncomeClassifier struct {
	categories Classifier
	channels   Classifier
}

func NewIncome(categories, channels Table) IncomeClassifier {
	return IncomeClassifier{
		categories: New(categories, DefaultLabel),
		channels:   New(channels, DefaultLabel),
	}
}

func (c IncomeClassifier) Classify(tags string) (category, channel string) {
	return c.categories.Classify(tags), c.channels.Classify(tags)
}

// ExpenseClassifier derives a cost category from an account name, and the
// Fijo/Variable group from membership of that category in the fixed set.
type ExpenseClassifier struct {
	categories Classifier
	fixed      map[string]struct{}
}

func NewExpense(categories Table, fixed ...string) ExpenseClassifier {
	set := make(map[string]struct{}, len(fixed))
	for _, f := range fixed {
		set[f] = struct{}{}
	}

	return ExpenseClassifier{
		categories: New(categories, DefaultLabel),
		fixed:      set,
	}
}

func (c ExpenseClassifier) Classify(account string) (category, group string) {
	category = c.categories.Classify(account)
	return category, c.Group(category)
}

// Group returns GroupFixed for categories in the fixed set and GroupVariable
// for everything else, including the default label.
func (c ExpenseClassifier) Group(category string) string {
	if _, ok := c.fixed[category]; ok {
		return GroupFixed
	}

	return GroupVariable
}
