// internal/browser/driver/locator.go
package driver

import "fmt"

// Strategy selects how a Locator expression is resolved in the document.
type Strategy string

const (
	StrategyID    Strategy = "id"
	StrategyCSS   Strategy = "css"
	StrategyXPath Strategy = "xpath"
)

// Locator is an immutable (strategy, expression) pair. It is resolved afresh on
// every driver call, so it never goes stale the way a retained element does.
type Locator struct {
	By    Strategy
	Value string
	// Index selects the n-th match (zero-based). Most locators target the first.
	Index int
}

// ByID locates an element by its id attribute.
func ByID(id string) Locator { return Locator{By: StrategyID, Value: id} }

// ByCSS locates elements by CSS selector.
func ByCSS(selector string) Locator { return Locator{By: StrategyCSS, Value: selector} }

// ByXPath locates elements by XPath expression.
func ByXPath(expr string) Locator { return Locator{By: StrategyXPath, Value: expr} }

// Nth returns a copy of l narrowed to the i-th match.
func (l Locator) Nth(i int) Locator {
	l.Index = i
	return l
}

func (l Locator) String() string {
	if l.Index > 0 {
		return fmt.Sprintf("%s=%s[%d]", l.By, l.Value, l.Index)
	}
	return fmt.Sprintf("%s=%s", l.By, l.Value)
}
