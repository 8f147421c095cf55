package services

import "fmt"

// LocatorKind selects how a Locator expression is interpreted
type LocatorKind int

const (
	ByCSS LocatorKind = iota
	ByXPath
)

// Locator addresses an element on the page
type Locator struct {
	Kind LocatorKind
	Expr string
}

// CSS builds a CSS selector locator
func CSS(expr string) Locator { return Locator{Kind: ByCSS, Expr: expr} }

// XPath builds an XPath locator
func XPath(expr string) Locator { return Locator{Kind: ByXPath, Expr: expr} }

func (l Locator) String() string {
	if l.Kind == ByXPath {
		return "xpath:" + l.Expr
	}
	return "css:" + l.Expr
}

// ConditionKind enumerates what a session can wait for
type ConditionKind int

const (
	ElementPresent ConditionKind = iota
	ElementClickable
	URLContains
)

// Condition is something a session waits for
type Condition struct {
	Kind     ConditionKind
	Target   Locator
	Fragment string
}

// Present waits for target to exist in the document
func Present(target Locator) Condition {
	return Condition{Kind: ElementPresent, Target: target}
}

// Clickable waits for target to be visible and enabled
func Clickable(target Locator) Condition {
	return Condition{Kind: ElementClickable, Target: target}
}

// URLHas waits for the current URL to contain fragment
func URLHas(fragment string) Condition {
	return Condition{Kind: URLContains, Fragment: fragment}
}

func (c Condition) String() string {
	switch c.Kind {
	case ElementPresent:
		return fmt.Sprintf("present(%s)", c.Target)
	case ElementClickable:
		return fmt.Sprintf("clickable(%s)", c.Target)
	case URLContains:
		return fmt.Sprintf("url contains %q", c.Fragment)
	}
	return "unknown condition"
}
