package service

import (
	"strings"
)

// NavigationKind is the outcome of classifying a checkout surface URL.
type NavigationKind string

const (
	NavIntermediate NavigationKind = "intermediate"
	NavSuccess      NavigationKind = "success"
	NavCancel       NavigationKind = "cancel"
)

// Verdict is a classification with the pattern that decided it.
type Verdict struct {
	Kind    NavigationKind
	Pattern string
}

// PatternTable is the declarative input of URLClassifier. Matching is plain
// substring containment so that malformed URLs still classify.
type PatternTable struct {
	// Success matches provider completion pages and the app's return route.
	Success []string
	// Cancel matches provider cancel/error pages and cancel query flags.
	Cancel []string
	// Intermediate matches provider login and multi-step pages.
	Intermediate []string
	// ProviderHost: any URL on this host that is neither success nor cancel
	// is intermediate.
	ProviderHost string
	// ReturnFragments, together with an approval identifier and a transaction
	// token, also mark success.
	ReturnFragments []string
	ApprovalParam   string
	TokenParam      string
}

// DefaultPatternTable mirrors the PayPal hosted checkout redirect chain.
func DefaultPatternTable() PatternTable {
	return PatternTable{
		Success: []string{
			"/webapps/hermes/api/executeagreement",
			"/checkoutnow/success",
			"/checkoutnow/approved",
			"/payment-success",
		},
		Cancel: []string{
			"/checkoutnow/cancel",
			"/checkoutnow/error",
			"cancel=true",
			"cancelled=true",
			"payment_cancelled",
			"user_cancelled",
			"error=true",
			"/payment-cancel",
		},
		Intermediate: []string{
			"/webapps/hermes/app.html",
			"/signin",
			"/login",
			"/auth",
		},
		ProviderHost:    "paypal.com",
		ReturnFragments: []string{"/payment-success", "/success", "/approved"},
		ApprovalParam:   "PayerID=",
		TokenParam:      "token=",
	}
}

// WithReturnPaths adds the app's own success and cancel return routes.
func (t PatternTable) WithReturnPaths(successPath, cancelPath string) PatternTable {
	if successPath != "" && !contains(t.Success, successPath) {
		t.Success = append(append([]string(nil), t.Success...), successPath)
		t.ReturnFragments = append(append([]string(nil), t.ReturnFragments...), successPath)
	}
	if cancelPath != "" && !contains(t.Cancel, cancelPath) {
		t.Cancel = append(append([]string(nil), t.Cancel...), cancelPath)
	}
	return t
}

// URLClassifier partitions checkout surface URLs. It never fails: anything it
// does not recognise is intermediate.
type URLClassifier struct {
	table PatternTable
}

func NewURLClassifier(table PatternTable) *URLClassifier {
	return &URLClassifier{table: table}
}

// Classify evaluates intermediate markers first, then success, then cancel.
// A URL matching both success and cancel is success.
func (c *URLClassifier) Classify(url string) Verdict {
	successPattern, isSuccess := c.matchSuccess(url)
	cancelPattern, isCancel := firstMatch(url, c.table.Cancel)

	if p, ok := firstMatch(url, c.table.Intermediate); ok {
		return Verdict{Kind: NavIntermediate, Pattern: p}
	}
	if c.table.ProviderHost != "" && strings.Contains(url, c.table.ProviderHost) && !isSuccess && !isCancel {
		return Verdict{Kind: NavIntermediate, Pattern: c.table.ProviderHost}
	}
	if isSuccess {
		return Verdict{Kind: NavSuccess, Pattern: successPattern}
	}
	if isCancel {
		return Verdict{Kind: NavCancel, Pattern: cancelPattern}
	}
	return Verdict{Kind: NavIntermediate}
}

// IsDisguisedSuccess reports whether a load error on url is really the
// provider returning to an app route the surface cannot render. It holds
// only for URLs Classify already calls success that also carry the
// transaction token.
func (c *URLClassifier) IsDisguisedSuccess(url string) bool {
	if url == "" || c.Classify(url).Kind != NavSuccess {
		return false
	}
	return c.hasParam(url, c.table.TokenParam)
}

func (c *URLClassifier) matchSuccess(url string) (string, bool) {
	if p, ok := firstMatch(url, c.table.Success); ok {
		return p, true
	}
	if c.hasParam(url, c.table.ApprovalParam) && c.hasParam(url, c.table.TokenParam) {
		if p, ok := firstMatch(url, c.table.ReturnFragments); ok {
			return p, true
		}
	}
	return "", false
}

func (c *URLClassifier) hasParam(url, param string) bool {
	return param != "" && strings.Contains(url, param)
}

func firstMatch(url string, patterns []string) (string, bool) {
	for _, p := range patterns {
		if p != "" && strings.Contains(url, p) {
			return p, true
		}
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
