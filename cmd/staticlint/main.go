/*
Command staticlint runs the project's static analysis suite through
golang.org/x/tools/go/analysis/multichecker.

The suite contains:

 1. The standard passes from golang.org/x/tools/go/analysis/passes.
 2. Every SA analyzer of honnef.co/go/tools/staticcheck.
 3. The S1 simplifications listed in simpleChecks.
 4. The stylecheck and quickfix analyzers listed in styleChecks.
 5. noosexit, which reports direct os.Exit calls in main.main.

Usage:

	go run ./cmd/staticlint ./...
*/
package main

import (
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/appends"
	"golang.org/x/tools/go/analysis/passes/asmdecl"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/atomic"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/buildtag"
	"golang.org/x/tools/go/analysis/passes/cgocall"
	"golang.org/x/tools/go/analysis/passes/composite"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/defers"
	"golang.org/x/tools/go/analysis/passes/directive"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/ifaceassert"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shift"
	"golang.org/x/tools/go/analysis/passes/sigchanyzer"
	"golang.org/x/tools/go/analysis/passes/stdmethods"
	"golang.org/x/tools/go/analysis/passes/stringintconv"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/testinggoroutine"
	"golang.org/x/tools/go/analysis/passes/tests"
	"golang.org/x/tools/go/analysis/passes/timeformat"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unsafeptr"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"golang.org/x/tools/go/analysis/passes/waitgroup"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/quickfix"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"
)

// simpleChecks are the S1 simplifications worth failing the build for.
var simpleChecks = map[string]bool{
	"S1002": true, // omit comparison to bool constant
	"S1005": true, // drop unnecessary blank identifier
	"S1021": true, // merge variable declaration and assignment
	"S1030": true, // use bytes.Buffer.String or Bytes
}

// styleChecks are the stylecheck and quickfix analyzers in the suite.
var styleChecks = map[string]bool{
	"ST1005": true, // error strings start lowercase, no punctuation
	"ST1012": true, // error variables are named errFoo
	"ST1019": true, // duplicate imports
	"QF1001": true, // apply De Morgan's law
	"QF1003": true, // use tagged switch
}

func suite() []*analysis.Analyzer {
	analyzers := []*analysis.Analyzer{
		appends.Analyzer,
		asmdecl.Analyzer,
		assign.Analyzer,
		atomic.Analyzer,
		bools.Analyzer,
		buildtag.Analyzer,
		cgocall.Analyzer,
		composite.Analyzer,
		copylock.Analyzer,
		defers.Analyzer,
		directive.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		ifaceassert.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		nilfunc.Analyzer,
		printf.Analyzer,
		shift.Analyzer,
		sigchanyzer.Analyzer,
		stdmethods.Analyzer,
		stringintconv.Analyzer,
		structtag.Analyzer,
		testinggoroutine.Analyzer,
		tests.Analyzer,
		timeformat.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,
		unsafeptr.Analyzer,
		unusedresult.Analyzer,
		waitgroup.Analyzer,
	}

	pick := func(from []*lint.Analyzer, keep func(name string) bool) {
		for _, a := range from {
			if keep(a.Analyzer.Name) {
				analyzers = append(analyzers, a.Analyzer)
			}
		}
	}

	pick(staticcheck.Analyzers, func(name string) bool { return strings.HasPrefix(name, "SA") })
	pick(simple.Analyzers, func(name string) bool { return simpleChecks[name] })
	pick(stylecheck.Analyzers, func(name string) bool { return styleChecks[name] })
	pick(quickfix.Analyzers, func(name string) bool { return styleChecks[name] })

	return append(analyzers, NoOsExitAnalyzer)
}

func main() {
	multichecker.Main(suite()...)
}
