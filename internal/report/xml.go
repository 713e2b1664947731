// Package report implements the Report Emitter glue (SPEC_FULL.md §4.13):
// an XML writer producing one <testsuite> per action, plus a best-effort
// classpath suggestion index.
//
// Grounded on the teacher's JSON-response-writing idiom (encode a struct,
// write it out), retargeted to encoding/xml because spec.md's report
// format is XML (JUnit-style), matching vogar's XmlReportPrinter.
package report

import (
	"encoding/xml"
	"io"

	"actiondriver/internal/model"
)

// testSuite is the XML shape for one action's outcomes.
type testSuite struct {
	XMLName   xml.Name    `xml:"testsuite"`
	Name      string      `xml:"name,attr"`
	Tests     int         `xml:"tests,attr"`
	Failures  int         `xml:"failures,attr"`
	Skipped   int         `xml:"skipped,attr"`
	TestCases []testCase  `xml:"testcase"`
}

type testCase struct {
	Name    string   `xml:"name,attr"`
	Result  string   `xml:"result,attr"`
	Failure *failure `xml:"failure,omitempty"`
}

type failure struct {
	Message string `xml:",chardata"`
}

// Summary is what one buildAndRun invocation reports back to its caller
// (SPEC_FULL.md §3 RunSummary).
type Summary struct {
	Successes            int
	Failures             int
	Skipped              int
	FailureNames         []string
	SkippedNames         []string
	ClasspathSuggestions []string
	DriverErrors         []string
}

// WriteXML groups outcomes by their action prefix (the part before "#")
// into one <testsuite> per action, and writes the result to w.
func WriteXML(w io.Writer, outcomes []model.Outcome, evaluations map[string]model.ResultValue) error {
	suites := make(map[string]*testSuite)
	var order []string

	for _, o := range outcomes {
		suiteName, caseName := splitName(o.Name)
		s, ok := suites[suiteName]
		if !ok {
			s = &testSuite{Name: suiteName}
			suites[suiteName] = s
			order = append(order, suiteName)
		}

		tc := testCase{Name: caseName, Result: string(o.Result)}
		if v, ok := evaluations[o.Name]; ok && v == model.ResultValueFail {
			s.Failures++
			tc.Failure = &failure{Message: joinLines(o.OutputLines)}
		} else if ok && v == model.ResultValueIgnore {
			s.Skipped++
		}
		s.Tests++
		s.TestCases = append(s.TestCases, tc)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}
	for _, name := range order {
		if err := enc.Encode(suites[name]); err != nil {
			return err
		}
	}
	return enc.Flush()
}

func splitName(name string) (suite, testCaseName string) {
	for i := 0; i < len(name); i++ {
		if name[i] == '#' {
			return name[:i], name[i+1:]
		}
	}
	return name, name
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
