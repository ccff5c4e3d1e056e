package par2

import (
	"regexp"
	"strings"
)

// Signatures is the versioned table of output patterns used to classify
// tool results. Text classification of subprocess output is fragile across
// tool releases, so the table is data: a table matching the pinned tool
// release can be injected with WithSignatures instead of editing code.
type Signatures struct {
	// Release names the tool release the table was written against
	Release string

	// OK patterns positively identify an intact file in check mode
	OK []*regexp.Regexp

	// RepairOK patterns positively identify a completed repair
	RepairOK []*regexp.Regexp

	// RepairPossible patterns identify recoverable damage
	RepairPossible []*regexp.Regexp

	// RepairImpossible patterns identify damage beyond the recovery data
	RepairImpossible []*regexp.Regexp

	// Detail patterns extract per-file/block damage lines for the report
	Detail []*regexp.Regexp
}

// DefaultSignatures matches par2cmdline 0.8.x output
func DefaultSignatures() Signatures {
	return Signatures{
		Release: "par2cmdline-0.8",
		OK: []*regexp.Regexp{
			regexp.MustCompile(`All files are correct, repair is not required\.`),
		},
		RepairOK: []*regexp.Regexp{
			regexp.MustCompile(`Repair complete\.`),
		},
		RepairPossible: []*regexp.Regexp{
			regexp.MustCompile(`Repair is possible\.`),
		},
		RepairImpossible: []*regexp.Regexp{
			regexp.MustCompile(`Repair is not possible\.`),
			regexp.MustCompile(`You need \d+ more recovery blocks to be able to repair\.`),
		},
		Detail: []*regexp.Regexp{
			regexp.MustCompile(`"[^"]+" - damaged\..*`),
			regexp.MustCompile(`"[^"]+" - missing\.`),
			regexp.MustCompile(`You have \d+ out of \d+ data blocks available\.`),
			regexp.MustCompile(`You need \d+ more recovery blocks to be able to repair\.`),
		},
	}
}

// Classify maps raw tool output to a Report.
//
// Precedence runs worst-first so conflicting matches never soften the
// verdict, and anything unmatched is a tool error.
func (s Signatures) Classify(output string) Report {
	r := Report{Outcome: OutcomeToolError, Output: output}

	if line, ok := firstMatch(s.RepairImpossible, output); ok {
		r.Outcome = OutcomeRepairImpossible
		r.Detail = withDetails(line, s.Detail, output)
		return r
	}
	if line, ok := firstMatch(s.RepairPossible, output); ok {
		r.Outcome = OutcomeRepairPossible
		r.Detail = withDetails(line, s.Detail, output)
		return r
	}
	if line, ok := firstMatch(s.OK, output); ok {
		r.Outcome = OutcomeOK
		r.Detail = line
		return r
	}
	r.Detail = "unrecognized tool output"
	return r
}

// ClassifyRepair maps raw repair-mode output to a Report. A completed
// repair wins over the "repair is possible" lines preceding it in the same
// output; an untouched intact file also counts as OK.
func (s Signatures) ClassifyRepair(output string) Report {
	r := Report{Outcome: OutcomeToolError, Output: output}

	if line, ok := firstMatch(s.RepairOK, output); ok {
		r.Outcome = OutcomeOK
		r.Detail = line
		return r
	}
	if line, ok := firstMatch(s.OK, output); ok {
		r.Outcome = OutcomeOK
		r.Detail = line
		return r
	}
	if line, ok := firstMatch(s.RepairImpossible, output); ok {
		r.Outcome = OutcomeRepairImpossible
		r.Detail = withDetails(line, s.Detail, output)
		return r
	}
	r.Detail = "unrecognized tool output"
	return r
}

func firstMatch(patterns []*regexp.Regexp, output string) (string, bool) {
	for _, p := range patterns {
		if m := p.FindString(output); m != "" {
			return m, true
		}
	}
	return "", false
}

func withDetails(line string, patterns []*regexp.Regexp, output string) string {
	details := []string{line}
	seen := map[string]struct{}{line: {}}
	for _, p := range patterns {
		for _, m := range p.FindAllString(output, -1) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			details = append(details, m)
		}
	}
	return strings.Join(details, "; ")
}
