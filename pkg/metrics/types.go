package metrics

// Severity grades a quality issue.
type Severity string

const (
	SeverityInfo   Severity = "info"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Issue type tags.
const (
	IssueHighComplexity = "high-complexity"
	IssueParseFailure   = "parse-failure"
)

// UnitComplexity is the complexity of one function or method.
type UnitComplexity struct {
	Name       string `json:"name" yaml:"name"`
	Line       int    `json:"line" yaml:"line"`
	Cyclomatic int    `json:"cyclomatic" yaml:"cyclomatic"`
	Cognitive  int    `json:"cognitive" yaml:"cognitive"`
}

// ComplexityRecord holds the metrics of one analyzed file.
type ComplexityRecord struct {
	Path                 string           `json:"path" yaml:"path"`
	Language             string           `json:"language" yaml:"language"`
	Lines                int              `json:"lines" yaml:"lines"`
	CommentLines         int              `json:"comment_lines" yaml:"comment_lines"`
	Cyclomatic           int              `json:"cyclomatic_complexity" yaml:"cyclomatic_complexity"`
	Cognitive            int              `json:"cognitive_complexity" yaml:"cognitive_complexity"`
	MaintainabilityIndex float64          `json:"maintainability_index" yaml:"maintainability_index"`
	Units                []UnitComplexity `json:"units,omitempty" yaml:"units,omitempty"`
	ParseError           string           `json:"parse_error,omitempty" yaml:"parse_error,omitempty"`
}

// Location points at a line in a file.
type Location struct {
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
}

// QualityIssue is a single finding.
type QualityIssue struct {
	Type     string   `json:"type" yaml:"type"`
	Message  string   `json:"message" yaml:"message"`
	Severity Severity `json:"severity" yaml:"severity"`
	Location Location `json:"location" yaml:"location"`
}

// Duplicate is a block of normalized lines that occurs more than once.
type Duplicate struct {
	Lines     int        `json:"lines" yaml:"lines"`
	Locations []Location `json:"locations" yaml:"locations"`
}

// DeadCode is a private top-level function that is never referenced.
type DeadCode struct {
	Name     string   `json:"name" yaml:"name"`
	Location Location `json:"location" yaml:"location"`
}

// Summary aggregates the per-file records.
type Summary struct {
	FilesAnalyzed          int     `json:"files_analyzed" yaml:"files_analyzed"`
	FilesSkipped           int     `json:"files_skipped" yaml:"files_skipped"`
	ParseFailures          int     `json:"parse_failures" yaml:"parse_failures"`
	Units                  int     `json:"units" yaml:"units"`
	TotalLines             int     `json:"total_lines" yaml:"total_lines"`
	AverageCyclomatic      float64 `json:"average_cyclomatic" yaml:"average_cyclomatic"`
	AverageCognitive       float64 `json:"average_cognitive" yaml:"average_cognitive"`
	AverageMaintainability float64 `json:"average_maintainability" yaml:"average_maintainability"`
	MaxCyclomatic          int     `json:"max_cyclomatic" yaml:"max_cyclomatic"`
}

// Result is the output of the code metrics analyzer.
type Result struct {
	Files      []ComplexityRecord `json:"files" yaml:"files"`
	Issues     []QualityIssue     `json:"issues" yaml:"issues"`
	Duplicates []Duplicate        `json:"duplicates" yaml:"duplicates"`
	DeadCode   []DeadCode         `json:"dead_code" yaml:"dead_code"`
	Patterns   []string           `json:"patterns" yaml:"patterns"`
	Summary    Summary            `json:"summary" yaml:"summary"`
}

// HighComplexityIssues returns the high-complexity issues among issues, in
// order.
func HighComplexityIssues(issues []QualityIssue) []QualityIssue {
	var out []QualityIssue
	for _, issue := range issues {
		if issue.Type == IssueHighComplexity {
			out = append(out, issue)
		}
	}
	return out
}
