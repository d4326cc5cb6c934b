package scanner

import "time"

// FileType is the classified role of a project file.
type FileType string

const (
	TypeEntryPoint    FileType = "entry-point"
	TypeRouting       FileType = "routing"
	TypeScreen        FileType = "screen"
	TypeViewModel     FileType = "view-model"
	TypeService       FileType = "service"
	TypeModel         FileType = "model"
	TypeProvider      FileType = "provider"
	TypeWidget        FileType = "widget"
	TypeUtil          FileType = "util"
	TypeConstant      FileType = "constant"
	TypeTest          FileType = "test"
	TypeConfig        FileType = "config"
	TypeDocumentation FileType = "documentation"
	TypeOther         FileType = "other"
)

// Importance ranks how central a file is to understanding the project.
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

var importanceByType = map[FileType]Importance{
	TypeEntryPoint:    ImportanceHigh,
	TypeRouting:       ImportanceHigh,
	TypeScreen:        ImportanceHigh,
	TypeViewModel:     ImportanceHigh,
	TypeService:       ImportanceHigh,
	TypeModel:         ImportanceMedium,
	TypeProvider:      ImportanceMedium,
	TypeWidget:        ImportanceMedium,
	TypeTest:          ImportanceMedium,
	TypeConfig:        ImportanceMedium,
	TypeUtil:          ImportanceLow,
	TypeConstant:      ImportanceLow,
	TypeDocumentation: ImportanceLow,
	TypeOther:         ImportanceLow,
}

// ImportanceOf returns the fixed importance for a file type.
func ImportanceOf(t FileType) Importance {
	if imp, ok := importanceByType[t]; ok {
		return imp
	}
	return ImportanceLow
}

// FileRecord describes one regular file found during a scan.
type FileRecord struct {
	Path        string     `json:"path" yaml:"path"`
	Name        string     `json:"name" yaml:"name"`
	Type        FileType   `json:"type" yaml:"type"`
	Importance  Importance `json:"importance" yaml:"importance"`
	Language    string     `json:"language,omitempty" yaml:"language,omitempty"`
	Lines       int        `json:"lines" yaml:"lines"`
	Size        int64      `json:"size" yaml:"size"`
	ModTime     time.Time  `json:"modified" yaml:"modified"`
	Generated   bool       `json:"generated" yaml:"generated"`
	Test        bool       `json:"test" yaml:"test"`
	Description string     `json:"description" yaml:"description"`
}

// IsSource reports whether the file is hand-written Dart or Go source.
func (f FileRecord) IsSource() bool {
	return f.Language != "" && !f.Generated
}

// DirectorySummary counts the direct contents of one directory.
type DirectorySummary struct {
	Path           string   `json:"path" yaml:"path"`
	FileCount      int      `json:"file_count" yaml:"file_count"`
	SourceFiles    int      `json:"source_files" yaml:"source_files"`
	Subdirectories []string `json:"subdirectories" yaml:"subdirectories"`
}

// Inventory is the result of a single traversal.
type Inventory struct {
	Root        string             `json:"-" yaml:"-"`
	Files       []FileRecord       `json:"files" yaml:"files"`
	Directories []DirectorySummary `json:"directories" yaml:"directories"`
	TotalLines  int                `json:"total_lines" yaml:"total_lines"`
	TotalSize   int64              `json:"total_size" yaml:"total_size"`
	Errors      int                `json:"errors" yaml:"errors"`
}

// CountByType tallies files per classified type.
func (inv *Inventory) CountByType() map[FileType]int {
	counts := make(map[FileType]int)
	for _, f := range inv.Files {
		counts[f.Type]++
	}
	return counts
}

// SourceFiles returns the hand-written source files in path order.
func (inv *Inventory) SourceFiles() []FileRecord {
	var out []FileRecord
	for _, f := range inv.Files {
		if f.IsSource() {
			out = append(out, f)
		}
	}
	return out
}

// TestFiles counts files classified as tests.
func (inv *Inventory) TestFiles() int {
	n := 0
	for _, f := range inv.Files {
		if f.Test {
			n++
		}
	}
	return n
}

// Directory returns the summary for a relative directory path.
func (inv *Inventory) Directory(path string) (DirectorySummary, bool) {
	for _, d := range inv.Directories {
		if d.Path == path {
			return d, true
		}
	}
	return DirectorySummary{}, false
}
