package engine

import "github.com/simonhull/firebird-suite/kite/pkg/config"

// Section names a report slot filled by one analyzer.
type Section string

const (
	SectionProject          Section = "project"
	SectionStructure        Section = "structure"
	SectionDependencies     Section = "dependencies"
	SectionDependencyHealth Section = "dependency_health"
	SectionCode             Section = "code"
	SectionArchitecture     Section = "architecture"
)

// Sections is the set of requested report sections.
type Sections map[Section]bool

// AllSections requests every analyzer section.
func AllSections() Sections {
	return Sections{
		SectionProject:          true,
		SectionStructure:        true,
		SectionDependencies:     true,
		SectionDependencyHealth: true,
		SectionCode:             true,
		SectionArchitecture:     true,
	}
}

// SectionsFor maps the report flags to analyzer sections. The project
// section is always requested; dependency health follows the dependency
// flag.
func SectionsFor(rc config.ReportConfig) Sections {
	return Sections{
		SectionProject:          true,
		SectionStructure:        rc.IncludeStructure,
		SectionDependencies:     rc.IncludeDependencies,
		SectionDependencyHealth: rc.IncludeDependencies,
		SectionCode:             rc.IncludeCode,
		SectionArchitecture:     rc.IncludeArchitecture,
	}
}

// Has reports whether s is requested.
func (s Sections) Has(section Section) bool {
	return s[section]
}
