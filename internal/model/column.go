package model

// StructureKind classifies the shape of a record set.
type StructureKind string

// Structure kinds.
const (
	StructureSingleColumn StructureKind = "single_column"
	StructureMultiColumn  StructureKind = "multi_column"
	StructureUnknown      StructureKind = "unknown"
)

// ColumnProfile holds per-column statistics used to guess which column holds email addresses.
type ColumnProfile struct {
	Name         string   `json:"name" yaml:"name"`
	Examples     []string `json:"examples" yaml:"examples"`
	Index        int      `json:"index" yaml:"index"`
	Confidence   int      `json:"confidence" yaml:"confidence"`
	MatchedCount int      `json:"matchedCount" yaml:"matchedCount"`
	SampledCount int      `json:"sampledCount" yaml:"sampledCount"`
	NameScore    float64  `json:"nameScore" yaml:"nameScore"`
	ContentScore float64  `json:"contentScore" yaml:"contentScore"`
	IsEmail      bool     `json:"isEmail" yaml:"isEmail"`
}

// TableStructure is the detector's verdict about a record set's shape.
type TableStructure struct {
	// PrimaryEmailColumn names the best email column; nil when none was detected.
	PrimaryEmailColumn      *string         `json:"primaryEmailColumn" yaml:"primaryEmailColumn"`
	Kind                    StructureKind   `json:"kind" yaml:"kind"`
	Description             string          `json:"description" yaml:"description"`
	Alternatives            []ColumnProfile `json:"alternatives" yaml:"alternatives"`
	TotalColumns            int             `json:"totalColumns" yaml:"totalColumns"`
	RequiresManualSelection bool            `json:"requiresManualSelection" yaml:"requiresManualSelection"`
}

// Primary returns the primary email column name, if any.
func (s TableStructure) Primary() (string, bool) {
	if s.PrimaryEmailColumn == nil {
		return "", false
	}
	return *s.PrimaryEmailColumn, true
}
