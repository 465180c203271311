package domain

import "strings"

// CriterionType determines how a score for the criterion is interpreted.
type CriterionType string

const (
	CriterionNumeric CriterionType = "numeric"
	CriterionBoolean CriterionType = "boolean"
	CriterionText    CriterionType = "text"
)

// IsValid returns true if the type is a known value.
func (t CriterionType) IsValid() bool {
	switch t {
	case CriterionNumeric, CriterionBoolean, CriterionText:
		return true
	default:
		return false
	}
}

// Scorable reports whether candidates can receive a score on this type.
func (t CriterionType) Scorable() bool {
	return t == CriterionNumeric || t == CriterionBoolean
}

// ParseCriterionType parses a string into a CriterionType.
func ParseCriterionType(s string) (CriterionType, error) {
	t := CriterionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidCriterionType
	}
	return t, nil
}

// Scope says whether a criterion applies to the whole interview or to one task.
type Scope string

const (
	ScopeGeneral Scope = "general"
	ScopeTask    Scope = "task"
)

// IsValid returns true if the scope is a known value.
func (s Scope) IsValid() bool {
	return s == ScopeGeneral || s == ScopeTask
}

// AIBehavior tags how the interviewer behaves during a task. Values other
// than neutral are defined by authors.
type AIBehavior string

// AIBehaviorNeutral is the default behavior for new tasks.
const AIBehaviorNeutral AIBehavior = "neutral"

// OrDefault returns neutral for an empty behavior.
func (b AIBehavior) OrDefault() AIBehavior {
	if strings.TrimSpace(string(b)) == "" {
		return AIBehaviorNeutral
	}
	return b
}

// Requirements lists the capabilities a candidate needs for a task.
type Requirements struct {
	Audio       bool `json:"audio" yaml:"audio"`
	ScreenShare bool `json:"screen_share" yaml:"screen_share"`
	Webcam      bool `json:"webcam" yaml:"webcam"`
	FileUpload  bool `json:"file_upload" yaml:"file_upload"`
}

// Stats are candidate counts computed by the results context. They are
// read-only here and pass through saves unchanged.
type Stats struct {
	Invited   int `json:"invited"`
	Completed int `json:"completed"`
	Graded    int `json:"graded"`
}
