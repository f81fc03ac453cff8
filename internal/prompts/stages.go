package prompts

import (
	"encoding/json"
	"slices"
)

// Stage identifies a generation step whose instructions can be overridden.
type Stage string

// Overridable generation stages.
const (
	StageInitiativesAnalysis Stage = "initiatives_analysis"
	StageDossierAnalysis     Stage = "dossier_analysis"
	StageDossierReport       Stage = "dossier_report"
	StageDocumentChat        Stage = "document_chat"
)

var stages = []Stage{
	StageInitiativesAnalysis,
	StageDossierAnalysis,
	StageDossierReport,
	StageDocumentChat,
}

// Stages returns the overridable stages in declaration order.
func Stages() []Stage {
	return slices.Clone(stages)
}

// UnmarshalJSON rejects unknown stage values.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
