package behavioral

import (
	"golang.org/x/text/unicode/norm"
)

// Behaviour categories of the classroom coding scheme
const (
	AbbrTeacherQuestion    = "TQ"
	AbbrTeacherLecture     = "TL"
	AbbrTeacherFeedback    = "TF"
	AbbrTeacherInstruction = "TI"
	AbbrTeacherBoard       = "TB"
	AbbrTeacherPatrol      = "TP"
	AbbrStudentSpeech      = "SS"
	AbbrStudentDiscussion  = "SD"
	AbbrClassSilence       = "CS"
	AbbrTechOperation      = "TO"
)

var defaultLabels = map[string]string{
	"教师提问": AbbrTeacherQuestion,
	"教师讲授": AbbrTeacherLecture,
	"教师反馈": AbbrTeacherFeedback,
	"教师指令": AbbrTeacherInstruction,
	"教师板书": AbbrTeacherBoard,
	"教师巡视": AbbrTeacherPatrol,
	"学生发言": AbbrStudentSpeech,
	"学生讨论": AbbrStudentDiscussion,
	"课堂沉寂": AbbrClassSilence,
	"技术操作": AbbrTechOperation,
}

// Vocabulary maps behaviour labels to abbreviations and back.
// Lookups never fail: an unknown label abbreviates to itself and an unknown
// abbreviation names itself.
type Vocabulary struct {
	abbr     map[string]string // label -> abbreviation
	fullName map[string]string // abbreviation -> label
}

// DefaultVocabulary returns the ten-category classroom vocabulary
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(defaultLabels)
}

// NewVocabulary creates a vocabulary from a label -> abbreviation map.
// Labels are NFC normalised so composed and decomposed input match.
func NewVocabulary(labels map[string]string) *Vocabulary {
	v := &Vocabulary{
		abbr:     make(map[string]string, len(labels)),
		fullName: make(map[string]string, len(labels)),
	}
	for label, abbr := range labels {
		v.add(label, abbr)
	}
	return v
}

func (v *Vocabulary) add(label, abbr string) {
	label = norm.NFC.String(label)
	v.abbr[label] = abbr
	v.fullName[abbr] = label
}

// With returns a copy of v extended (or overridden) by extra
func (v *Vocabulary) With(extra map[string]string) *Vocabulary {
	out := &Vocabulary{
		abbr:     make(map[string]string, len(v.abbr)+len(extra)),
		fullName: make(map[string]string, len(v.fullName)+len(extra)),
	}
	for label, abbr := range v.abbr {
		out.abbr[label] = abbr
	}
	for abbr, label := range v.fullName {
		out.fullName[abbr] = label
	}
	for label, abbr := range extra {
		out.add(label, abbr)
	}
	return out
}

// Abbreviate returns the abbreviation for label, or label itself when unmapped
func (v *Vocabulary) Abbreviate(label string) string {
	if v == nil {
		return label
	}
	if abbr, ok := v.abbr[norm.NFC.String(label)]; ok {
		return abbr
	}
	return label
}

// FullName returns the label for abbr, or abbr itself when unmapped
func (v *Vocabulary) FullName(abbr string) string {
	if v == nil {
		return abbr
	}
	if label, ok := v.fullName[abbr]; ok {
		return label
	}
	return abbr
}

// Len returns the number of mapped labels
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.abbr)
}
