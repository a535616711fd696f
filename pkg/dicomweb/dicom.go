package dicomweb

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DICOM tags used in QIDO-RS study queries.
const (
	TagStudyDate        = "00080020"
	TagStudyTime        = "00080030"
	TagAccessionNumber  = "00080050"
	TagStudyDescription = "00081030"
	TagPatientName      = "00100010"
	TagStudyInstanceUID = "0020000D"
)

// Attribute is a DICOM JSON attribute, as returned by QIDO-RS.
type Attribute struct {
	VR    string            `json:"vr"`
	Value []json.RawMessage `json:"Value,omitempty"`
}

// Dataset is a DICOM JSON object keyed by the 8-digit hexadecimal tag.
type Dataset map[string]Attribute

// String returns the first value of `tag` as a string. Person names are
// returned in their alphabetic representation.
func (d Dataset) String(tag string) string {
	a, ok := d[strings.ToUpper(tag)]
	if !ok || len(a.Value) == 0 {
		return ""
	}

	if a.VR == "PN" {
		var pn struct {
			Alphabetic string
		}
		if err := json.Unmarshal(a.Value[0], &pn); err == nil {
			return pn.Alphabetic
		}
		return ""
	}

	var s string
	if err := json.Unmarshal(a.Value[0], &s); err == nil {
		return s
	}
	// numbers and other scalars
	return string(a.Value[0])
}

// Date is a DICOM DA value.
type Date struct {
	time.Time
}

// ParseDate converts a DICOM DA string (YYYYMMDD) to Date. An empty string
// gives an unset Date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse("20060102", s)
	return Date{t}, err
}

func (d Date) String() string {
	if !d.IsSet() {
		return ""
	}
	return d.Time.Format("20060102")
}

// MarshalJSON converts the Date into the DICOM DA string.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.IsSet() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

// IsSet checks whether the Date object is set with a time.
func (d Date) IsSet() bool {
	return !d.Time.IsZero()
}

// Study is the summary of a study returned by a QIDO-RS query.
type Study struct {
	StudyInstanceUID string `json:"studyInstanceUID"`
	StudyDate        Date   `json:"studyDate"`
	StudyDescription string `json:"studyDescription,omitempty"`
	AccessionNumber  string `json:"accessionNumber,omitempty"`
	PatientName      string `json:"patientName,omitempty"`
}

// NewStudy extracts the study summary from a DICOM JSON dataset.
func NewStudy(d Dataset) Study {
	date, _ := ParseDate(d.String(TagStudyDate))
	return Study{
		StudyInstanceUID: d.String(TagStudyInstanceUID),
		StudyDate:        date,
		StudyDescription: d.String(TagStudyDescription),
		AccessionNumber:  d.String(TagAccessionNumber),
		PatientName:      d.String(TagPatientName),
	}
}
