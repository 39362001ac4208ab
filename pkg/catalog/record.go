package catalog

import "github.com/miku/marc21"

// Subfield is one coded value inside a MARC data field.
type Subfield struct {
	Code  string `json:"code"`
	Value string `json:"value"`
}

// Field is the JSON-facing shape of a MARC field. Control fields carry
// Value; data fields carry indicators and subfields.
type Field struct {
	Tag       string     `json:"tag"`
	Value     string     `json:"value,omitempty"`
	Ind1      string     `json:"ind1,omitempty"`
	Ind2      string     `json:"ind2,omitempty"`
	Subfields []Subfield `json:"subfields,omitempty"`
}

// Record is a bibliographic record resolved from CLIO. A failed
// resolution yields the empty placeholder record so that JSON
// serialization downstream never has a missing value to trip over.
type Record struct {
	Fields []Field `json:"fields"`
}

// EmptyRecord returns the placeholder record.
func EmptyRecord() Record {
	return Record{Fields: []Field{}}
}

// IsEmpty reports whether the record is the placeholder.
func (r Record) IsEmpty() bool {
	return len(r.Fields) == 0
}

// newRecord converts a parsed MARC21 record into the JSON-facing shape.
func newRecord(src *marc21.Record) Record {
	rec := EmptyRecord()
	if src == nil {
		return rec
	}
	for _, f := range src.Fields {
		switch field := f.(type) {
		case *marc21.ControlField:
			rec.Fields = append(rec.Fields, Field{
				Tag:   field.Tag,
				Value: field.Data,
			})
		case *marc21.DataField:
			converted := Field{
				Tag:  field.Tag,
				Ind1: string(field.Ind1),
				Ind2: string(field.Ind2),
			}
			for _, sf := range field.SubFields {
				converted.Subfields = append(converted.Subfields, Subfield{
					Code:  string(sf.Code),
					Value: sf.Value,
				})
			}
			rec.Fields = append(rec.Fields, converted)
		}
	}
	return rec
}
