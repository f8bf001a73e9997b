package annotation

import (
	"reflect"
	"testing"
)

func TestNormalizeMergesOverlap(t *testing.T) {
	input := []Annotation{
		{StartSec: 1.0, EndSec: 2.0, Gender: `male`, Label: `PERSON`, Language: `english`},
		{StartSec: 1.5, EndSec: 3.0, Gender: `female`, Label: `LOCATION`, Language: `english`},
	}
	result := Normalize(input)
	if len(result) != 1 {
		t.Fatal(`expected one merged span, got`, len(result))
	}
	span := result[0]
	if span.StartSec != 1.0 || span.EndSec != 3.0 {
		t.Fatal(`expected span 1.0-3.0, got`, span.StartSec, span.EndSec)
	}
	// later span's metadata wins when non-empty
	if span.Gender != `female` || span.Label != `LOCATION` {
		t.Fatal(`expected later span metadata, got`, span.Gender, span.Label)
	}
}

func TestNormalizeLaterEmptyKeepsEarlier(t *testing.T) {
	input := []Annotation{
		{StartSec: 1.0, EndSec: 2.0, Gender: `male`, Label: `PERSON`, Language: `luganda`},
		{StartSec: 1.5, EndSec: 3.0},
	}
	result := Normalize(input)
	if len(result) != 1 {
		t.Fatal(`expected one merged span, got`, len(result))
	}
	if result[0].Gender != `male` || result[0].Label != `PERSON` || result[0].Language != `luganda` {
		t.Fatal(`expected earlier metadata preserved, got`, result[0])
	}
}

func TestNormalizeDropsZeroDuration(t *testing.T) {
	input := []Annotation{{StartSec: 0.5, EndSec: 0.5, Gender: `male`}}
	result := Normalize(input)
	if len(result) != 0 {
		t.Fatal(`expected empty result, got`, result)
	}
	if Normalize(nil) == nil == false {
		t.Fatal(`expected nil for nil input`)
	}
}

func TestNormalizeTouchingSpansMerge(t *testing.T) {
	input := []Annotation{
		{StartSec: 0.0, EndSec: 1.0, Gender: `male`},
		{StartSec: 1.0, EndSec: 2.0, Gender: `female`},
	}
	result := Normalize(input)
	if len(result) != 1 {
		t.Fatal(`touching spans should merge, got`, len(result))
	}
	if result[0].EndSec != 2.0 {
		t.Fatal(`expected end 2.0, got`, result[0].EndSec)
	}
}

func TestNormalizeDisjointSpansKeptSorted(t *testing.T) {
	input := []Annotation{
		{StartSec: 5.0, EndSec: 6.0, Gender: `male`},
		{StartSec: 1.0, EndSec: 2.0, Gender: `female`},
	}
	result := Normalize(input)
	if len(result) != 2 {
		t.Fatal(`expected two spans, got`, len(result))
	}
	if result[0].StartSec != 1.0 || result[1].StartSec != 5.0 {
		t.Fatal(`expected spans sorted by start, got`, result)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	input := []Annotation{
		{StartSec: 0.2, EndSec: 1.1, Gender: `male`, Label: `PERSON`},
		{StartSec: 0.9, EndSec: 2.5, Gender: `female`},
		{StartSec: 4.0, EndSec: 4.5, Label: `USER_ID`},
		{StartSec: 3.0, EndSec: 3.0},
	}
	once := Normalize(input)
	twice := Normalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatal(`normalize is not idempotent:`, once, twice)
	}
}

func TestNormalizeCoversUnion(t *testing.T) {
	input := []Annotation{
		{StartSec: 0.0, EndSec: 2.0, Gender: `male`},
		{StartSec: 1.0, EndSec: 4.0, Gender: `male`},
		{StartSec: 3.5, EndSec: 5.0, Gender: `male`},
		{StartSec: 7.0, EndSec: 8.0, Gender: `male`},
	}
	result := Normalize(input)
	if len(result) != 2 {
		t.Fatal(`expected two merged blocks, got`, len(result))
	}
	if result[0].StartSec != 0.0 || result[0].EndSec != 5.0 {
		t.Fatal(`block one should cover 0.0-5.0, got`, result[0])
	}
	if result[1].StartSec != 7.0 || result[1].EndSec != 8.0 {
		t.Fatal(`block two should cover 7.0-8.0, got`, result[1])
	}
}
