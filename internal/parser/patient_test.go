package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPatientInfo(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want PatientInfo
	}{
		{
			name: "labeled block",
			raw:  "Patient Name : Ramesh Kumar\nAge : 45 Years\nSex : Male\n",
			want: PatientInfo{Name: "Ramesh Kumar", Age: 45, Sex: SexMale},
		},
		{
			name: "referring physician boilerplate stripped",
			raw:  "Patient Name: Sunita Sharma Ref. By Dr. A. Gupta\nAge: 38\nGender: Female\n",
			want: PatientInfo{Name: "Sunita Sharma", Age: 38, Sex: SexFemale},
		},
		{
			name: "inline age and sex suffix stripped from name",
			raw:  "Name: Arjun Rao Age 52 Sex M\n",
			want: PatientInfo{Name: "Arjun Rao", Age: 52, Sex: SexMale},
		},
		{
			name: "single letter sex",
			raw:  "Patient: Meera Nair\nAge: 29 Sex: F\n",
			want: PatientInfo{Name: "Meera Nair", Age: 29, Sex: SexFemale},
		},
		{
			name: "missing everything",
			raw:  "Investigations\nHemoglobin 13.2 g/dl\n",
			want: PatientInfo{Sex: SexUnknown},
		},
		{
			name: "sex unlabeled stays unknown",
			raw:  "Patient Name: Dev Patel\n",
			want: PatientInfo{Name: "Dev Patel", Sex: SexUnknown},
		},
		{
			name: "first match wins",
			raw:  "Patient Name: First Person\nPatient Name: Second Person\n",
			want: PatientInfo{Name: "First Person", Sex: SexUnknown},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractPatientInfo(tt.raw))
		})
	}
}
